package openai

import (
	"context"
	"errors"
	"testing"
)

func TestNormalizeEmbeddingInputs(t *testing.T) {
	idx, in, out := normalizeEmbeddingInputs([][]byte{[]byte("a"), []byte("  "), nil, []byte("b")}, 3)
	if len(in) != 2 || in[0] != "a" || in[1] != "b" {
		t.Fatalf("strings got = %v", in)
	}
	if len(idx) != 2 || idx[0] != 0 || idx[1] != 3 {
		t.Fatalf("index map got = %v", idx)
	}
	if len(out[1]) != 3 || len(out[2]) != 3 || out[0] != nil {
		t.Fatalf("blank inputs should get zero vectors, got %v", out)
	}
}

func TestFitDimension(t *testing.T) {
	if got := fitDimension([]float32{1, 2, 3}, 2); len(got) != 2 || got[1] != 2 {
		t.Fatalf("truncate got = %v", got)
	}
	if got := fitDimension([]float32{1}, 3); len(got) != 3 || got[0] != 1 || got[2] != 0 {
		t.Fatalf("pad got = %v", got)
	}
	if got := fitDimension([]float32{1, 2}, 0); len(got) != 2 {
		t.Fatalf("dim 0 got = %v", got)
	}
}

func TestUnconfiguredClient(t *testing.T) {
	c := NewGraphOpenAIClient(NewGraphOpenAIClientParams{ExtractionModel: "llama3-8b-8192"})
	if _, err := c.GenerateCompletion(context.Background(), "hi"); !errors.Is(err, errNoChatClient) {
		t.Fatalf("GenerateCompletion() err = %v, want errNoChatClient", err)
	}
	if _, err := c.GenerateEmbedding(context.Background(), []byte("hi")); !errors.Is(err, errNoEmbeddingClient) {
		t.Fatalf("GenerateEmbedding() err = %v, want errNoEmbeddingClient", err)
	}
}
