package store

import (
	"context"
	"fmt"
	"math"

	"github.com/sakshi-kadian/aurelius/pkg/ai"
	"golang.org/x/sync/errgroup"
)

// DefaultEmbeddingBatch bounds the number of inputs per embedding request.
const DefaultEmbeddingBatch = 64

// ChunkRange calls fn for consecutive [start, end) windows of at most
// chunkSize covering [0, total).
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// GenerateEmbeddings embeds inputs in order. Backends implementing
// ai.BatchEmbedder get batches of DefaultEmbeddingBatch; others are called
// once per input, concurrently.
func GenerateEmbeddings(
	ctx context.Context,
	client ai.GraphAIClient,
	inputs [][]byte,
) ([][]float32, error) {
	if client == nil {
		return nil, fmt.Errorf("ai client is nil")
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(inputs))

	if b, ok := client.(ai.BatchEmbedder); ok {
		err := ChunkRange(len(inputs), DefaultEmbeddingBatch, func(start, end int) error {
			res, err := b.GenerateEmbeddings(ctx, inputs[start:end])
			if err != nil {
				return err
			}
			if len(res) != end-start {
				return fmt.Errorf("embedding batch size mismatch: got %d want %d", len(res), end-start)
			}
			copy(out[start:end], res)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(8)
	for i := range inputs {
		eg.Go(func() error {
			emb, err := client.GenerateEmbedding(ectx, inputs[i])
			if err != nil {
				return err
			}
			out[i] = emb
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when either is a zero vector or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
