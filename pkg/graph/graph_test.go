package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sakshi-kadian/aurelius/pkg/loader"
	loaderio "github.com/sakshi-kadian/aurelius/pkg/loader/io"
	"github.com/sakshi-kadian/aurelius/pkg/schema"
	"github.com/sakshi-kadian/aurelius/pkg/store/memory"
)

var errBackend = errors.New("503 service unavailable")

func chunkedAI() *fakeAI {
	return &fakeAI{respond: func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "FAIL"):
			return "", errBackend
		case strings.Contains(prompt, "AAAA"):
			return `[{"subject":"alpha","predicate":"knows","object":"beta"}]`, nil
		case strings.Contains(prompt, "BBBB"):
			return `{"triplets":[{"subject":"beta","predicate":"knows","object":"gamma"},{"subject":"","predicate":"x","object":"y"}]}`, nil
		default:
			return `[]`, nil
		}
	}}
}

func testDocument(text string) loader.GraphFile {
	return loader.NewGraphDocumentFile(loader.NewGraphFileParams{
		ID:       "doc",
		FilePath: "uploads/notes.txt",
		Loader:   loaderio.NewBytesGraphFileLoader([]byte(text)),
	})
}

func threeChunkText() string {
	return strings.Repeat("A", 20) + strings.Repeat("B", 20) + strings.Repeat("FAIL", 5)
}

func newTestClient(t *testing.T, params NewGraphClientParams) *GraphClient {
	t.Helper()
	if params.ChunkSize == 0 {
		params.ChunkSize = 20
	}
	c, err := NewGraphClient(params)
	if err != nil {
		t.Fatalf("NewGraphClient() error = %v", err)
	}
	return c
}

func TestIngestContinuesPastFailingChunk(t *testing.T) {
	gs := memory.NewGraphStorage()
	f := chunkedAI()
	cs := memory.NewChunkStorage(f)
	c := newTestClient(t, NewGraphClientParams{ParallelAiRequests: 2})

	res, err := c.Ingest(context.Background(), testDocument(threeChunkText()), f, gs, cs)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if res.Status != StatusSuccess || res.Filename != "notes.txt" {
		t.Fatalf("Ingest() got status %q filename %q", res.Status, res.Filename)
	}
	if res.ChunksProcessed != 3 || res.ChunksIndexed != 3 {
		t.Fatalf("Ingest() chunks got processed=%d indexed=%d, want 3/3", res.ChunksProcessed, res.ChunksIndexed)
	}
	if res.TripletsExtracted != 3 || res.TripletsMerged != 2 || res.TripletsSkipped != 1 {
		t.Fatalf("Ingest() triplets got = %+v", res)
	}
	if res.ChunksFailed != 1 {
		t.Fatalf("Ingest() chunks failed got = %d, want 1", res.ChunksFailed)
	}
	if gs.EdgeCount() != 2 || cs.Len() != 3 {
		t.Fatalf("stores got edges=%d chunks=%d", gs.EdgeCount(), cs.Len())
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	gs := memory.NewGraphStorage()
	f := chunkedAI()
	c := newTestClient(t, NewGraphClientParams{})

	for range 2 {
		if _, err := c.Ingest(context.Background(), testDocument(threeChunkText()), f, gs, nil); err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}
	}
	if gs.EdgeCount() != 2 || gs.EntityCount() != 3 {
		t.Fatalf("after re-ingest got edges=%d entities=%d, want 2/3", gs.EdgeCount(), gs.EntityCount())
	}
}

func TestIngestMaxChunks(t *testing.T) {
	f := chunkedAI()
	c := newTestClient(t, NewGraphClientParams{MaxChunks: 1})

	res, err := c.Ingest(context.Background(), testDocument(threeChunkText()), f, memory.NewGraphStorage(), nil)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if f.callCount() != 1 {
		t.Fatalf("backend calls got = %d, want 1", f.callCount())
	}
	if res.ChunksProcessed != 3 || res.TripletsMerged != 1 || res.ChunksIndexed != 0 {
		t.Fatalf("Ingest() got = %+v", res)
	}
}

type brokenLoader struct{}

func (brokenLoader) GetFileText(context.Context, loader.GraphFile) ([]byte, error) {
	return nil, errors.New("not a pdf")
}

func TestIngestInputError(t *testing.T) {
	c := newTestClient(t, NewGraphClientParams{})
	file := loader.NewGraphPDFFile(loader.NewGraphFileParams{ID: "1", FilePath: "broken.pdf", Loader: brokenLoader{}})

	_, err := c.Ingest(context.Background(), file, chunkedAI(), memory.NewGraphStorage(), nil)
	if !errors.Is(err, ErrInputDocument) {
		t.Fatalf("Ingest() error = %v, want ErrInputDocument", err)
	}
}

func TestIngestStoreFault(t *testing.T) {
	gs := failAfter(1)
	f := &fakeAI{respond: func(context.Context, string) (string, error) {
		return `[{"subject":"a","predicate":"p","object":"b"},{"subject":"c","predicate":"p","object":"d"}]`, nil
	}}
	c := newTestClient(t, NewGraphClientParams{})

	res, err := c.Ingest(context.Background(), testDocument(strings.Repeat("z", 10)), f, gs, nil)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("Ingest() error = %v, want store failure", err)
	}
	if errors.Is(err, ErrInputDocument) {
		t.Fatalf("store failure reported as input error")
	}
	if res.TripletsMerged != 1 {
		t.Fatalf("Ingest() merged got = %d, want committed prefix of 1", res.TripletsMerged)
	}
}

type slowGraphStorage struct {
	*memory.GraphStorage
}

func (s slowGraphStorage) MergeFacts(ctx context.Context, facts []schema.Fact) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestIngestMergeTimeoutIsSkipped(t *testing.T) {
	gs := slowGraphStorage{memory.NewGraphStorage()}
	c := newTestClient(t, NewGraphClientParams{MergeTimeout: 10 * time.Millisecond})

	res, err := c.Ingest(context.Background(), testDocument(strings.Repeat("A", 20)+strings.Repeat("B", 20)), chunkedAI(), gs, nil)
	if err != nil {
		t.Fatalf("Ingest() error = %v, want timeouts absorbed", err)
	}
	if res.ChunksFailed != 2 || res.TripletsMerged != 0 {
		t.Fatalf("Ingest() got = %+v, want both chunks failed", res)
	}
}

func TestIngestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestClient(t, NewGraphClientParams{})

	if _, err := c.Ingest(ctx, testDocument(threeChunkText()), chunkedAI(), memory.NewGraphStorage(), nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Ingest() error = %v, want context.Canceled", err)
	}
}

func TestNewGraphClientDefaults(t *testing.T) {
	c, err := NewGraphClient(NewGraphClientParams{})
	if err != nil {
		t.Fatalf("NewGraphClient() error = %v", err)
	}
	if c.chunkSize != DefaultChunkSize || c.chunkOverlap != DefaultChunkOverlap || c.parallelAiRequests != DefaultParallel {
		t.Fatalf("NewGraphClient() got size=%d overlap=%d parallel=%d", c.chunkSize, c.chunkOverlap, c.parallelAiRequests)
	}
	if _, err := NewGraphClient(NewGraphClientParams{ChunkSize: 100, ChunkOverlap: 100}); !errors.Is(err, ErrInvalidChunking) {
		t.Fatalf("NewGraphClient() error = %v, want ErrInvalidChunking", err)
	}
}
