package graph

import (
	"context"
	"errors"
	"sync"

	"github.com/sakshi-kadian/aurelius/pkg/ai"
	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/schema"
	"github.com/sakshi-kadian/aurelius/pkg/store/memory"
)

var errStoreDown = errors.New("graph store unavailable")

// failingGraph commits facts one at a time and fails once the store holds
// failAfter edges.
type failingGraph struct {
	*memory.GraphStorage
	failAfter int
}

func failAfter(n int) *failingGraph {
	return &failingGraph{GraphStorage: memory.NewGraphStorage(), failAfter: n}
}

func (g *failingGraph) MergeFacts(ctx context.Context, facts []schema.Fact) (int, error) {
	for i, f := range facts {
		if g.EdgeCount() >= g.failAfter {
			return i, errStoreDown
		}
		if _, err := g.GraphStorage.MergeFacts(ctx, []schema.Fact{f}); err != nil {
			return i, err
		}
	}
	return len(facts), nil
}

type fakeAI struct {
	mu       sync.Mutex
	calls    int
	lastOpts ai.GenerateOptions
	respond  func(ctx context.Context, prompt string) (string, error)
}

func replyWith(content string) *fakeAI {
	return &fakeAI{respond: func(context.Context, string) (string, error) {
		return content, nil
	}}
}

func failWith(err error) *fakeAI {
	return &fakeAI{respond: func(context.Context, string) (string, error) {
		return "", err
	}}
}

func (f *fakeAI) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastOpts = ai.ApplyOptions(ai.GenerateOptions{Temperature: -1}, opts...)
	f.mu.Unlock()
	return f.respond(ctx, prompt)
}

func (f *fakeAI) GenerateEmbedding(context.Context, []byte) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (f *fakeAI) ResetMetrics()               {}
func (f *fakeAI) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func (f *fakeAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]common.Triplet
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]common.Triplet)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]common.Triplet, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.data[key]
	return t, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, triplets []common.Triplet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = triplets
	return nil
}
