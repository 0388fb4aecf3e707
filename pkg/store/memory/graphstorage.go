// Package memory keeps the graph and the chunk index in process memory.
// It backs tests and single-process development runs.
package memory

import (
	"context"
	"sync"

	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/schema"
	"github.com/sakshi-kadian/aurelius/pkg/store"
)

// GraphStorage is a thread-safe in-memory store.GraphStorage.
//
// Edges are kept in insertion order so ScanEdges is stable across calls.
type GraphStorage struct {
	mu        sync.RWMutex
	entities  map[string]struct{}
	edges     []common.Edge
	edgeIndex map[string]struct{}
	adjacency map[string][]string
}

var _ store.GraphStorage = (*GraphStorage)(nil)

// NewGraphStorage returns an empty store.
func NewGraphStorage() *GraphStorage {
	return &GraphStorage{
		entities:  make(map[string]struct{}),
		edgeIndex: make(map[string]struct{}),
		adjacency: make(map[string][]string),
	}
}

// MergeFacts upserts subject, object and edge for each fact.
func (s *GraphStorage) MergeFacts(ctx context.Context, facts []schema.Fact) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range facts {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		s.entities[f.Subject] = struct{}{}
		s.entities[f.Object] = struct{}{}

		key := f.Key()
		if _, ok := s.edgeIndex[key]; ok {
			continue
		}
		s.edgeIndex[key] = struct{}{}
		s.edges = append(s.edges, common.Edge{
			Source: f.Subject,
			Target: f.Object,
			Type:   f.Relation.String(),
		})
		s.adjacency[f.Subject] = append(s.adjacency[f.Subject], f.Object)
		if f.Subject != f.Object {
			s.adjacency[f.Object] = append(s.adjacency[f.Object], f.Subject)
		}
	}
	return len(facts), nil
}

// ScanEdges returns up to limit edges in insertion order.
func (s *GraphStorage) ScanEdges(ctx context.Context, limit int) ([]common.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.edges)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]common.Edge, n)
	copy(out, s.edges[:n])
	return out, nil
}

// ShortestPath runs a breadth-first search that ignores edge direction.
func (s *GraphStorage) ShortestPath(ctx context.Context, start, end string, maxHops int) ([]string, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.entities[start]; !ok {
		return nil, false, nil
	}
	if _, ok := s.entities[end]; !ok {
		return nil, false, nil
	}
	if start == end {
		return []string{start}, true, nil
	}

	prev := map[string]string{start: ""}
	depth := map[string]int{start: 0}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if maxHops > 0 && depth[cur] >= maxHops {
			continue
		}
		for _, next := range s.adjacency[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			depth[next] = depth[cur] + 1
			if next == end {
				return walkBack(prev, start, end), true, nil
			}
			queue = append(queue, next)
		}
	}
	return nil, false, nil
}

func walkBack(prev map[string]string, start, end string) []string {
	var path []string
	for n := end; ; n = prev[n] {
		path = append(path, n)
		if n == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// EntityCount returns the number of distinct entities.
func (s *GraphStorage) EntityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// EdgeCount returns the number of distinct edges.
func (s *GraphStorage) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// Close is a no-op.
func (s *GraphStorage) Close(context.Context) error { return nil }
