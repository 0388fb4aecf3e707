package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sakshi-kadian/aurelius/pkg/ai"
	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/store"
)

type indexedChunk struct {
	chunk     common.Chunk
	embedding []float32
}

// ChunkStorage is a brute-force cosine index over chunk embeddings.
type ChunkStorage struct {
	aiClient ai.GraphAIClient

	mu     sync.RWMutex
	chunks []indexedChunk
	byID   map[string]int
}

var _ store.ChunkStorage = (*ChunkStorage)(nil)

// NewChunkStorage returns an empty index that embeds through aiClient.
func NewChunkStorage(aiClient ai.GraphAIClient) *ChunkStorage {
	return &ChunkStorage{aiClient: aiClient, byID: make(map[string]int)}
}

// SaveChunks embeds and stores chunks. A chunk whose ID is already present
// is replaced.
func (s *ChunkStorage) SaveChunks(ctx context.Context, chunks []common.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	inputs := make([][]byte, len(chunks))
	for i, c := range chunks {
		inputs[i] = []byte(c.Text)
	}
	embeddings, err := store.GenerateEmbeddings(ctx, s.aiClient, inputs)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		ic := indexedChunk{chunk: c, embedding: embeddings[i]}
		if idx, ok := s.byID[c.ID]; ok && c.ID != "" {
			s.chunks[idx] = ic
			continue
		}
		s.byID[c.ID] = len(s.chunks)
		s.chunks = append(s.chunks, ic)
	}
	return nil
}

// SimilaritySearch embeds query and returns the k most similar chunk texts.
func (s *ChunkStorage) SimilaritySearch(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}
	if s.Len() == 0 {
		return []string{}, nil
	}
	vec, err := s.aiClient.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	type scored struct {
		text  string
		score float64
	}
	results := make([]scored, 0, len(s.chunks))
	for _, c := range s.chunks {
		results = append(results, scored{
			text:  c.chunk.Text,
			score: store.CosineSimilarity(vec, c.embedding),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	out := make([]string, 0, min(k, len(results)))
	for _, r := range results[:min(k, len(results))] {
		out = append(out, r.text)
	}
	return out, nil
}

// Len returns the number of stored chunks.
func (s *ChunkStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}
