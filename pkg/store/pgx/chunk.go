package pgx

import (
	"context"
	"fmt"

	"github.com/sakshi-kadian/aurelius/internal/util"
	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

const upsertChunkSQL = `
INSERT INTO chunks (id, source, chunk_index, content, embedding)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET source      = EXCLUDED.source,
    chunk_index = EXCLUDED.chunk_index,
    content     = EXCLUDED.content,
    embedding   = EXCLUDED.embedding
`

const similarChunksSQL = `
SELECT content
FROM chunks
WHERE vector_dims(embedding) = vector_dims($1::vector)
ORDER BY embedding <=> $1
LIMIT $2
`

var _ store.ChunkStorage = (*ChunkDBStorage)(nil)

// SaveChunks embeds chunks and upserts them by ID.
func (s *ChunkDBStorage) SaveChunks(ctx context.Context, chunks []common.Chunk) error {
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

	return store.ChunkRange(len(chunks), s.batchSize, func(start, end int) error {
		batch := &pgxv5.Batch{}
		for i := start; i < end; i++ {
			c := chunks[i]
			batch.Queue(
				upsertChunkSQL,
				c.ID,
				util.SanitizePostgresText(c.Source),
				c.Index,
				util.SanitizePostgresText(c.Text),
				pgvector.NewVector(embeddings[i]),
			)
		}

		results := s.conn.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to save chunk %s: %w", chunks[i].ID, err)
			}
		}
		return results.Close()
	})
}

// SimilaritySearch returns the k chunk texts nearest to query by cosine
// distance.
func (s *ChunkDBStorage) SimilaritySearch(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}
	embedding, err := s.aiClient.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := s.conn.Query(ctx, similarChunksSQL, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar chunks: %w", err)
	}
	texts, err := pgxv5.CollectRows(rows, pgxv5.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read similar chunks: %w", err)
	}
	return texts, nil
}
