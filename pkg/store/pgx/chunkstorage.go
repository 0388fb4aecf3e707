// Package pgx stores document chunks and their embeddings in PostgreSQL
// with the pgvector extension.
package pgx

import (
	"context"

	"github.com/sakshi-kadian/aurelius/pkg/ai"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	SendBatch(ctx context.Context, b *pgxv5.Batch) pgxv5.BatchResults
}

// ChunkDBStorage implements store.ChunkStorage on a pgvector table. The AI
// client embeds chunks on write and queries on read.
type ChunkDBStorage struct {
	conn      pgxIConn
	aiClient  ai.GraphAIClient
	batchSize int
}

type ChunkDBStorageOption func(*ChunkDBStorage)

// WithBatchSize bounds the number of rows sent per insert batch.
func WithBatchSize(n int) ChunkDBStorageOption {
	return func(s *ChunkDBStorage) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewChunkDBStorageWithConnection creates a ChunkDBStorage on an existing
// connection or pool. The pgvector types must already be registered on the
// connection.
func NewChunkDBStorageWithConnection(
	conn pgxIConn,
	aiClient ai.GraphAIClient,
	opts ...ChunkDBStorageOption,
) *ChunkDBStorage {
	s := &ChunkDBStorage{
		conn:      conn,
		aiClient:  aiClient,
		batchSize: 100,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}
