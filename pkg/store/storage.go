package store

import (
	"context"

	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/schema"
)

// GraphStorage persists facts as a labeled property graph and answers the
// traversal queries reasoning needs.
//
// MergeFacts applies facts in order, each one as its own atomic upsert of
// subject, object and edge. It returns how many facts were committed before
// the first failure, so a partially applied batch stays visible to callers.
type GraphStorage interface {
	MergeFacts(ctx context.Context, facts []schema.Fact) (int, error)

	// ScanEdges returns at most limit directed edges in traversal order.
	ScanEdges(ctx context.Context, limit int) ([]common.Edge, error)

	// ShortestPath returns the node names of the shortest undirected path
	// between two existing entities. ok is false when either entity is
	// missing or no path exists. maxHops <= 0 means unbounded.
	ShortestPath(ctx context.Context, start, end string, maxHops int) (nodes []string, ok bool, err error)

	Close(ctx context.Context) error
}

// SimilaritySearch returns the k stored chunk texts closest to query.
type SimilaritySearch interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]string, error)
}

// ChunkStorage is the vector index over document chunks.
type ChunkStorage interface {
	SimilaritySearch

	SaveChunks(ctx context.Context, chunks []common.Chunk) error
}
