package graph

import "time"

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultParallel     = 4
)

// GraphClient turns documents into facts in a graph store. It manages
// chunking, extraction parallelism and the per-unit time limits.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	parallelAiRequests int
	maxRetries         int
	chunkSize          int
	chunkOverlap       int
	maxChunks          int
	extractTimeout     time.Duration
	mergeTimeout       time.Duration
	extractorOpts      []ExtractorOption
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// ParallelAiRequests controls how many chunks are extracted concurrently.
// ChunkSize and ChunkOverlap are measured in runes. MaxChunks caps how many
// chunks of one document are sent to extraction; 0 means all of them.
// ExtractTimeout and MergeTimeout bound a single chunk; a chunk that runs
// out of time is counted as failed and ingestion moves on.
type NewGraphClientParams struct {
	ParallelAiRequests int
	MaxRetries         int
	ChunkSize          int
	ChunkOverlap       int
	MaxChunks          int
	ExtractTimeout     time.Duration
	MergeTimeout       time.Duration
	ExtractorOptions   []ExtractorOption
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	params := graph.NewGraphClientParams{
//		ParallelAiRequests: 4,
//		ExtractTimeout:     2 * time.Minute,
//		ExtractorOptions:   []graph.ExtractorOption{graph.WithRepair(true)},
//	}
//	client, err := graph.NewGraphClient(params)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Returns a pointer to GraphClient and an error if initialization fails.
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	parallel := params.ParallelAiRequests
	if parallel <= 0 {
		parallel = DefaultParallel
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	chunkSize := params.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	overlap := params.ChunkOverlap
	if overlap < 0 {
		overlap = 0
	}
	if params.ChunkSize <= 0 && params.ChunkOverlap == 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= chunkSize {
		return nil, ErrInvalidChunking
	}

	g := &GraphClient{
		parallelAiRequests: parallel,
		maxRetries:         maxRetries,
		chunkSize:          chunkSize,
		chunkOverlap:       overlap,
		maxChunks:          max(params.MaxChunks, 0),
		extractTimeout:     params.ExtractTimeout,
		mergeTimeout:       params.MergeTimeout,
		extractorOpts:      params.ExtractorOptions,
	}

	return g, nil
}
