package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sakshi-kadian/aurelius/internal/util"
	"github.com/sakshi-kadian/aurelius/pkg/ai"
	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/loader"
	"github.com/sakshi-kadian/aurelius/pkg/logger"
	"github.com/sakshi-kadian/aurelius/pkg/store"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrInputDocument wraps every failure to read a document.
	ErrInputDocument   = errors.New("unreadable input document")
	ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")
)

const StatusSuccess = "success"

// Ingest reads file, splits it into chunks, indexes the chunks for
// similarity search and merges the facts extracted from each chunk into
// graphStore.
//
// chunkStore may be nil, in which case no chunks are indexed. A chunk whose
// extraction fails or whose merge times out is counted in ChunksFailed and
// skipped; any other store failure aborts ingestion and is returned together
// with the counts reached so far.
//
// Example:
//
//	file := loader.NewGraphPDFFile(loader.NewGraphFileParams{
//		ID:       "1",
//		FilePath: "papers/spacex.pdf",
//		Loader:   pdf.NewPDFGraphLoader(io.NewIOGraphFileLoader()),
//	})
//	res, err := client.Ingest(ctx, file, aiClient, graphStore, chunkStore)
func (g *GraphClient) Ingest(
	ctx context.Context,
	file loader.GraphFile,
	aiClient ai.GraphAIClient,
	graphStore store.GraphStorage,
	chunkStore store.ChunkStorage,
) (common.IngestResult, error) {
	res := common.IngestResult{Status: StatusSuccess, Filename: file.Name()}

	text, err := file.GetText(ctx)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrInputDocument, err)
	}

	chunks, err := ChunkText(res.Filename, string(text), g.chunkSize, g.chunkOverlap)
	if err != nil {
		return res, err
	}
	res.ChunksProcessed = len(chunks)
	logger.Info("[Graph] Processing", "file", res.Filename, "chunks", len(chunks))

	if chunkStore != nil && len(chunks) > 0 {
		if err := chunkStore.SaveChunks(ctx, chunks); err != nil {
			logger.Warn("[Graph] Failed to index chunks", "file", res.Filename, "err", err)
		} else {
			res.ChunksIndexed = len(chunks)
		}
	}

	work := chunks
	if g.maxChunks > 0 && len(work) > g.maxChunks {
		work = work[:g.maxChunks]
	}

	opts := append(slices.Clone(g.extractorOpts), WithTimeout(g.extractTimeout))
	extractor := NewTripletExtractor(aiClient, opts...)
	engine := NewMergeEngine(graphStore)

	mergeMu := sync.Mutex{}
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelAiRequests)
	for _, chunk := range work {
		eg.Go(func() error {
			if gCtx.Err() != nil {
				return nil
			}

			ext, err := util.RetryWithContext(gCtx, g.maxRetries, func(ctx context.Context) (ExtractionResult, error) {
				r := extractor.ExtractResult(ctx, chunk.Text)
				if r.Outcome == ExtractionBackendError {
					return r, r.Err
				}
				return r, nil
			})
			if err != nil {
				ext = ExtractionResult{Outcome: ExtractionBackendError, Err: err}
			}
			if ext.Outcome != ExtractionOK {
				if gCtx.Err() != nil {
					return nil
				}
				logger.Warn("[Graph] Extraction failed", "chunk", chunk.ID, "outcome", ext.Outcome, "err", ext.Err)
				mergeMu.Lock()
				res.ChunksFailed++
				mergeMu.Unlock()
				return nil
			}

			mergeMu.Lock()
			defer mergeMu.Unlock()

			res.TripletsExtracted += len(ext.Triplets)
			report, err := g.merge(gCtx, engine, ext.Triplets)
			res.TripletsMerged += report.Accepted
			res.TripletsSkipped += report.Skipped
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) && gCtx.Err() == nil {
					logger.Warn("[Graph] Merge timed out", "chunk", chunk.ID)
					res.ChunksFailed++
					return nil
				}
				return err
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return res, fmt.Errorf("failed to process chunks: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	logger.Info("[Graph] Document processed",
		"file", res.Filename,
		"triplets_extracted", res.TripletsExtracted,
		"triplets_merged", res.TripletsMerged,
		"chunks_failed", res.ChunksFailed,
	)
	return res, nil
}

func (g *GraphClient) merge(ctx context.Context, engine *MergeEngine, triplets []common.Triplet) (common.MergeReport, error) {
	if g.mergeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.mergeTimeout)
		defer cancel()
	}
	return engine.Merge(ctx, triplets)
}
