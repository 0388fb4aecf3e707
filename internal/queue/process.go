package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/sakshi-kadian/aurelius/pkg/ai"
	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/graph"
	"github.com/sakshi-kadian/aurelius/pkg/leaselock"
	"github.com/sakshi-kadian/aurelius/pkg/loader"
	"github.com/sakshi-kadian/aurelius/pkg/loader/pdf"
	"github.com/sakshi-kadian/aurelius/pkg/logger"
	"github.com/sakshi-kadian/aurelius/pkg/store"
)

var ErrInvalidMessage = errors.New("invalid queue message")

// IngestMsg asks a worker to ingest an uploaded object.
type IngestMsg struct {
	JobID    string `json:"job_id"`
	Key      string `json:"key"`
	Filename string `json:"filename"`
}

// IngestEventMsg is published on the event exchange when a job ends.
type IngestEventMsg struct {
	JobID  string               `json:"job_id"`
	Status string               `json:"status"`
	Result *common.IngestResult `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

const (
	TopicIngestCompleted = "ingest.completed"
	TopicIngestFailed    = "ingest.failed"
)

// Locker serializes work on one key across processes.
type Locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

// IngestProcessor runs ingest jobs taken off the queue.
//
// An IngestProcessor should be created using NewIngestProcessor.
type IngestProcessor struct {
	graph      *graph.GraphClient
	aiClient   ai.GraphAIClient
	graphStore store.GraphStorage
	chunkStore store.ChunkStorage

	documents loader.GraphFileLoader
	pdfs      loader.GraphFileLoader

	locker   Locker
	leaseTTL time.Duration
	events   Channel
}

// NewIngestProcessorParams configures an IngestProcessor. Loader returns
// the raw bytes of an uploaded object. Locker and Events are optional.
type NewIngestProcessorParams struct {
	Graph      *graph.GraphClient
	AIClient   ai.GraphAIClient
	GraphStore store.GraphStorage
	ChunkStore store.ChunkStorage
	Loader     loader.GraphFileLoader
	Locker     Locker
	LeaseTTL   time.Duration
	Events     Channel
}

func NewIngestProcessor(params NewIngestProcessorParams) *IngestProcessor {
	return &IngestProcessor{
		graph:      params.Graph,
		aiClient:   params.AIClient,
		graphStore: params.GraphStore,
		chunkStore: params.ChunkStore,
		documents:  params.Loader,
		pdfs:       pdf.NewPDFGraphLoader(params.Loader),
		locker:     params.Locker,
		leaseTTL:   params.LeaseTTL,
		events:     params.Events,
	}
}

// ProcessIngestMessage decodes an IngestMsg and ingests the object it
// names. Malformed messages fail with ErrInvalidMessage.
func (p *IngestProcessor) ProcessIngestMessage(ctx context.Context, body []byte) (common.IngestResult, error) {
	var msg IngestMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return common.IngestResult{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if msg.Key == "" {
		return common.IngestResult{}, fmt.Errorf("%w: missing key", ErrInvalidMessage)
	}

	var res common.IngestResult
	run := func(ctx context.Context) error {
		var err error
		res, err = p.graph.Ingest(ctx, p.file(msg), p.aiClient, p.graphStore, p.chunkStore)
		return err
	}

	var err error
	if p.locker != nil {
		err = p.locker.WithLease(ctx, "ingest:"+msg.Key, leaselock.Options{TTL: p.leaseTTL}, run)
	} else {
		err = run(ctx)
	}

	if err != nil {
		return res, fmt.Errorf("failed to ingest %s: %w", msg.Key, err)
	}
	p.publishEvent(ctx, msg, res, nil)

	logger.Info(
		"[Queue] Ingested document",
		"job_id", msg.JobID,
		"file", res.Filename,
		"chunks", res.ChunksProcessed,
		"merged", res.TripletsMerged,
		"failed_chunks", res.ChunksFailed,
	)
	return res, nil
}

func (p *IngestProcessor) file(msg IngestMsg) loader.GraphFile {
	title := msg.Filename
	if title == "" {
		title = path.Base(msg.Key)
	}
	id := msg.JobID
	if id == "" {
		id = msg.Key
	}
	params := loader.NewGraphFileParams{
		ID:       id,
		FilePath: msg.Key,
		Title:    title,
		Loader:   p.documents,
	}

	if loader.DetectFileType(title) == loader.GraphFileTypePDF {
		params.Loader = p.pdfs
		return loader.NewGraphPDFFile(params)
	}
	return loader.NewGraphDocumentFile(params)
}

// PublishFailure announces that the job in body will not be retried. The
// body is decoded best-effort, so unreadable messages still produce an event.
func (p *IngestProcessor) PublishFailure(ctx context.Context, body []byte, cause error) {
	var msg IngestMsg
	_ = json.Unmarshal(body, &msg)
	p.publishEvent(ctx, msg, common.IngestResult{}, cause)
}

func (p *IngestProcessor) publishEvent(ctx context.Context, msg IngestMsg, res common.IngestResult, ingestErr error) {
	if p.events == nil {
		return
	}

	event := IngestEventMsg{JobID: msg.JobID, Status: res.Status}
	topic := TopicIngestCompleted
	if ingestErr != nil {
		event.Status = "failed"
		event.Error = ingestErr.Error()
		topic = TopicIngestFailed
	} else {
		event.Result = &res
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn("[Queue] Failed to marshal ingest event", "job_id", msg.JobID, "err", err)
		return
	}
	if err := PublishTopic(ctx, p.events, topic, data); err != nil {
		logger.Warn("[Queue] Failed to publish ingest event", "job_id", msg.JobID, "err", err)
	}
}
