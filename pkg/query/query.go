package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/graph"
	"github.com/sakshi-kadian/aurelius/pkg/logger"
	"github.com/sakshi-kadian/aurelius/pkg/store"
)

const DefaultTopK = 5

var ErrEmptyQuery = errors.New("query is empty")

// ReasoningClient answers natural-language questions from retrieved
// document passages and the shortest path between the entities the
// question names.
//
// A ReasoningClient should be created using NewReasoningClient.
type ReasoningClient struct {
	search   store.SimilaritySearch
	reasoner *graph.PathReasoner
	resolver EntityResolver
	topK     int
	tracer   Tracer
}

// NewReasoningClientParams configures a ReasoningClient.
//
// Search may be nil, in which case answers carry no context passages.
// Resolver defaults to HeuristicResolver and TopK to DefaultTopK. Tracer
// receives every reasoning event in addition to the per-query step trace.
type NewReasoningClientParams struct {
	Search   store.SimilaritySearch
	Reasoner *graph.PathReasoner
	Resolver EntityResolver
	TopK     int
	Tracer   Tracer
}

func NewReasoningClient(params NewReasoningClientParams) *ReasoningClient {
	resolver := params.Resolver
	if resolver == nil {
		resolver = HeuristicResolver{}
	}
	topK := params.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ReasoningClient{
		search:   params.Search,
		reasoner: params.Reasoner,
		resolver: resolver,
		topK:     topK,
		tracer:   params.Tracer,
	}
}

// Answer retrieves context for q, resolves the two entities it is about and
// looks for a path between them. Path is nil when fewer than two entities
// were found or they are not connected; the answer says so instead of
// inventing a connection. Store failures are returned.
//
// Example:
//
//	res, err := client.Answer(ctx, "How is Elon Musk connected to Starship?")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Answer, res.Path.Confidence)
func (c *ReasoningClient) Answer(ctx context.Context, q string) (common.ReasoningResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return common.ReasoningResult{}, ErrEmptyQuery
	}

	trace := NewQueryTrace()
	tracer := MultiTracer{trace, c.tracer}
	res := common.ReasoningResult{Context: []string{}}

	record(tracer, TraceEvent{Kind: TraceEventQueryReceived, Query: q})

	if c.search != nil {
		start := time.Now()
		passages, err := c.search.SimilaritySearch(ctx, q, c.topK)
		if err != nil {
			record(tracer, TraceEvent{Kind: TraceEventContextRetrieved, Error: err.Error()})
			return res, fmt.Errorf("failed to retrieve context: %w", err)
		}
		if passages != nil {
			res.Context = passages
		}
		record(tracer, TraceEvent{
			Kind:       TraceEventContextRetrieved,
			Chunks:     len(res.Context),
			DurationMs: time.Since(start).Milliseconds(),
		})
	}

	entities, err := c.resolver.Resolve(ctx, q)
	if err != nil {
		logger.Warn("[Query] Entity resolution failed, using heuristic", "err", err)
		entities = heuristicEntities(q)
	}
	record(tracer, TraceEvent{Kind: TraceEventEntitiesResolved, Entities: entities})

	if len(entities) >= 2 && c.reasoner != nil {
		pair := entities[:2]
		start := time.Now()
		path, ok, err := c.reasoner.FindPath(ctx, pair[0], pair[1])
		if err != nil {
			record(tracer, TraceEvent{Kind: TraceEventPathSearched, Entities: pair, Error: err.Error()})
			return res, err
		}
		ev := TraceEvent{Kind: TraceEventPathSearched, Entities: pair, DurationMs: time.Since(start).Milliseconds()}
		if ok {
			res.Path = &path
			ev.PathNodes = path.Nodes
			ev.Confidence = path.Confidence
		}
		record(tracer, ev)
	}

	answer, err := renderAnswer(answerData{Entities: entities, Path: res.Path, Context: res.Context})
	if err != nil {
		return res, err
	}
	res.Answer = answer
	record(tracer, TraceEvent{Kind: TraceEventAnswered})

	res.Steps = trace.Steps()
	return res, nil
}
