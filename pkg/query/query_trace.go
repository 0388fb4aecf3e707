package query

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sakshi-kadian/aurelius/pkg/logger"
)

type TraceEventKind string

const (
	TraceEventQueryReceived    TraceEventKind = "query_received"
	TraceEventContextRetrieved TraceEventKind = "context_retrieved"
	TraceEventEntitiesResolved TraceEventKind = "entities_resolved"
	TraceEventPathSearched     TraceEventKind = "path_searched"
	TraceEventAnswered         TraceEventKind = "answered"
)

// TraceEvent is an extensible event envelope for query tracing.
// Additive changes to this struct are backward compatible for implementers.
type TraceEvent struct {
	Kind TraceEventKind

	Query      string
	Chunks     int
	Entities   []string
	PathNodes  []string
	Confidence float64
	DurationMs int64
	Error      string
}

// Tracer is a sink for query tracing events.
//
// Implementers can forward events to logs, telemetry, or custom post-processing
// pipelines.
type Tracer interface {
	Record(event TraceEvent)
}

// MultiTracer fan-outs trace events to multiple tracers.
type MultiTracer []Tracer

func (m MultiTracer) Record(event TraceEvent) {
	for _, t := range m {
		if t == nil {
			continue
		}
		t.Record(event)
	}
}

// LogTracer writes every event to the debug log.
type LogTracer struct{}

func (LogTracer) Record(event TraceEvent) {
	logger.Debug("[Query] Trace",
		"kind", event.Kind,
		"chunks", event.Chunks,
		"entities", event.Entities,
		"path", event.PathNodes,
		"duration_ms", event.DurationMs,
		"err", event.Error,
	)
}

// QueryTrace collects the reasoning steps of one query as human-readable
// lines, in the order they happened.
//
// QueryTrace is safe for concurrent use.
type QueryTrace struct {
	mu    sync.Mutex
	steps []string
}

func NewQueryTrace() *QueryTrace {
	return &QueryTrace{}
}

func (t *QueryTrace) Record(event TraceEvent) {
	if t == nil {
		return
	}
	step := describe(event)
	if step == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, step)
}

// Steps returns a copy of the recorded steps.
func (t *QueryTrace) Steps() []string {
	if t == nil {
		return []string{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.steps))
	copy(out, t.steps)
	return out
}

func describe(e TraceEvent) string {
	switch e.Kind {
	case TraceEventQueryReceived:
		return "Analyzing query intent"
	case TraceEventContextRetrieved:
		if e.Error != "" {
			return "Context retrieval failed"
		}
		return fmt.Sprintf("Retrieved %d context passages from vector memory", e.Chunks)
	case TraceEventEntitiesResolved:
		if len(e.Entities) == 0 {
			return "No entities identified in the query"
		}
		return "Identified entities: " + strings.Join(e.Entities, ", ")
	case TraceEventPathSearched:
		switch {
		case e.Error != "":
			return "Graph traversal failed"
		case len(e.PathNodes) == 0:
			return fmt.Sprintf("Traversed knowledge graph: no path between %s", strings.Join(e.Entities, " and "))
		default:
			return fmt.Sprintf("Traversed knowledge graph (depth %d): %s", len(e.PathNodes)-1, strings.Join(e.PathNodes, " -> "))
		}
	case TraceEventAnswered:
		return "Synthesized answer"
	default:
		return ""
	}
}

func record(t Tracer, event TraceEvent) {
	if t == nil {
		return
	}
	t.Record(event)
}
