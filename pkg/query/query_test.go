package query

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sakshi-kadian/aurelius/pkg/ai"
	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/graph"
	"github.com/sakshi-kadian/aurelius/pkg/store/memory"
)

type staticSearch struct {
	passages []string
	err      error
	gotK     int
}

func (s *staticSearch) SimilaritySearch(_ context.Context, _ string, k int) ([]string, error) {
	s.gotK = k
	return s.passages, s.err
}

type eventRecorder struct {
	kinds []TraceEventKind
}

func (r *eventRecorder) Record(e TraceEvent) {
	r.kinds = append(r.kinds, e.Kind)
}

func seededReasoner(t *testing.T) *graph.PathReasoner {
	t.Helper()
	s := memory.NewGraphStorage()
	_, err := graph.NewMergeEngine(s).Merge(context.Background(), []common.Triplet{
		{Subject: "Elon Musk", Predicate: "FOUNDED", Object: "SpaceX"},
		{Subject: "SpaceX", Predicate: "BUILDS", Object: "Starship"},
		{Subject: "Island", Predicate: "NEAR", Object: "Reef"},
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	return graph.NewPathReasoner(s, 0)
}

func TestAnswerWithPath(t *testing.T) {
	search := &staticSearch{passages: []string{"Elon Musk founded SpaceX in 2002.", "SpaceX builds Starship."}}
	rec := &eventRecorder{}
	c := NewReasoningClient(NewReasoningClientParams{
		Search:   search,
		Reasoner: seededReasoner(t),
		Tracer:   rec,
	})

	res, err := c.Answer(context.Background(), "How is Elon Musk connected to Starship?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if search.gotK != DefaultTopK {
		t.Fatalf("SimilaritySearch() k got = %d, want %d", search.gotK, DefaultTopK)
	}
	if res.Path == nil {
		t.Fatalf("Answer() path got = nil")
	}
	if !reflect.DeepEqual(res.Path.Nodes, []string{"Elon Musk", "SpaceX", "Starship"}) || res.Path.Confidence != 0.65 {
		t.Fatalf("Answer() path got = %+v", res.Path)
	}
	if res.Path.Type != common.DerivedPathTag {
		t.Fatalf("Answer() path type got = %q", res.Path.Type)
	}
	if !reflect.DeepEqual(res.Context, search.passages) {
		t.Fatalf("Answer() context got = %v", res.Context)
	}
	for _, want := range []string{"Elon Musk -> SpaceX -> Starship", "2 hops", "65%", "Elon Musk founded SpaceX in 2002."} {
		if !strings.Contains(res.Answer, want) {
			t.Fatalf("Answer() got = %q, want it to contain %q", res.Answer, want)
		}
	}

	wantSteps := []string{
		"Analyzing query intent",
		"Retrieved 2 context passages from vector memory",
		"Identified entities: Elon Musk, Starship",
		"Traversed knowledge graph (depth 2): Elon Musk -> SpaceX -> Starship",
		"Synthesized answer",
	}
	if !reflect.DeepEqual(res.Steps, wantSteps) {
		t.Fatalf("Answer() steps got = %#v, want %#v", res.Steps, wantSteps)
	}
	wantKinds := []TraceEventKind{
		TraceEventQueryReceived,
		TraceEventContextRetrieved,
		TraceEventEntitiesResolved,
		TraceEventPathSearched,
		TraceEventAnswered,
	}
	if !reflect.DeepEqual(rec.kinds, wantKinds) {
		t.Fatalf("tracer events got = %v, want %v", rec.kinds, wantKinds)
	}
}

func TestAnswerWithoutPathDoesNotInvent(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"disconnected", "Is Elon Musk related to Reef?", "No connection between Elon Musk and Reef"},
		{"unknown entities", "How is Ghost linked to Nowhere?", "No connection between Ghost and Nowhere"},
		{"single entity", "tell me about SpaceX", "Only one entity (SpaceX)"},
		{"no entities", "how is it related?", "No entities could be identified"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := NewReasoningClient(NewReasoningClientParams{Reasoner: seededReasoner(t)})
			res, err := c.Answer(context.Background(), test.query)
			if err != nil {
				t.Fatalf("Answer() error = %v", err)
			}
			if res.Path != nil {
				t.Fatalf("Answer() path got = %+v, want nil", res.Path)
			}
			if !strings.Contains(res.Answer, test.want) {
				t.Fatalf("Answer() got = %q, want it to contain %q", res.Answer, test.want)
			}
			if strings.Contains(res.Answer, "confidence") {
				t.Fatalf("Answer() got = %q, reports a confidence without a path", res.Answer)
			}
			if res.Context == nil || len(res.Context) != 0 {
				t.Fatalf("Answer() context got = %#v, want empty list", res.Context)
			}
		})
	}
}

func TestAnswerSameEntity(t *testing.T) {
	c := NewReasoningClient(NewReasoningClientParams{Reasoner: seededReasoner(t)})
	res, err := c.Answer(context.Background(), `Is "SpaceX" the same as "spaceX"?`)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if res.Path != nil {
		t.Fatalf("Answer() path got = %+v, want nil for one distinct entity", res.Path)
	}
}

func TestAnswerSearchFailure(t *testing.T) {
	errDown := errors.New("vector index down")
	c := NewReasoningClient(NewReasoningClientParams{
		Search:   &staticSearch{err: errDown},
		Reasoner: seededReasoner(t),
	})
	if _, err := c.Answer(context.Background(), "How is Elon Musk connected to SpaceX?"); !errors.Is(err, errDown) {
		t.Fatalf("Answer() error = %v, want %v", err, errDown)
	}
}

func TestAnswerEmptyQuery(t *testing.T) {
	c := NewReasoningClient(NewReasoningClientParams{})
	if _, err := c.Answer(context.Background(), "   "); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("Answer() error = %v, want ErrEmptyQuery", err)
	}
}

func TestAnswerCustomTopK(t *testing.T) {
	search := &staticSearch{}
	c := NewReasoningClient(NewReasoningClientParams{Search: search, TopK: 2})
	if _, err := c.Answer(context.Background(), "SpaceX"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if search.gotK != 2 {
		t.Fatalf("SimilaritySearch() k got = %d, want 2", search.gotK)
	}
}

type offlineEmbedder struct{}

func (offlineEmbedder) GenerateCompletion(context.Context, string, ...ai.GenerateOption) (string, error) {
	return "", errors.New("backend offline")
}

func (offlineEmbedder) GenerateEmbedding(context.Context, []byte) ([]float32, error) {
	return nil, errors.New("backend offline")
}

func (offlineEmbedder) ResetMetrics()               {}
func (offlineEmbedder) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func TestAnswerEmptyIndexSkipsEmbedding(t *testing.T) {
	c := NewReasoningClient(NewReasoningClientParams{
		Search:   memory.NewChunkStorage(offlineEmbedder{}),
		Reasoner: seededReasoner(t),
	})

	res, err := c.Answer(context.Background(), "How is Elon Musk connected to Starship?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if res.Path == nil || len(res.Path.Nodes) != 3 {
		t.Fatalf("Answer() path got = %+v, want 3 nodes", res.Path)
	}
	if res.Context == nil || len(res.Context) != 0 {
		t.Fatalf("Answer() context got = %#v, want empty list", res.Context)
	}
}
