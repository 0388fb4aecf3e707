package query

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/sakshi-kadian/aurelius/pkg/ai"
	"github.com/sakshi-kadian/aurelius/pkg/graph"
)

func TestHeuristicResolver(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "capitalised phrases",
			query: "How is Elon Musk connected to SpaceX?",
			want:  []string{"Elon Musk", "SpaceX"},
		},
		{
			name:  "quoted phrases win",
			query: `Is "neural network" related to "symbolic logic" in Aurelius?`,
			want:  []string{"Neural Network", "Symbolic Logic"},
		},
		{
			name:  "lower case falls back to content words",
			query: "is there a link between tesla and spacex",
			want:  []string{"Tesla", "Spacex"},
		},
		{
			name:  "duplicates collapse",
			query: "SpaceX and SpaceX's rockets",
			want:  []string{"SpaceX", "Rockets"},
		},
		{
			name:  "only stop words",
			query: "how is it related?",
			want:  nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := HeuristicResolver{}.Resolve(context.Background(), test.query)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Fatalf("Resolve() got = %#v, want %#v", got, test.want)
			}
		})
	}
}

type stubAI struct {
	content string
	err     error
}

func (s stubAI) GenerateCompletion(context.Context, string, ...ai.GenerateOption) (string, error) {
	return s.content, s.err
}
func (stubAI) GenerateEmbedding(context.Context, []byte) ([]float32, error) { return nil, nil }
func (stubAI) ResetMetrics()                                                 {}
func (stubAI) GetMetrics() ai.ModelMetrics                                   { return ai.ModelMetrics{} }

func TestExtractorResolver(t *testing.T) {
	tests := []struct {
		name   string
		client stubAI
		want   []string
	}{
		{
			name:   "first usable triplet",
			client: stubAI{content: `[{"subject":"","predicate":"X","object":"Y"},{"subject":"elon musk","predicate":"FOUNDED","object":"spacex"}]`},
			want:   []string{"Elon Musk", "Spacex"},
		},
		{
			name:   "falls back on backend error",
			client: stubAI{err: errors.New("down")},
			want:   []string{"Elon Musk", "SpaceX"},
		},
		{
			name:   "falls back on empty extraction",
			client: stubAI{content: `[]`},
			want:   []string{"Elon Musk", "SpaceX"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := ExtractorResolver{Extractor: graph.NewTripletExtractor(test.client)}
			got, err := r.Resolve(context.Background(), "Did Elon Musk found SpaceX?")
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Fatalf("Resolve() got = %v, want %v", got, test.want)
			}
		})
	}
}
