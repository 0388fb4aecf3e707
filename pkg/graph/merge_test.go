package graph

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/store/memory"
)

func TestMergeNormalizes(t *testing.T) {
	s := memory.NewGraphStorage()
	m := NewMergeEngine(s)

	report, err := m.Merge(context.Background(), []common.Triplet{
		{Subject: "elon musk", Predicate: "founded", Object: "SpaceX"},
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if report != (common.MergeReport{Accepted: 1}) {
		t.Fatalf("Merge() report got = %+v", report)
	}

	edges, _ := s.ScanEdges(context.Background(), 0)
	want := []common.Edge{{Source: "Elon Musk", Target: "SpaceX", Type: "FOUNDED"}}
	if !reflect.DeepEqual(edges, want) {
		t.Fatalf("edges got = %+v, want %+v", edges, want)
	}
}

func TestMergeSanitizesPredicate(t *testing.T) {
	s := memory.NewGraphStorage()
	m := NewMergeEngine(s)

	if _, err := m.Merge(context.Background(), []common.Triplet{
		{Subject: "X", Predicate: "do; drop graph", Object: "Y"},
		{Subject: "X", Predicate: "", Object: "Z"},
	}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	edges, _ := s.ScanEdges(context.Background(), 0)
	if len(edges) != 2 {
		t.Fatalf("edges got = %d, want 2", len(edges))
	}
	if edges[0].Type != "DO_DROP_GRAPH" {
		t.Fatalf("sanitized type got = %q, want DO_DROP_GRAPH", edges[0].Type)
	}
	if strings.ContainsAny(edges[0].Type, "; ") {
		t.Fatalf("sanitized type %q contains unsafe characters", edges[0].Type)
	}
	if edges[1].Type != "RELATED_TO" {
		t.Fatalf("empty predicate type got = %q, want RELATED_TO", edges[1].Type)
	}
}

func TestMergeSameEntityAcrossSpellings(t *testing.T) {
	s := memory.NewGraphStorage()
	m := NewMergeEngine(s)

	for _, name := range []string{"elon musk", "  Elon   Musk ", "Elon Musk"} {
		if _, err := m.Merge(context.Background(), []common.Triplet{
			{Subject: name, Predicate: "FOUNDED", Object: "SpaceX"},
		}); err != nil {
			t.Fatalf("Merge() error = %v", err)
		}
	}
	if s.EntityCount() != 2 {
		t.Fatalf("EntityCount() got = %d, want 2", s.EntityCount())
	}
	if s.EdgeCount() != 1 {
		t.Fatalf("EdgeCount() got = %d, want 1", s.EdgeCount())
	}
}

func TestMergeIdempotent(t *testing.T) {
	batch := []common.Triplet{
		{Subject: "Elon Musk", Predicate: "FOUNDED", Object: "SpaceX"},
		{Subject: "Elon Musk", Predicate: "FOUNDED", Object: "Tesla"},
		{Subject: "SpaceX", Predicate: "LOCATED_IN", Object: "Texas"},
		{Subject: "Elon Musk", Predicate: "CEO_OF", Object: "SpaceX"},
	}
	s := memory.NewGraphStorage()
	m := NewMergeEngine(s)

	if _, err := m.Merge(context.Background(), batch); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	once := s.EdgeCount()
	if _, err := m.Merge(context.Background(), batch); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if s.EdgeCount() != once || once != 4 {
		t.Fatalf("EdgeCount() got = %d after two merges, want %d", s.EdgeCount(), once)
	}
}

func TestMergeSkipsEmptyEndpoints(t *testing.T) {
	s := memory.NewGraphStorage()
	m := NewMergeEngine(s)

	report, err := m.Merge(context.Background(), []common.Triplet{
		{Subject: "", Predicate: "FOUNDED", Object: "SpaceX"},
		{Subject: "Elon Musk", Predicate: "FOUNDED", Object: "   "},
		{Subject: "Elon Musk", Predicate: "FOUNDED", Object: "SpaceX"},
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if report != (common.MergeReport{Accepted: 1, Skipped: 2}) {
		t.Fatalf("Merge() report got = %+v", report)
	}
	if s.EntityCount() != 2 {
		t.Fatalf("EntityCount() got = %d, want 2", s.EntityCount())
	}
}

func TestMergeBestEffort(t *testing.T) {
	s := failAfter(2)
	m := NewMergeEngine(s)

	batch := make([]common.Triplet, 0, 4)
	for i := range 4 {
		batch = append(batch, common.Triplet{Subject: "Hub", Predicate: "LINKS", Object: fmt.Sprintf("Node %d", i)})
	}
	report, err := m.Merge(context.Background(), batch)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("Merge() error = %v, want injected failure", err)
	}
	if report.Accepted != 2 {
		t.Fatalf("Merge() accepted got = %d, want 2", report.Accepted)
	}
	if s.EdgeCount() != 2 {
		t.Fatalf("EdgeCount() got = %d, want committed prefix of 2", s.EdgeCount())
	}
}
