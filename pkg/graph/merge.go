package graph

import (
	"context"
	"fmt"

	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/logger"
	"github.com/sakshi-kadian/aurelius/pkg/schema"
	"github.com/sakshi-kadian/aurelius/pkg/store"
)

// MergeEngine writes extracted triplets into a graph store.
type MergeEngine struct {
	store store.GraphStorage
}

func NewMergeEngine(s store.GraphStorage) *MergeEngine {
	return &MergeEngine{store: s}
}

// Merge normalizes and sanitizes triplets and upserts them in order.
// Triplets with an empty endpoint are skipped. The batch is best-effort: on
// a store failure the facts merged so far stay committed, the report counts
// them, and the error is returned.
func (m *MergeEngine) Merge(ctx context.Context, triplets []common.Triplet) (common.MergeReport, error) {
	var report common.MergeReport
	facts := make([]schema.Fact, 0, len(triplets))
	for _, t := range triplets {
		f, ok := schema.NewFact(t.Subject, t.Predicate, t.Object)
		if !ok {
			report.Skipped++
			continue
		}
		facts = append(facts, f)
	}

	if len(facts) == 0 {
		return report, nil
	}

	n, err := m.store.MergeFacts(ctx, facts)
	report.Accepted = n
	if err != nil {
		return report, fmt.Errorf("failed to merge facts: %w", err)
	}

	logger.Debug("[Graph] Merged facts", "accepted", report.Accepted, "skipped", report.Skipped)
	return report, nil
}
