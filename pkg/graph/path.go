package graph

import (
	"context"
	"fmt"
	"math"

	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/schema"
	"github.com/sakshi-kadian/aurelius/pkg/store"
)

const (
	baseConfidence  = 0.95
	hopDecay        = 0.15
	confidenceFloor = 0.20
)

// PathReasoner finds the shortest connection between two entities and
// scores it by length.
type PathReasoner struct {
	store   store.GraphStorage
	maxHops int
}

// NewPathReasoner creates a reasoner. maxHops <= 0 leaves path length
// unbounded.
func NewPathReasoner(s store.GraphStorage, maxHops int) *PathReasoner {
	return &PathReasoner{store: s, maxHops: max(maxHops, 0)}
}

// Confidence decays by 0.15 per hop from 0.95 and never drops below 0.20.
// The result is rounded to two decimals.
func Confidence(hops int) float64 {
	c := math.Max(baseConfidence-hopDecay*float64(hops), confidenceFloor)
	return math.Round(c*100) / 100
}

// FindPath normalizes both names and returns the shortest undirected path
// between them. ok is false when either entity is unknown or they are not
// connected.
func (r *PathReasoner) FindPath(ctx context.Context, start, end string) (common.ReasoningPath, bool, error) {
	s := schema.NormalizeEntity(start)
	e := schema.NormalizeEntity(end)
	if s == "" || e == "" {
		return common.ReasoningPath{}, false, nil
	}

	nodes, ok, err := r.store.ShortestPath(ctx, s, e, r.maxHops)
	if err != nil {
		return common.ReasoningPath{}, false, fmt.Errorf("failed to find path: %w", err)
	}
	if !ok || len(nodes) == 0 {
		return common.ReasoningPath{}, false, nil
	}

	path := common.ReasoningPath{
		Nodes: nodes,
		Type:  common.DerivedPathTag,
	}
	path.Confidence = Confidence(path.Hops())
	return path, true, nil
}
