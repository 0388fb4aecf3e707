package graph

import (
	"context"
	"fmt"

	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/store"
)

const (
	DefaultProjectionLimit = 1000
	MaxProjectionLimit     = 10000
)

// Projector reads a bounded node/link view of the graph for rendering.
type Projector struct {
	store store.GraphStorage
}

func NewProjector(s store.GraphStorage) *Projector {
	return &Projector{store: s}
}

// Project reads at most limit edges, DefaultProjectionLimit when limit <= 0.
// Nodes appear once, in the order they are first seen. Truncated is set
// when the limit was hit, in which case the projection is only a sample.
func (p *Projector) Project(ctx context.Context, limit int) (common.GraphProjection, error) {
	if limit <= 0 {
		limit = DefaultProjectionLimit
	}

	edges, err := p.store.ScanEdges(ctx, limit)
	if err != nil {
		return common.GraphProjection{}, fmt.Errorf("failed to scan edges: %w", err)
	}

	proj := common.GraphProjection{
		Nodes:     make([]common.GraphNode, 0, len(edges)),
		Links:     make([]common.GraphLink, 0, len(edges)),
		Truncated: len(edges) >= limit,
	}
	seen := make(map[string]struct{}, len(edges))
	addNode := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		proj.Nodes = append(proj.Nodes, common.GraphNode{ID: name})
	}

	for _, e := range edges {
		addNode(e.Source)
		addNode(e.Target)
		proj.Links = append(proj.Links, common.GraphLink{
			Source: e.Source,
			Target: e.Target,
			Type:   e.Type,
		})
	}

	return proj, nil
}
