package neo4j

import (
	"context"
	"fmt"

	neo4jv5 "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/logger"
	"github.com/sakshi-kadian/aurelius/pkg/schema"
	"github.com/sakshi-kadian/aurelius/pkg/store"
)

// GraphStorage is the Neo4j implementation of store.GraphStorage. Entities
// are (:Entity {name}) nodes; facts are typed relationships between them.
type GraphStorage struct {
	client *Client
}

var _ store.GraphStorage = (*GraphStorage)(nil)

// NewGraphStorage wraps an open client. The client is closed by Close.
func NewGraphStorage(client *Client) *GraphStorage {
	return &GraphStorage{client: client}
}

// EnsureSchema creates the uniqueness constraint on Entity.name. Failure is
// logged and ignored because older servers or restricted users may not
// allow schema changes.
func (s *GraphStorage) EnsureSchema(ctx context.Context) {
	session := s.client.session(ctx, neo4jv5.AccessModeWrite)
	defer session.Close(ctx)

	res, err := session.Run(ctx, schemaConstraintQuery, nil)
	if err != nil {
		logger.Warn("[Neo4j] Schema init failed (continuing)", "err", err)
		return
	}
	if _, err := res.Consume(ctx); err != nil {
		logger.Warn("[Neo4j] Schema init failed (continuing)", "err", err)
	}
}

// MergeFacts runs one write transaction per fact inside a single session.
func (s *GraphStorage) MergeFacts(ctx context.Context, facts []schema.Fact) (int, error) {
	if len(facts) == 0 {
		return 0, nil
	}
	session := s.client.session(ctx, neo4jv5.AccessModeWrite)
	defer session.Close(ctx)

	for i, f := range facts {
		query, err := mergeFactQuery(f.Relation)
		if err != nil {
			return i, err
		}
		params := map[string]any{"subject": f.Subject, "object": f.Object}
		_, err = session.ExecuteWrite(ctx, func(tx neo4jv5.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, query, params)
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		if err != nil {
			return i, fmt.Errorf("failed to merge fact %d: %w", i, err)
		}
	}
	return len(facts), nil
}

// ScanEdges reads up to limit directed Entity edges.
func (s *GraphStorage) ScanEdges(ctx context.Context, limit int) ([]common.Edge, error) {
	session := s.client.session(ctx, neo4jv5.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4jv5.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, scanEdgesQuery, map[string]any{"limit": int64(limit)})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		edges := make([]common.Edge, 0, len(records))
		for _, record := range records {
			source, _ := record.Get("source")
			typ, _ := record.Get("type")
			target, _ := record.Get("target")
			edge := common.Edge{Source: asString(source), Type: asString(typ), Target: asString(target)}
			if edge.Source == "" || edge.Target == "" {
				continue
			}
			edges = append(edges, edge)
		}
		return edges, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan edges: %w", err)
	}
	return out.([]common.Edge), nil
}

// ShortestPath returns the node names on the shortest undirected path.
// Neo4j rejects shortestPath with identical endpoints, so start == end is an
// existence check.
func (s *GraphStorage) ShortestPath(ctx context.Context, start, end string, maxHops int) ([]string, bool, error) {
	session := s.client.session(ctx, neo4jv5.AccessModeRead)
	defer session.Close(ctx)

	if start == end {
		found, err := session.ExecuteRead(ctx, func(tx neo4jv5.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, entityExistsQuery, map[string]any{"name": start})
			if err != nil {
				return nil, err
			}
			record, err := res.Single(ctx)
			if err != nil {
				return nil, err
			}
			v, _ := record.Get("found")
			ok, _ := v.(bool)
			return ok, nil
		})
		if err != nil {
			return nil, false, fmt.Errorf("failed to look up entity: %w", err)
		}
		if !found.(bool) {
			return nil, false, nil
		}
		return []string{start}, true, nil
	}

	out, err := session.ExecuteRead(ctx, func(tx neo4jv5.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, shortestPathQuery(maxHops), map[string]any{"start": start, "end": end})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return []string(nil), nil
		}
		raw, _ := records[0].Get("names")
		list, _ := raw.([]any)
		names := make([]string, 0, len(list))
		for _, n := range list {
			names = append(names, asString(n))
		}
		return names, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to find shortest path: %w", err)
	}
	names := out.([]string)
	if len(names) == 0 {
		return nil, false, nil
	}
	return names, true, nil
}

// Close closes the underlying driver.
func (s *GraphStorage) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
