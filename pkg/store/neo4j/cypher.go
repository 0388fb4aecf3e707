package neo4j

import (
	"fmt"

	"github.com/sakshi-kadian/aurelius/pkg/schema"
)

// Relationship types cannot be query parameters, so they are written into
// the query text. Only schema.RelationType values reach these builders and
// the token is checked again before use. Tokens are backtick-quoted since a
// sanitized token may start with a digit.

const schemaConstraintQuery = `CREATE CONSTRAINT entity_name_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.name IS UNIQUE`

const scanEdgesQuery = `
MATCH (s:Entity)-[r]->(o:Entity)
RETURN s.name AS source, type(r) AS type, o.name AS target
LIMIT $limit
`

const entityExistsQuery = `
MATCH (e:Entity {name: $name})
RETURN count(e) > 0 AS found
`

const mergeFactTemplate = "\nMERGE (s:Entity {name: $subject})\n" +
	"MERGE (o:Entity {name: $object})\n" +
	"MERGE (s)-[:`%s`]->(o)\n"

// mergeFactQuery returns the single-statement upsert of subject, object and
// the typed edge between them.
func mergeFactQuery(rel schema.RelationType) (string, error) {
	token := rel.String()
	if !schema.IsValidRelationToken(token) {
		return "", fmt.Errorf("neo4j: refusing relation token %q", token)
	}
	return fmt.Sprintf(mergeFactTemplate, token), nil
}

// shortestPathQuery matches an undirected shortest path between two
// distinct entities. maxHops <= 0 leaves the length unbounded.
func shortestPathQuery(maxHops int) string {
	pattern := "[*]"
	if maxHops > 0 {
		pattern = fmt.Sprintf("[*..%d]", maxHops)
	}
	return fmt.Sprintf(`
MATCH (s:Entity {name: $start}), (e:Entity {name: $end})
MATCH p = shortestPath((s)-%s-(e))
RETURN [n IN nodes(p) | n.name] AS names
`, pattern)
}
