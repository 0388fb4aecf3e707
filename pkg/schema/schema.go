// Package schema turns raw model output into graph-safe keys.
//
// Entity names become node keys through NormalizeEntity. Predicates become
// relationship types through SanitizeRelation, which is the only way to
// obtain a RelationType. Graph stores embed a RelationType directly into
// query text, so any value of that type is guaranteed to match
// ^[A-Z0-9_]+$.
package schema

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultRelationToken is used when a predicate sanitizes to nothing.
const DefaultRelationToken = "RELATED_TO"

// EntityLabel is the node label every merged entity carries.
const EntityLabel = "Entity"

// NormalizeEntity trims raw, collapses inner whitespace and upper-cases the
// first rune of every word. The rest of each word is left as written, so
// "elon musk" and "Elon Musk" share a key while "SpaceX" stays "SpaceX".
// Whitespace-only input yields "".
func NormalizeEntity(raw string) string {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return ""
	}
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		words[i] = string(unicode.ToTitle(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// RelationType is a sanitized relationship type. The zero value is
// RELATED_TO.
type RelationType struct {
	token string
}

// DefaultRelation returns the fallback RELATED_TO type.
func DefaultRelation() RelationType {
	return RelationType{token: DefaultRelationToken}
}

// String returns the token as it is written into a query.
func (r RelationType) String() string {
	if r.token == "" {
		return DefaultRelationToken
	}
	return r.token
}

// SanitizeRelation trims raw, replaces spaces with underscores and
// upper-cases it, then keeps only ASCII A-Z, 0-9 and underscore. The filter
// runs last and inspects every rune of the final string, so no earlier step
// can smuggle a character through. An empty result becomes RELATED_TO.
func SanitizeRelation(raw string) RelationType {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ToUpper(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if allowedRelationRune(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultRelation()
	}
	return RelationType{token: b.String()}
}

func allowedRelationRune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

// IsValidRelationToken reports whether token already has the sanitized shape.
func IsValidRelationToken(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !allowedRelationRune(r) {
			return false
		}
	}
	return true
}

// Fact is a triplet whose endpoints are normalized and whose predicate is
// sanitized. Stores only accept facts.
type Fact struct {
	Subject  string
	Relation RelationType
	Object   string
}

// NewFact normalizes both endpoints and sanitizes the predicate. It returns
// false when either endpoint normalizes to the empty string.
func NewFact(subject, predicate, object string) (Fact, bool) {
	f := Fact{
		Subject:  NormalizeEntity(subject),
		Relation: SanitizeRelation(predicate),
		Object:   NormalizeEntity(object),
	}
	if f.Subject == "" || f.Object == "" {
		return Fact{}, false
	}
	return f, true
}

// Key identifies the edge a fact produces.
func (f Fact) Key() string {
	return f.Subject + "\x00" + f.Relation.String() + "\x00" + f.Object
}
