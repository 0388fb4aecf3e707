package query

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sakshi-kadian/aurelius/pkg/graph"
	"github.com/sakshi-kadian/aurelius/pkg/schema"
)

// EntityResolver picks the entity names a query is about, most relevant
// first.
type EntityResolver interface {
	Resolve(ctx context.Context, query string) ([]string, error)
}

var quotedPattern = regexp.MustCompile(`"([^"]+)"|“([^”]+)”`)

var stopWords = map[string]struct{}{
	"a": {}, "about": {}, "an": {}, "and": {}, "any": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "between": {}, "by": {}, "can": {}, "connect": {}, "connected": {},
	"connection": {}, "could": {}, "did": {}, "do": {}, "does": {}, "explain": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "how": {}, "in": {}, "is": {},
	"it": {}, "link": {}, "linked": {}, "me": {}, "of": {}, "on": {}, "or": {},
	"path": {}, "relate": {}, "related": {}, "relationship": {}, "same": {}, "show": {},
	"tell": {}, "that": {}, "the": {}, "there": {}, "this": {}, "to": {},
	"was": {}, "were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"who": {}, "why": {}, "with": {},
}

// HeuristicResolver finds entities without a model: quoted phrases first,
// then runs of capitalised words, then the remaining content words.
type HeuristicResolver struct{}

func (HeuristicResolver) Resolve(_ context.Context, query string) ([]string, error) {
	return heuristicEntities(query), nil
}

func heuristicEntities(query string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(name string) {
		n := schema.NormalizeEntity(name)
		if n == "" {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	for _, m := range quotedPattern.FindAllStringSubmatch(query, -1) {
		for _, g := range m[1:] {
			if g != "" {
				add(g)
			}
		}
	}
	rest := quotedPattern.ReplaceAllString(query, " ")
	if len(out) >= 2 {
		return out
	}

	words := splitWords(rest)
	var phrase []string
	flush := func() {
		if len(phrase) > 0 {
			add(strings.Join(phrase, " "))
			phrase = phrase[:0]
		}
	}
	for _, w := range words {
		if isCapitalised(w) && !isStopWord(w) {
			phrase = append(phrase, w)
			continue
		}
		flush()
	}
	flush()
	if len(out) >= 2 {
		return out
	}

	for _, w := range words {
		if isStopWord(w) || len([]rune(w)) < 3 {
			continue
		}
		add(w)
	}
	return out
}

func splitWords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'' || r == '.')
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSuffix(f, "'s")
		f = strings.Trim(f, "-'.")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

func isCapitalised(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

func isStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}

// ExtractorResolver runs triplet extraction on the query and uses the
// subject and object of the first fact. It falls back to the heuristic when
// the model finds nothing usable.
type ExtractorResolver struct {
	Extractor *graph.TripletExtractor
}

func (r ExtractorResolver) Resolve(ctx context.Context, query string) ([]string, error) {
	if r.Extractor != nil {
		res := r.Extractor.ExtractResult(ctx, query)
		if res.Outcome == graph.ExtractionOK {
			for _, t := range res.Triplets {
				s := schema.NormalizeEntity(t.Subject)
				o := schema.NormalizeEntity(t.Object)
				if s != "" && o != "" {
					return []string{s, o}, nil
				}
			}
		}
	}
	return heuristicEntities(query), nil
}
