package search

import "strings"

// Filter is a structured query token: "#type=value" or, in the legacy
// grammar, "type:value". HasValue is false for bare "#type" or "type:",
// which test for presence.
type Filter struct {
	Type     string
	Value    string
	HasValue bool
}

// Query is a parsed query string.
type Query struct {
	Terms   []string // normalized free-text terms, all required
	Filters []Filter // AND-combined, applied after term matching
}

// MatchAll reports whether the query has no free-text terms.
func (q Query) MatchAll() bool { return len(q.Terms) == 0 }

// ParseQuery splits q on whitespace into filters and normalized terms.
// Tokens that normalize to nothing (pure punctuation or digits) are dropped.
func ParseQuery(q string) Query {
	var out Query
	for _, tok := range strings.Fields(q) {
		if f, ok := parseFilter(tok); ok {
			out.Filters = append(out.Filters, f)
			continue
		}
		out.Terms = append(out.Terms, Tokenize(tok)...)
	}
	return out
}

func parseFilter(tok string) (Filter, bool) {
	if strings.HasPrefix(tok, "#") {
		body := tok[1:]
		typ, val, has := strings.Cut(body, "=")
		return Filter{Type: strings.ToLower(typ), Value: val, HasValue: has && val != ""}, true
	}
	typ, val, has := strings.Cut(tok, ":")
	if !has || !isFilterType(typ) {
		return Filter{}, false
	}
	return Filter{Type: strings.ToLower(typ), Value: val, HasValue: val != ""}, true
}

// isFilterType accepts the legacy "type:" prefix only when it names a known
// filter, so free text such as "Lord:" or "12:30" stays a term.
func isFilterType(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	_, known := filters[s]
	return known
}
