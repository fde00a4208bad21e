package search

import (
	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
)

// predicate reports whether e passes f.
type predicate func(e *hymnal.Entry, f Filter) bool

// filters maps filter types to entry predicates. Types missing here are
// no-ops: they pass every entry.
var filters = map[string]predicate{
	"topic":      listFilter(func(e *hymnal.Entry) []string { return e.Topics }),
	"tune":       listFilter(func(e *hymnal.Entry) []string { return e.Tunes }),
	"day":        listFilter(func(e *hymnal.Entry) []string { return e.Days }),
	"origin":     scalarFilter(func(e *hymnal.Entry) string { return e.Origin }),
	"lang":       scalarFilter(func(e *hymnal.Entry) string { return e.Language }),
	"author":     contributorFilter(hymnal.Author),
	"transl":     contributorFilter(hymnal.Translator),
	"deleted":    flagFilter(func(e *hymnal.Entry) bool { return e.Deleted }),
	"restricted": flagFilter(func(e *hymnal.Entry) bool { return e.Restricted }),
	"refrain":    flagFilter(func(e *hymnal.Entry) bool { return e.Refrain != nil }),
	"chorus":     flagFilter(func(e *hymnal.Entry) bool { return e.Chorus != nil }),
	"repeat":     flagFilter(func(e *hymnal.Entry) bool { return e.HasRepeat() }),
}

// FilterTypes lists the recognized structured filter types.
func FilterTypes() []string {
	return []string{
		"topic", "tune", "day", "origin", "author", "transl", "lang",
		"deleted", "restricted", "refrain", "chorus", "repeat",
	}
}

// Accept reports whether e passes every filter in fs.
func Accept(e *hymnal.Entry, fs []Filter) bool {
	for _, f := range fs {
		p, ok := filters[f.Type]
		if !ok {
			continue
		}
		if !p(e, f) {
			return false
		}
	}
	return true
}

func listFilter(get func(*hymnal.Entry) []string) predicate {
	return func(e *hymnal.Entry, f Filter) bool {
		ids := get(e)
		if !f.HasValue {
			return len(ids) > 0
		}
		for _, id := range ids {
			if id == f.Value {
				return true
			}
		}
		return false
	}
}

func scalarFilter(get func(*hymnal.Entry) string) predicate {
	return func(e *hymnal.Entry, f Filter) bool {
		v := get(e)
		if !f.HasValue {
			return v != ""
		}
		return v == f.Value
	}
}

func contributorFilter(typ hymnal.ContributorType) predicate {
	return func(e *hymnal.Entry, f Filter) bool {
		for _, c := range e.Contributors {
			if c.Type != typ {
				continue
			}
			if !f.HasValue || c.ID == f.Value {
				return true
			}
		}
		return false
	}
}

// flagFilter tests presence by default; an explicit value tests presence when
// it is "yes" and absence otherwise.
func flagFilter(get func(*hymnal.Entry) bool) predicate {
	return func(e *hymnal.Entry, f Filter) bool {
		want := !f.HasValue || f.Value == "yes"
		return get(e) == want
	}
}
