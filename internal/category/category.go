// Package category groups hymnal entries into facet categories.
//
// A categorization is a pure function of the document, the facet type, the
// entry subset and the sort mode; identical inputs always yield identical
// output.
package category

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
)

// SortMode selects the ordering of a categorization.
type SortMode string

const (
	SortDefault SortMode = "default"
	SortName    SortMode = "name"
	SortCount   SortMode = "count"
)

// ErrBadSortMode is returned by ParseSortMode for unknown modes.
var ErrBadSortMode = errors.New("category: unknown sort mode")

// ParseSortMode resolves a sort mode name. The empty string is SortDefault.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", SortDefault:
		return SortDefault, nil
	case SortName, SortCount:
		return m, nil
	}
	return "", ErrBadSortMode
}

// Kind tells where a category came from.
type Kind string

const (
	KindDefined       Kind = "defined"       // row of the facet table
	KindAdhoc         Kind = "adhoc"         // referenced id missing from the table
	KindUncategorized Kind = "uncategorized" // entries without references
)

// UncategorizedID is the id of the uncategorized bucket. Facet ids are never
// empty, so it cannot collide with a real category.
const UncategorizedID = ""

// Category is one bucket of a categorization. Name is the display name:
// the facet-table name, or "[id]" when there is none.
type Category struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Members []string `json:"members"`

	label string // raw table name, "" when absent
}

// sortKey is the name used for name ordering: the table name, else the id.
func (c *Category) sortKey() string {
	if c.label != "" {
		return c.label
	}
	return c.ID
}

// Categorize groups entries by their references for ft.
//
// Defined categories come first in table order, with empty ones dropped,
// followed by adhoc categories by ascending id. When ft has no meaningful
// default order, or mode is SortName, the whole list is re-sorted by name.
// SortCount then orders by member count, descending, keeping the previous
// order among equals. The uncategorized bucket, when non-empty, is always
// last. Members keep the order of entries.
func Categorize(doc *hymnal.Document, ft hymnal.FacetType, entries []*hymnal.Entry, mode SortMode) []Category {
	var (
		defined []*Category
		adhoc   []*Category
		byID    = make(map[string]*Category)
		uncat   = &Category{ID: UncategorizedID, Kind: KindUncategorized}
	)
	if table, ok := doc.FacetTable(ft); ok {
		for _, f := range table.Facets() {
			c := &Category{ID: f.ID, Name: hymnal.DisplayName(f.ID, f.Name), Kind: KindDefined, label: f.Name}
			byID[f.ID] = c
			defined = append(defined, c)
		}
	}

	for _, e := range entries {
		if e == nil {
			continue
		}
		refs := e.FacetRefs(ft)
		if len(refs) == 0 {
			uncat.Members = append(uncat.Members, e.ID)
			continue
		}
		for _, id := range refs {
			c, ok := byID[id]
			if !ok {
				c = &Category{ID: id, Name: hymnal.DisplayName(id, ""), Kind: KindAdhoc}
				byID[id] = c
				adhoc = append(adhoc, c)
			}
			c.Members = append(c.Members, e.ID)
		}
	}

	out := make([]*Category, 0, len(defined)+len(adhoc))
	for _, c := range defined {
		if len(c.Members) > 0 {
			out = append(out, c)
		}
	}
	sort.Slice(adhoc, func(i, j int) bool {
		return hymnal.CompareIDs(adhoc[i].ID, adhoc[j].ID) < 0
	})
	out = append(out, adhoc...)

	if mode == SortName || !doc.HasDefaultSort(ft) {
		sortByName(out, collate.New(languageTag(doc.Language), collate.IgnoreCase))
	}
	if mode == SortCount {
		sort.SliceStable(out, func(i, j int) bool {
			return len(out[i].Members) > len(out[j].Members)
		})
	}
	if len(uncat.Members) > 0 {
		uncat.Name = "Uncategorized"
		out = append(out, uncat)
	}

	res := make([]Category, len(out))
	for i, c := range out {
		res[i] = *c
	}
	return res
}

// CategorizeIDs is Categorize over entry ids. Ids missing from doc are
// skipped; a nil ids slice means every entry of doc.
func CategorizeIDs(doc *hymnal.Document, ft hymnal.FacetType, ids []string, mode SortMode) []Category {
	if ids == nil {
		return Categorize(doc, ft, doc.Entries(), mode)
	}
	entries := make([]*hymnal.Entry, 0, len(ids))
	for _, id := range ids {
		if e, ok := doc.Entry(id); ok {
			entries = append(entries, e)
		}
	}
	return Categorize(doc, ft, entries, mode)
}

// IDs returns the ids of cs, in order.
func IDs(cs []Category) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

// sortByName orders cs by collated name, then by id so that names comparing
// equal still sort deterministically.
func sortByName(cs []*Category, col *collate.Collator) {
	sort.SliceStable(cs, func(i, j int) bool {
		if d := col.CompareString(cs[i].sortKey(), cs[j].sortKey()); d != 0 {
			return d < 0
		}
		return hymnal.CompareIDs(cs[i].ID, cs[j].ID) < 0
	})
}

func languageTag(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und
	}
	return tag
}
