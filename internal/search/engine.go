package search

import (
	"sort"

	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
)

// Result is one matching entry and the verbatim text of its matching lines.
// Lines is nil for match-all queries.
type Result struct {
	EntryID string   `json:"id"`
	Lines   []string `json:"lines,omitempty"`
}

// Search resolves query against idx and doc.
//
// Free-text terms are ANDed per line with prefix matching; matches are mapped
// back to entries through their composite references, and the display text is
// read from doc, not from the index. References that no longer resolve in doc
// are skipped. Without terms every entry of doc is a candidate, except deleted
// entries when idx was built with WithSkipDeletedEntries. Filters are
// applied last. Results are ordered by entry id; lines within an entry keep
// the order they were found in.
func Search(idx *Index, doc *hymnal.Document, query string) []Result {
	return SearchQuery(idx, doc, ParseQuery(query))
}

// SearchQuery is Search for an already parsed query.
func SearchQuery(idx *Index, doc *hymnal.Document, q Query) []Result {
	var results []Result
	if q.MatchAll() {
		for _, e := range doc.Entries() {
			if idx != nil && idx.skipDeleted && e.Deleted {
				continue
			}
			results = append(results, Result{EntryID: e.ID})
		}
	} else {
		if idx == nil {
			return nil
		}
		results = matchLines(idx, doc, q.Terms)
	}

	if len(q.Filters) == 0 {
		return results
	}
	kept := results[:0]
	for _, r := range results {
		e, ok := doc.Entry(r.EntryID)
		if !ok {
			continue
		}
		if Accept(e, q.Filters) {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func matchLines(idx *Index, doc *hymnal.Document, terms []string) []Result {
	byEntry := make(map[string]int)
	var results []Result
	for _, pos := range idx.match(terms) {
		ref, err := ParseRef(idx.records[pos].Ref)
		if err != nil {
			continue
		}
		e, ok := doc.Entry(ref.EntryID)
		if !ok {
			continue
		}
		text, ok := e.LineAt(ref.Segment, ref.Line)
		if !ok {
			continue
		}
		k, seen := byEntry[ref.EntryID]
		if !seen {
			k = len(results)
			byEntry[ref.EntryID] = k
			results = append(results, Result{EntryID: ref.EntryID})
		}
		results[k].Lines = append(results[k].Lines, text)
	}
	sort.SliceStable(results, func(a, b int) bool {
		return hymnal.CompareIDs(results[a].EntryID, results[b].EntryID) < 0
	})
	return results
}

// EntryIDs extracts the entry ids of rs, in order.
func EntryIDs(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.EntryID
	}
	return out
}
