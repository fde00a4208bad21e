// Package search builds and queries a line-level full-text index over a
// hymnal.Document.
//
//   - One record per flattened line, addressed by a composite LineRef
//   - Punctuation-stripping, case-folding normalization shared by build and query
//   - Boolean AND matching with trailing-wildcard (prefix) terms, no scoring
//   - Structured filters (#type=value or type:value) over entry fields
//   - Immutable after construction (safe for concurrent use)
//   - Round-trips through an opaque, versioned blob (Encode/Decode)
//
// No logging in the library: callers decide how and what to log.
package search

import (
	"sort"
	"strings"

	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
)

// IndexVersion is written into every serialized index. Bump it whenever the
// record layout or the normalization pipeline changes.
const IndexVersion = 2

// Record is one indexed line: its composite reference and normalized tokens.
type Record struct {
	Ref    string   `bson:"r"`
	Tokens []string `bson:"t"`
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	fingerprint        string
	skipDeletedVerses  bool
	skipDeletedEntries bool
}

func defaultConfig() config {
	return config{}
}

// WithFingerprint stamps the index with the fingerprint of the raw markup the
// document was parsed from, so a stale stored index can be detected.
func WithFingerprint(fp string) Option {
	return func(c *config) {
		c.fingerprint = strings.TrimSpace(fp)
	}
}

// WithSkipDeletedVerses leaves verses flagged deleted out of the index. Line
// numbering of the remaining segments is unaffected.
func WithSkipDeletedVerses(skip bool) Option {
	return func(c *config) {
		c.skipDeletedVerses = skip
	}
}

// WithSkipDeletedEntries leaves entries flagged deleted out of the index and
// out of match-all results, so filter-only queries agree with text queries.
func WithSkipDeletedEntries(skip bool) Option {
	return func(c *config) {
		c.skipDeletedEntries = skip
	}
}

// ----------------------------------------------------------------------------
// Implementation

// Index is an inverted index from normalized tokens to line records.
type Index struct {
	version     int
	documentID  string
	fingerprint string
	skipDeleted bool
	records     []Record

	terms    []string         // sorted distinct tokens, for prefix ranges
	postings map[string][]int // token -> ascending record positions
}

// Build indexes every line of doc.
func Build(doc *hymnal.Document, opts ...Option) *Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	var records []Record
	for _, e := range doc.Entries() {
		if cfg.skipDeletedEntries && e.Deleted {
			continue
		}
		for _, seg := range e.Segments() {
			v := e.Block(seg)
			if cfg.skipDeletedVerses && v.Deleted {
				continue
			}
			for i, text := range hymnal.FlattenLines(v) {
				ref := LineRef{EntryID: e.ID, Segment: seg, Line: i}
				records = append(records, Record{Ref: ref.String(), Tokens: Tokenize(text)})
			}
		}
	}
	return newIndex(IndexVersion, doc.ID, cfg.fingerprint, cfg.skipDeletedEntries, records)
}

func newIndex(version int, documentID, fingerprint string, skipDeleted bool, records []Record) *Index {
	idx := &Index{
		version:     version,
		documentID:  documentID,
		fingerprint: fingerprint,
		skipDeleted: skipDeleted,
		records:     records,
		postings:    make(map[string][]int),
	}
	for pos, rec := range records {
		for _, tok := range rec.Tokens {
			p := idx.postings[tok]
			if n := len(p); n > 0 && p[n-1] == pos {
				continue
			}
			idx.postings[tok] = append(p, pos)
		}
	}
	idx.terms = make([]string, 0, len(idx.postings))
	for tok := range idx.postings {
		idx.terms = append(idx.terms, tok)
	}
	sort.Strings(idx.terms)
	return idx
}

// Version returns the format version the index was built with.
func (i *Index) Version() int { return i.version }

// DocumentID returns the id of the indexed document.
func (i *Index) DocumentID() string { return i.documentID }

// Fingerprint returns the source fingerprint, or "" when none was set.
func (i *Index) Fingerprint() string { return i.fingerprint }

// Len returns the number of line records.
func (i *Index) Len() int { return len(i.records) }

// Records returns a copy of the line records in index order.
func (i *Index) Records() []Record {
	out := make([]Record, len(i.records))
	copy(out, i.records)
	return out
}

// prefixMatches returns the ascending record positions containing a token
// that starts with term.
func (i *Index) prefixMatches(term string) []int {
	lo := sort.SearchStrings(i.terms, term)
	var hits []int
	seen := make(map[int]struct{})
	for k := lo; k < len(i.terms) && strings.HasPrefix(i.terms[k], term); k++ {
		for _, pos := range i.postings[i.terms[k]] {
			if _, ok := seen[pos]; ok {
				continue
			}
			seen[pos] = struct{}{}
			hits = append(hits, pos)
		}
	}
	sort.Ints(hits)
	return hits
}

// match returns the ascending record positions matching every term.
func (i *Index) match(terms []string) []int {
	var acc []int
	for n, term := range terms {
		hits := i.prefixMatches(term)
		if n == 0 {
			acc = hits
		} else {
			acc = intersect(acc, hits)
		}
		if len(acc) == 0 {
			return nil
		}
	}
	return acc
}

// intersect merges two ascending slices.
func intersect(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))
	for x, y := 0, 0; x < len(a) && y < len(b); {
		switch {
		case a[x] == b[y]:
			out = append(out, a[x])
			x++
			y++
		case a[x] < b[y]:
			x++
		default:
			y++
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
