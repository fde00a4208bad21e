// Package hymnal defines the in-memory model of a hymnal/songbook document and
// the parser that produces it from XML markup.
//
// A Document is built once by Parse and is immutable afterwards: the search
// index, category views and rendered verses are all derived from it. Facet
// references on entries are weak, id-only lookups into the document's facet
// tables and may dangle; consumers must never assume referential integrity.
package hymnal

import (
	"encoding/json"
	"sort"
	"strings"
)

// FacetType names a categorization dimension.
type FacetType string

const (
	FacetTopic       FacetType = "topic"
	FacetTune        FacetType = "tune"
	FacetDay         FacetType = "day"
	FacetOrigin      FacetType = "origin"
	FacetLanguage    FacetType = "language"
	FacetAuthor      FacetType = "author"
	FacetTranslator  FacetType = "translator"
	FacetContributor FacetType = "contributor"
)

// FacetTypes lists every facet type the model knows how to resolve.
var FacetTypes = []FacetType{
	FacetTopic, FacetTune, FacetDay, FacetOrigin,
	FacetLanguage, FacetAuthor, FacetTranslator, FacetContributor,
}

// ParseFacetType resolves a facet type name, case-insensitively.
func ParseFacetType(s string) (FacetType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, ft := range FacetTypes {
		if string(ft) == s {
			return ft, true
		}
	}
	return "", false
}

// Facet is one row of a facet table. An empty Name means the source carried
// no name for this id.
type Facet struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// FacetTable maps stable ids to display names while remembering the order in
// which ids were first seen. Setting an id twice keeps its original position
// and overwrites the name.
type FacetTable struct {
	order []string
	names map[string]string
}

// Set inserts or overwrites id.
func (t *FacetTable) Set(id, name string) {
	if t.names == nil {
		t.names = make(map[string]string)
	}
	if _, ok := t.names[id]; !ok {
		t.order = append(t.order, id)
	}
	t.names[id] = name
}

// Name returns the name stored for id and whether id exists in the table.
func (t *FacetTable) Name(id string) (string, bool) {
	name, ok := t.names[id]
	return name, ok
}

// Has reports whether id is defined.
func (t *FacetTable) Has(id string) bool {
	_, ok := t.names[id]
	return ok
}

// Len returns the number of distinct ids.
func (t *FacetTable) Len() int { return len(t.order) }

// Facets returns the rows in natural (first-seen) order.
func (t *FacetTable) Facets() []Facet {
	out := make([]Facet, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, Facet{ID: id, Name: t.names[id]})
	}
	return out
}

// MarshalJSON encodes the table as an ordered list of rows.
func (t FacetTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Facets())
}

// DisplayName renders a facet name for presentation, falling back to "[id]"
// when the name is absent.
func DisplayName(id, name string) string {
	if name == "" {
		return "[" + id + "]"
	}
	return name
}

// IndexDescriptor describes a browsable facet index declared by the document.
type IndexDescriptor struct {
	Type           FacetType `json:"type"`
	Name           string    `json:"name"`
	HasDefaultSort bool      `json:"has_default_sort"`
}

// ContributorType distinguishes authors from translators.
type ContributorType string

const (
	Author     ContributorType = "author"
	Translator ContributorType = "translator"
)

// ContributorRef links an entry to a contributor. ID is empty when the source
// names no contributor id (free-text credit only).
type ContributorRef struct {
	Type ContributorType `json:"type"`
	ID   string          `json:"id,omitempty"`
	Year string          `json:"year,omitempty"`
	Note string          `json:"note,omitempty"`
}

// LineNode is either a Line or a RepeatLines. The set is closed: only types in
// this package implement it, so a type switch over the two is exhaustive.
type LineNode interface {
	lineNode()
}

// Line is a single line of text, kept verbatim.
type Line struct {
	Text string
}

func (Line) lineNode() {}

// MarshalJSON tags the node kind.
func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
	}{"line", l.Text})
}

// RepeatLines is a group of lines sung Times times in a row. Before is attached
// to the first rendered repetition and After to the last one.
type RepeatLines struct {
	Times  int
	Lines  []Line
	Before string
	After  string
}

func (RepeatLines) lineNode() {}

// MarshalJSON tags the node kind.
func (r RepeatLines) MarshalJSON() ([]byte, error) {
	texts := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		texts[i] = l.Text
	}
	return json.Marshal(struct {
		Kind   string   `json:"kind"`
		Times  int      `json:"times"`
		Lines  []string `json:"lines"`
		Before string   `json:"before,omitempty"`
		After  string   `json:"after,omitempty"`
	}{"repeat", r.Times, texts, r.Before, r.After})
}

// Verse is an ordered block of line nodes. Refrains and choruses share the
// same shape.
type Verse struct {
	Deleted bool       `json:"deleted,omitempty"`
	Lines   []LineNode `json:"lines"`
}

// Entry is one hymn or song.
type Entry struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Language     string           `json:"language"`
	Deleted      bool             `json:"deleted,omitempty"`
	Restricted   bool             `json:"restricted,omitempty"`
	Topics       []string         `json:"topics,omitempty"`
	Tunes        []string         `json:"tunes,omitempty"`
	Days         []string         `json:"days,omitempty"`
	Origin       string           `json:"origin,omitempty"`
	Contributors []ContributorRef `json:"contributors,omitempty"`
	Verses       []Verse          `json:"verses"`
	Refrain      *Verse           `json:"refrain,omitempty"`
	Chorus       *Verse           `json:"chorus,omitempty"`
}

// HasRepeat reports whether any verse-like block of e contains a RepeatLines.
func (e *Entry) HasRepeat() bool {
	check := func(v *Verse) bool {
		if v == nil {
			return false
		}
		for _, n := range v.Lines {
			if _, ok := n.(RepeatLines); ok {
				return true
			}
		}
		return false
	}
	for i := range e.Verses {
		if check(&e.Verses[i]) {
			return true
		}
	}
	return check(e.Refrain) || check(e.Chorus)
}

// FacetRefs returns the facet ids e references for ft, de-duplicated and in
// source order. Unknown facet types yield nil.
func (e *Entry) FacetRefs(ft FacetType) []string {
	var refs []string
	switch ft {
	case FacetTopic:
		refs = e.Topics
	case FacetTune:
		refs = e.Tunes
	case FacetDay:
		refs = e.Days
	case FacetOrigin:
		if e.Origin != "" {
			refs = []string{e.Origin}
		}
	case FacetLanguage:
		if e.Language != "" {
			refs = []string{e.Language}
		}
	case FacetAuthor, FacetTranslator, FacetContributor:
		for _, c := range e.Contributors {
			if c.ID == "" {
				continue
			}
			if ft == FacetContributor || string(c.Type) == string(ft) {
				refs = append(refs, c.ID)
			}
		}
	}
	return dedupe(refs)
}

func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Document is the root of a parsed hymnal.
type Document struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Year      string `json:"year"`
	Language  string `json:"language"`

	Languages    FacetTable `json:"languages"`
	Contributors FacetTable `json:"contributors"`
	Topics       FacetTable `json:"topics"`
	Origins      FacetTable `json:"origins"`
	Days         FacetTable `json:"days"`
	Tunes        FacetTable `json:"tunes"`

	Indexes []IndexDescriptor `json:"indexes"`

	entries map[string]*Entry
}

// Entry looks up an entry by id.
func (d *Document) Entry(id string) (*Entry, bool) {
	e, ok := d.entries[id]
	return e, ok
}

// Len returns the number of entries.
func (d *Document) Len() int { return len(d.entries) }

// EntryIDs returns every entry id in natural order.
func (d *Document) EntryIDs() []string {
	ids := make([]string, 0, len(d.entries))
	for id := range d.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return CompareIDs(ids[i], ids[j]) < 0 })
	return ids
}

// Entries returns every entry in natural id order.
func (d *Document) Entries() []*Entry {
	ids := d.EntryIDs()
	out := make([]*Entry, len(ids))
	for i, id := range ids {
		out[i] = d.entries[id]
	}
	return out
}

// FacetTable returns the table backing ft. The contributor facet types share
// one table.
func (d *Document) FacetTable(ft FacetType) (*FacetTable, bool) {
	switch ft {
	case FacetTopic:
		return &d.Topics, true
	case FacetTune:
		return &d.Tunes, true
	case FacetDay:
		return &d.Days, true
	case FacetOrigin:
		return &d.Origins, true
	case FacetLanguage:
		return &d.Languages, true
	case FacetAuthor, FacetTranslator, FacetContributor:
		return &d.Contributors, true
	}
	return nil, false
}

// Descriptor returns the index descriptor declared for ft, if any.
func (d *Document) Descriptor(ft FacetType) (IndexDescriptor, bool) {
	for _, ix := range d.Indexes {
		if ix.Type == ft {
			return ix, true
		}
	}
	return IndexDescriptor{}, false
}

// HasDefaultSort reports whether ft's table order is meaningful. Facets the
// document declares no descriptor for keep their table order.
func (d *Document) HasDefaultSort(ft FacetType) bool {
	if ix, ok := d.Descriptor(ft); ok {
		return ix.HasDefaultSort
	}
	return true
}

// FacetName returns the display name for id within ft, or "[id]".
func (d *Document) FacetName(ft FacetType, id string) string {
	if t, ok := d.FacetTable(ft); ok {
		if name, ok := t.Name(id); ok {
			return DisplayName(id, name)
		}
	}
	return DisplayName(id, "")
}
