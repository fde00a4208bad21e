package hymnal

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

const (
	truthy       = "yes"
	defaultTimes = 2
)

// ParseError reports input that cannot become a Document: malformed markup or
// a missing required root attribute.
type ParseError struct {
	Cause string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "hymnal: " + e.Cause + ": " + e.Err.Error()
	}
	return "hymnal: " + e.Cause
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is (or wraps) a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// node is a generic XML element. Children keep document order, which matters
// for interleaved line/repeat nodes. Content holds all descendant character
// data in document order, so inline markup inside a line keeps its text.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr
	Content string
	Nodes   []node
}

func (n *node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.XMLName = start.Name
	n.Attrs = start.Attr
	var all strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var c node
			if err := c.UnmarshalXML(d, t); err != nil {
				return err
			}
			all.WriteString(c.Content)
			n.Nodes = append(n.Nodes, c)
		case xml.CharData:
			all.Write(t)
		case xml.EndElement:
			n.Content = all.String()
			return nil
		}
	}
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) attrOr(name, def string) string {
	if v, ok := n.attr(name); ok {
		return v
	}
	return def
}

func (n *node) flag(name string) bool {
	v, _ := n.attr(name)
	return v == truthy
}

func (n *node) child(local string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == local {
			return &n.Nodes[i]
		}
	}
	return nil
}

func (n *node) children(local string) []*node {
	var out []*node
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == local {
			out = append(out, &n.Nodes[i])
		}
	}
	return out
}

// Parse converts raw hymnal XML into a Document.
//
// Only unparseable markup, a root that is not <hymnal>, a missing root id or
// title, and entries without a unique id are fatal; every other missing
// optional value falls back to its documented default.
func Parse(raw []byte) (*Document, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ParseError{Cause: "empty document"}
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.CharsetReader = charsetReader
	var root node
	if err := dec.Decode(&root); err != nil {
		return nil, &ParseError{Cause: "malformed markup", Err: err}
	}
	if err := expectEOF(dec); err != nil {
		return nil, &ParseError{Cause: "malformed markup", Err: err}
	}
	if root.XMLName.Local != "hymnal" {
		return nil, &ParseError{Cause: fmt.Sprintf("unexpected root element <%s>", root.XMLName.Local)}
	}

	doc := &Document{entries: make(map[string]*Entry)}
	var ok bool
	if doc.ID, ok = requiredAttr(&root, "id"); !ok {
		return nil, &ParseError{Cause: "missing root attribute id"}
	}
	if doc.Title, ok = requiredAttr(&root, "title"); !ok {
		return nil, &ParseError{Cause: "missing root attribute title"}
	}
	doc.Year = root.attrOr("year", "")
	doc.Language = root.attrOr("language", "")
	doc.Subtitle = root.attrOr("subtitle", "")
	doc.Publisher = root.attrOr("publisher", "")

	tables := []struct {
		collection, item string
		table            *FacetTable
	}{
		{"languages", "language", &doc.Languages},
		{"contributors", "contributor", &doc.Contributors},
		{"topics", "topic", &doc.Topics},
		{"origins", "origin", &doc.Origins},
		{"days", "day", &doc.Days},
		{"tunes", "tune", &doc.Tunes},
	}
	for _, tb := range tables {
		for _, coll := range root.children(tb.collection) {
			for _, item := range coll.children(tb.item) {
				id, ok := item.attr("id")
				if !ok {
					continue
				}
				tb.table.Set(id, item.attrOr("name", ""))
			}
		}
	}

	for _, coll := range root.children("indexes") {
		for _, ix := range coll.children("index") {
			doc.Indexes = append(doc.Indexes, IndexDescriptor{
				Type:           FacetType(ix.attrOr("type", "")),
				Name:           ix.attrOr("name", ""),
				HasDefaultSort: ix.flag("has-default-sort"),
			})
		}
	}

	for _, coll := range root.children("hymns") {
		for _, hn := range coll.children("hymn") {
			e, err := parseEntry(hn, doc.Language)
			if err != nil {
				return nil, err
			}
			if _, dup := doc.entries[e.ID]; dup {
				return nil, &ParseError{Cause: fmt.Sprintf("duplicate hymn id %q", e.ID)}
			}
			doc.entries[e.ID] = e
		}
	}
	return doc, nil
}

// charsetReader decodes documents declaring a legacy encoding such as
// ISO-8859-1 or windows-1252.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(input), nil
}

// expectEOF allows only whitespace, comments, processing instructions and
// directives after the root element.
func expectEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("text after root element")
			}
		case xml.StartElement:
			return fmt.Errorf("element <%s> after root element", t.Name.Local)
		case xml.EndElement:
			return fmt.Errorf("unexpected </%s>", t.Name.Local)
		}
	}
}

func requiredAttr(n *node, name string) (string, bool) {
	v, ok := n.attr(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func parseEntry(n *node, defaultLang string) (*Entry, error) {
	id, ok := requiredAttr(n, "id")
	if !ok {
		return nil, &ParseError{Cause: "hymn without id"}
	}
	e := &Entry{
		ID:         id,
		Language:   n.attrOr("language", defaultLang),
		Deleted:    n.flag("deleted"),
		Restricted: n.flag("restricted"),
		Origin:     n.attrOr("origin", ""),
	}
	if t := n.child("title"); t != nil {
		e.Title = strings.TrimSpace(t.Content)
	}

	for i := range n.Nodes {
		c := &n.Nodes[i]
		switch c.XMLName.Local {
		case "topic":
			if ref, ok := c.attr("ref"); ok {
				e.Topics = append(e.Topics, ref)
			}
		case "tune":
			if ref, ok := c.attr("ref"); ok {
				e.Tunes = append(e.Tunes, ref)
			}
		case "day":
			if ref, ok := c.attr("ref"); ok {
				e.Days = append(e.Days, ref)
			}
		case "author", "translator":
			e.Contributors = append(e.Contributors, ContributorRef{
				Type: ContributorType(c.XMLName.Local),
				ID:   c.attrOr("ref", ""),
				Year: c.attrOr("year", ""),
				Note: c.attrOr("note", ""),
			})
		case "verse":
			e.Verses = append(e.Verses, parseVerse(c))
		case "refrain":
			v := parseVerse(c)
			e.Refrain = &v
		case "chorus":
			v := parseVerse(c)
			e.Chorus = &v
		}
	}
	return e, nil
}

func parseVerse(n *node) Verse {
	return Verse{Deleted: n.flag("deleted"), Lines: parseLines(n)}
}

// parseLines turns the direct children of a verse-like node into line nodes.
func parseLines(n *node) []LineNode {
	out := make([]LineNode, 0, len(n.Nodes))
	for i := range n.Nodes {
		c := &n.Nodes[i]
		switch c.XMLName.Local {
		case "line":
			out = append(out, Line{Text: c.Content})
		case "repeat":
			r := RepeatLines{
				Times:  parseTimes(c),
				Before: c.attrOr("before", ""),
				After:  c.attrOr("after", ""),
			}
			for _, l := range c.children("line") {
				r.Lines = append(r.Lines, Line{Text: l.Content})
			}
			out = append(out, r)
		}
	}
	return out
}

func parseTimes(n *node) int {
	v, ok := n.attr("times")
	if !ok {
		return defaultTimes
	}
	t, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || t < 1 {
		return defaultTimes
	}
	return t
}
