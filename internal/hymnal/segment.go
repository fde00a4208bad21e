package hymnal

import (
	"errors"
	"strconv"
	"strings"
)

// SegmentKind identifies which verse-like block of an entry a line lives in.
type SegmentKind uint8

const (
	SegmentVerse SegmentKind = iota
	SegmentRefrain
	SegmentChorus
)

// Segment addresses one verse-like block: a verse by 0-based position, the
// refrain, or the chorus.
type Segment struct {
	Kind  SegmentKind
	Verse int
}

// VerseSegment addresses the i-th verse.
func VerseSegment(i int) Segment { return Segment{Kind: SegmentVerse, Verse: i} }

var (
	RefrainSegment = Segment{Kind: SegmentRefrain}
	ChorusSegment  = Segment{Kind: SegmentChorus}
)

// ErrBadSegment is returned by ParseSegment for tokens that name no segment.
var ErrBadSegment = errors.New("hymnal: bad segment token")

// String encodes the segment as "r", "c" or the verse position.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentRefrain:
		return "r"
	case SegmentChorus:
		return "c"
	}
	return strconv.Itoa(s.Verse)
}

// ParseSegment is the inverse of Segment.String.
func ParseSegment(tok string) (Segment, error) {
	switch tok {
	case "r":
		return RefrainSegment, nil
	case "c":
		return ChorusSegment, nil
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 || strings.HasPrefix(tok, "+") {
		return Segment{}, ErrBadSegment
	}
	return VerseSegment(n), nil
}

// Block returns the verse-like block s addresses in e, or nil.
func (e *Entry) Block(s Segment) *Verse {
	switch s.Kind {
	case SegmentRefrain:
		return e.Refrain
	case SegmentChorus:
		return e.Chorus
	case SegmentVerse:
		if s.Verse >= 0 && s.Verse < len(e.Verses) {
			return &e.Verses[s.Verse]
		}
	}
	return nil
}

// Segments lists e's verse-like blocks in document order: verses, then the
// refrain, then the chorus.
func (e *Entry) Segments() []Segment {
	out := make([]Segment, 0, len(e.Verses)+2)
	for i := range e.Verses {
		out = append(out, VerseSegment(i))
	}
	if e.Refrain != nil {
		out = append(out, RefrainSegment)
	}
	if e.Chorus != nil {
		out = append(out, ChorusSegment)
	}
	return out
}

// LineAt returns the verbatim text of the idx-th flattened line of segment s.
func (e *Entry) LineAt(s Segment, idx int) (string, bool) {
	v := e.Block(s)
	if v == nil {
		return "", false
	}
	lines := FlattenLines(v)
	if idx < 0 || idx >= len(lines) {
		return "", false
	}
	return lines[idx], true
}
