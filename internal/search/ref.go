package search

import (
	"strconv"
	"strings"

	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
)

// LineRef identifies one indexed line: the entry, its verse-like segment and
// the 0-based position in that segment's flattened lines.
type LineRef struct {
	EntryID string
	Segment hymnal.Segment
	Line    int
}

// String encodes r as "{entryId}/{segment}/{lineIndex}".
func (r LineRef) String() string {
	return r.EntryID + "/" + r.Segment.String() + "/" + strconv.Itoa(r.Line)
}

// ParseRef decodes a composite reference. The last two slash-separated parts
// are the segment and line index, so entry ids may themselves contain '/'.
func ParseRef(s string) (LineRef, error) {
	j := strings.LastIndexByte(s, '/')
	if j <= 0 {
		return LineRef{}, ErrBadRef
	}
	i := strings.LastIndexByte(s[:j], '/')
	if i <= 0 {
		return LineRef{}, ErrBadRef
	}
	seg, err := hymnal.ParseSegment(s[i+1 : j])
	if err != nil {
		return LineRef{}, ErrBadRef
	}
	line, err := strconv.Atoi(s[j+1:])
	if err != nil || line < 0 {
		return LineRef{}, ErrBadRef
	}
	return LineRef{EntryID: s[:i], Segment: seg, Line: line}, nil
}
