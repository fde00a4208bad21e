// Package selection computes expand/collapse state transitions for category
// lists. A Selection is either the All sentinel or an explicit id set; callers
// own storage, this package only derives the next value.
package selection

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

// Op is a selection operation.
type Op string

const (
	Select   Op = "select"
	Deselect Op = "deselect"
)

// ErrBadOp is returned by ParseOp for unknown operations.
var ErrBadOp = errors.New("selection: unknown op")

// ParseOp resolves an operation name, case-insensitively.
func ParseOp(s string) (Op, error) {
	switch op := Op(strings.ToLower(strings.TrimSpace(s))); op {
	case Select, Deselect:
		return op, nil
	}
	return "", ErrBadOp
}

// Selection is All or a set of ids. The zero value is the empty set.
type Selection struct {
	all bool
	ids map[string]struct{}
}

// All returns the sentinel selecting every id.
func All() Selection { return Selection{all: true} }

// Of returns the explicit selection of ids.
func Of(ids ...string) Selection {
	s := Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// IsAll reports whether s is the All sentinel.
func (s Selection) IsAll() bool { return s.all }

// Contains reports whether id is selected.
func (s Selection) Contains(id string) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[id]
	return ok
}

// Len returns the size of an explicit selection, or -1 for All.
func (s Selection) Len() int {
	if s.all {
		return -1
	}
	return len(s.ids)
}

// IDs returns the explicit ids in ascending order, or nil for All.
func (s Selection) IDs() []string {
	if s.all {
		return nil
	}
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether s and o select the same thing. All is only equal to
// All; it is not equal to an explicit set that happens to list every id.
func (s Selection) Equal(o Selection) bool {
	if s.all || o.all {
		return s.all == o.all
	}
	if len(s.ids) != len(o.ids) {
		return false
	}
	for id := range s.ids {
		if _, ok := o.ids[id]; !ok {
			return false
		}
	}
	return true
}

// Apply returns the selection that results from applying op with targets to
// current, over the universe allIDs.
//
//	Select   All    -> All
//	Select   {ids}  -> All if current is All, else current ∪ ids
//	Deselect All    -> {}
//	Deselect {ids}  -> allIDs \ ids if current is All, else current \ ids
//
// Explicit results never contain ids outside allIDs.
func Apply(current Selection, allIDs []string, op Op, targets Selection) Selection {
	universe := Of(allIDs...)
	switch op {
	case Select:
		if targets.all || current.all {
			return All()
		}
		out := current.within(universe)
		for id := range targets.ids {
			if _, ok := universe.ids[id]; ok {
				out.ids[id] = struct{}{}
			}
		}
		return out
	case Deselect:
		if targets.all {
			return Of()
		}
		out := universe
		if !current.all {
			out = current.within(universe)
		}
		for id := range targets.ids {
			delete(out.ids, id)
		}
		return out
	}
	return current
}

// Effective materializes s against allIDs, preserving the order of allIDs.
func Effective(s Selection, allIDs []string) []string {
	out := make([]string, 0, len(allIDs))
	for _, id := range allIDs {
		if s.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

// within returns a fresh copy of the explicit set s restricted to universe.
func (s Selection) within(universe Selection) Selection {
	out := Of()
	for id := range s.ids {
		if _, ok := universe.ids[id]; ok {
			out.ids[id] = struct{}{}
		}
	}
	return out
}

type wire struct {
	All bool     `json:"all"`
	IDs []string `json:"ids"`
}

// MarshalJSON encodes s as {"all":true,"ids":null} or {"all":false,"ids":[...]}.
func (s Selection) MarshalJSON() ([]byte, error) {
	w := wire{All: s.all}
	if !s.all {
		w.IDs = s.IDs()
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (s *Selection) UnmarshalJSON(b []byte) error {
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.All {
		*s = All()
		return nil
	}
	*s = Of(w.IDs...)
	return nil
}
