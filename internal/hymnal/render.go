package hymnal

import "strings"

// FlattenLines returns the distinct lines of v in order. A RepeatLines
// contributes its child lines once, regardless of Times; this is the line
// numbering the search index addresses.
func FlattenLines(v *Verse) []string {
	if v == nil {
		return nil
	}
	out := make([]string, 0, len(v.Lines))
	for _, n := range v.Lines {
		switch n := n.(type) {
		case Line:
			out = append(out, n.Text)
		case RepeatLines:
			for _, l := range n.Lines {
				out = append(out, l.Text)
			}
		}
	}
	return out
}

// RenderLines expands v for display: each RepeatLines is emitted Times times,
// with Before prefixed to its first rendered line and After appended to its
// last one.
func RenderLines(v *Verse) []string {
	if v == nil {
		return nil
	}
	var out []string
	for _, n := range v.Lines {
		switch n := n.(type) {
		case Line:
			out = append(out, n.Text)
		case RepeatLines:
			if len(n.Lines) == 0 {
				continue
			}
			start := len(out)
			times := n.Times
			if times < 1 {
				times = 1
			}
			for i := 0; i < times; i++ {
				for _, l := range n.Lines {
					out = append(out, l.Text)
				}
			}
			if n.Before != "" {
				out[start] = joinSpaced(n.Before, out[start])
			}
			if n.After != "" {
				last := len(out) - 1
				out[last] = joinSpaced(out[last], n.After)
			}
		}
	}
	return out
}

func joinSpaced(a, b string) string {
	if a == "" || strings.HasSuffix(a, " ") || strings.HasPrefix(b, " ") {
		return a + b
	}
	return a + " " + b
}

// CompareIDs orders entry ids naturally: ids made only of digits compare
// numerically, everything else lexically. Equal numeric values fall back to a
// lexical comparison so "01" and "1" still have a stable order.
func CompareIDs(a, b string) int {
	if isDigits(a) && isDigits(b) {
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(ta) != len(tb) {
			if len(ta) < len(tb) {
				return -1
			}
			return 1
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
