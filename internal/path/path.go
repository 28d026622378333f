// Package path parses dotted field paths and resolves them against JSON
// values.
//
// The textual form is a sequence of segments separated by '.', where a
// segment made of digits also addresses an array index:
//
//	features.0.properties.name
//	features[0].properties.name
//	metrics['cpu.load'].value
//
// A quoted bracket segment is always an object key, which is how keys that
// contain '.' or brackets are addressed. Text starting with '$' is a JSONPath
// expression and is evaluated by ojg.
//
// Parsing never fails. Malformed text produces a Path that resolves to
// nothing.
package path

import (
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Segment is one step of a path.
type Segment struct {
	Key     string // object key; for index segments, the digits as written
	Index   int
	IsIndex bool // segment may address an array element
	Quoted  bool // segment was written as ['key'] and is never an index
}

// Path is a parsed path. The zero Path is the empty path, which resolves to
// the value it is applied to.
type Path struct {
	raw      string
	segments []Segment
	invalid  bool
	expr     jp.Expr
}

// Parse parses the textual form of a path.
func Parse(text string) Path {
	p := Path{raw: text}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return p
	}
	if strings.HasPrefix(trimmed, "$") {
		expr, err := jp.ParseString(trimmed)
		if err != nil {
			p.invalid = true
			return p
		}
		p.expr = expr
		return p
	}
	segments, ok := split(trimmed)
	if !ok {
		p.invalid = true
		return p
	}
	p.segments = segments
	return p
}

// FromSegments builds a path from already split segments.
func FromSegments(segments []Segment) Path {
	segs := make([]Segment, len(segments))
	copy(segs, segments)
	return Path{raw: Format(segs), segments: segs}
}

// String returns the text the path was parsed from.
func (p Path) String() string { return p.raw }

// Valid is false when the text could not be parsed.
func (p Path) Valid() bool { return !p.invalid }

// IsEmpty reports whether p has no segments and is not a JSONPath expression.
func (p Path) IsEmpty() bool {
	return !p.invalid && p.expr == nil && len(p.segments) == 0
}

// IsJSONPath reports whether p was written as a JSONPath expression.
func (p Path) IsJSONPath() bool { return p.expr != nil }

// Segments returns a copy of the segments of a dotted path.
func (p Path) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// Terminal returns the last segment of a valid dotted path.
func (p Path) Terminal() (Segment, bool) {
	if p.invalid || p.expr != nil || len(p.segments) == 0 {
		return Segment{}, false
	}
	return p.segments[len(p.segments)-1], true
}

// split breaks trimmed path text into segments.
func split(text string) ([]Segment, bool) {
	var segments []Segment
	i := 0
	// afterDot is true when the next thing must be a plain name.
	afterDot := false
	for i < len(text) {
		c := text[i]
		switch {
		case c == '.':
			if afterDot || len(segments) == 0 {
				return nil, false
			}
			afterDot = true
			i++
		case c == '[':
			if afterDot {
				return nil, false
			}
			seg, next, ok := readBracket(text, i)
			if !ok {
				return nil, false
			}
			segments = append(segments, seg)
			i = next
		case c == ']':
			return nil, false
		default:
			if !afterDot && len(segments) > 0 {
				// A name must follow a '.'; "a[0]b" is malformed.
				return nil, false
			}
			end := i
			for end < len(text) && text[end] != '.' && text[end] != '[' && text[end] != ']' {
				end++
			}
			segments = append(segments, nameSegment(text[i:end]))
			afterDot = false
			i = end
		}
	}
	if afterDot {
		return nil, false
	}
	return segments, true
}

func nameSegment(name string) Segment {
	seg := Segment{Key: name}
	if isDigits(name) {
		if n, err := strconv.Atoi(name); err == nil {
			seg.Index = n
			seg.IsIndex = true
		}
	}
	return seg
}

// readBracket reads a [n], ['key'] or ["key"] segment starting at text[start].
func readBracket(text string, start int) (Segment, int, bool) {
	i := start + 1
	if i >= len(text) {
		return Segment{}, 0, false
	}
	if quote := text[i]; quote == '\'' || quote == '"' {
		var key strings.Builder
		i++
		for i < len(text) && text[i] != quote {
			if text[i] == '\\' && i+1 < len(text) {
				i++
			}
			key.WriteByte(text[i])
			i++
		}
		// Need the closing quote followed by ']'.
		if i+1 >= len(text) || text[i+1] != ']' {
			return Segment{}, 0, false
		}
		return Segment{Key: key.String(), Quoted: true}, i + 2, true
	}
	end := strings.IndexByte(text[i:], ']')
	if end < 0 {
		return Segment{}, 0, false
	}
	inner := strings.TrimSpace(text[i : i+end])
	if !isDigits(inner) {
		return Segment{}, 0, false
	}
	n, err := strconv.Atoi(inner)
	if err != nil {
		return Segment{}, 0, false
	}
	return Segment{Key: inner, Index: n, IsIndex: true}, i + end + 1, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Format renders segments in the dotted form, quoting keys that would not
// survive a round trip through Parse.
func Format(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		if needsQuote(seg) {
			b.WriteString("['")
			b.WriteString(strings.ReplaceAll(strings.ReplaceAll(seg.Key, `\`, `\\`), "'", `\'`))
			b.WriteString("']")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}

func needsQuote(seg Segment) bool {
	if seg.IsIndex {
		return false
	}
	if seg.Key == "" || strings.ContainsAny(seg.Key, ".[]") || strings.TrimSpace(seg.Key) != seg.Key {
		return true
	}
	// A quoted digit key stays a key. Written bare it would also index arrays.
	if seg.Quoted && isDigits(seg.Key) {
		return true
	}
	return strings.HasPrefix(seg.Key, "$")
}

// Join appends a relative path to a base path in textual form.
func Join(base, rel string) string {
	switch {
	case base == "":
		return rel
	case rel == "":
		return base
	case strings.HasPrefix(rel, "["):
		return base + rel
	default:
		return base + "." + rel
	}
}
