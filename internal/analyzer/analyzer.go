package analyzer

import (
	"regexp"
	"time"

	"github.com/mcncl/vizpath/internal/config"
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/path"
)

// FieldKind is the inferred type of a field.
type FieldKind string

const (
	KindNull    FieldKind = "null"
	KindBool    FieldKind = "bool"
	KindInteger FieldKind = "integer"
	KindNumber  FieldKind = "number"
	KindString  FieldKind = "string"
	KindTime    FieldKind = "time"
	KindObject  FieldKind = "object"
	KindArray   FieldKind = "array"
	KindMixed   FieldKind = "mixed"
)

// Regex patterns for time-like strings
var (
	// Time format patterns (ordered by specificity - most specific first)
	rfc3339NanoRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{9}(Z|[+-]\d{2}:\d{2})$`)             // 2006-01-02T15:04:05.999999999Z
	rfc3339Regex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)            // 2006-01-02T15:04:05Z
	iso8601Regex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?([+-]\d{2}:\d{2}|Z|[+-]\d{4})?$`) // ISO8601 variants
	dateOnlyRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                                         // 2006-01-02
	dateTimeRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`)                               // 2006-01-02 15:04:05
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// IsTimeLike reports whether s looks like a timestamp or a date.
func IsTimeLike(s string) bool {
	return rfc3339NanoRegex.MatchString(s) ||
		rfc3339Regex.MatchString(s) ||
		iso8601Regex.MatchString(s) ||
		dateOnlyRegex.MatchString(s) ||
		dateTimeRegex.MatchString(s)
}

// ParseTime parses a time-like string.
func ParseTime(s string) (time.Time, bool) {
	if !IsTimeLike(s) {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RootCandidate is an array a user can anchor extraction at.
type RootCandidate struct {
	Label       string    `json:"label"`
	Path        string    `json:"path"`
	Length      int       `json:"length"`
	ElementKind FieldKind `json:"element_kind,omitempty"`
}

// Field is a path a user can pick as a parameter. Paths cross arrays
// without an index, the form root-relative parameters take.
type Field struct {
	Path        string    `json:"path"`
	Kind        FieldKind `json:"kind"`
	Nullable    bool      `json:"nullable,omitempty"`
	Occurrences int       `json:"occurrences"`
	Sample      string    `json:"sample,omitempty"`
}

// Summary describes the shape of a document for the root and parameter
// chooser.
type Summary struct {
	RootIsArray bool            `json:"root_is_array"`
	Roots       []RootCandidate `json:"roots"`
	Fields      []Field         `json:"fields"`
}

// Analyzer inspects documents to build chooser summaries.
type Analyzer struct {
	// config holds configuration settings for analysis
	config config.AnalysisConfig
	// fields indexes the summary's fields by path during a single Analyze
	fields map[string]int
	summary Summary
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(config.NewConfig())
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	return &Analyzer{config: cfg.Analysis}
}

// Analyze walks the document and returns its root candidates and fields in
// document order.
func (a *Analyzer) Analyze(doc models.Document) Summary {
	a.fields = make(map[string]int)
	a.summary = Summary{
		RootIsArray: doc.RootIsArray,
		Roots:       make([]RootCandidate, 0),
		Fields:      make([]Field, 0),
	}

	if doc.RootIsArray {
		a.addRoot(models.RootLabel, doc.Root)
	}
	a.analyzeNode(doc.Root, nil, true, 0)

	return a.summary
}

// analyzeNode records node under at. direct is true while no array has been
// crossed, which is when an array can still be offered as a root.
func (a *Analyzer) analyzeNode(node models.Value, at []path.Segment, direct bool, depth int) {
	if len(at) > 0 {
		a.recordField(path.Format(at), node)
	}
	if a.config.MaxDepth > 0 && depth >= a.config.MaxDepth {
		return
	}

	switch node.Kind() {
	case models.Object:
		for _, m := range node.Object().Members() {
			child := append(at[:len(at):len(at)], path.Segment{Key: m.Key})
			child[len(child)-1].Quoted = needsQuoting(m.Key)
			if direct && m.Value.Kind() == models.Array {
				a.addRoot(path.Format(child), m.Value)
			}
			a.analyzeNode(m.Value, child, direct, depth+1)
		}
	case models.Array:
		// Elements share the array's path, so fields from every sampled
		// element merge into one listing.
		elems := node.Array()
		if limit := a.config.ArraySample; limit > 0 && len(elems) > limit {
			elems = elems[:limit]
		}
		for _, elem := range elems {
			a.analyzeElement(elem, at, depth+1)
		}
	}
}

// analyzeElement descends into an array element without recording the
// element itself as a separate field.
func (a *Analyzer) analyzeElement(elem models.Value, at []path.Segment, depth int) {
	switch elem.Kind() {
	case models.Object, models.Array:
		if a.config.MaxDepth > 0 && depth >= a.config.MaxDepth {
			return
		}
		if elem.Kind() == models.Array {
			for _, inner := range elem.Array() {
				a.analyzeElement(inner, at, depth+1)
			}
			return
		}
		for _, m := range elem.Object().Members() {
			child := append(at[:len(at):len(at)], path.Segment{Key: m.Key, Quoted: needsQuoting(m.Key)})
			a.analyzeNode(m.Value, child, false, depth+1)
		}
	}
}

func (a *Analyzer) addRoot(p string, arr models.Value) {
	var elementKind FieldKind
	if elems := arr.Array(); len(elems) > 0 {
		elementKind = kindOf(elems[0])
		for _, elem := range elems[1:] {
			elementKind = mergeKinds(elementKind, kindOf(elem))
		}
	}
	a.summary.Roots = append(a.summary.Roots, RootCandidate{
		Label:       p,
		Path:        p,
		Length:      arr.Len(),
		ElementKind: elementKind,
	})
}

func (a *Analyzer) recordField(p string, node models.Value) {
	kind := kindOf(node)
	i, seen := a.fields[p]
	if !seen {
		a.fields[p] = len(a.summary.Fields)
		a.summary.Fields = append(a.summary.Fields, Field{
			Path:        p,
			Kind:        kind,
			Nullable:    kind == KindNull,
			Occurrences: 1,
			Sample:      sampleOf(node),
		})
		return
	}

	field := &a.summary.Fields[i]
	field.Occurrences++
	if kind == KindNull {
		field.Nullable = true
	}
	field.Kind = mergeKinds(field.Kind, kind)
	if field.Sample == "" {
		field.Sample = sampleOf(node)
	}
}

func kindOf(v models.Value) FieldKind {
	switch v.Kind() {
	case models.Null:
		return KindNull
	case models.Bool:
		return KindBool
	case models.Number:
		n, _ := v.Num()
		if _, err := n.Int64(); err == nil {
			return KindInteger
		}
		return KindNumber
	case models.String:
		s, _ := v.Str()
		if IsTimeLike(s) {
			return KindTime
		}
		return KindString
	case models.Object:
		return KindObject
	case models.Array:
		return KindArray
	default:
		return KindNull
	}
}

// mergeKinds combines the kinds seen for one path. Null never widens a
// kind, integers widen to numbers and time widens to string.
func mergeKinds(a, b FieldKind) FieldKind {
	switch {
	case a == b:
		return a
	case a == KindNull:
		return b
	case b == KindNull:
		return a
	case (a == KindInteger && b == KindNumber) || (a == KindNumber && b == KindInteger):
		return KindNumber
	case (a == KindTime && b == KindString) || (a == KindString && b == KindTime):
		return KindString
	default:
		return KindMixed
	}
}

// sampleOf returns a short example value for scalars.
func sampleOf(v models.Value) string {
	if !v.IsScalar() {
		return ""
	}
	text := v.Text()
	if r := []rune(text); len(r) > 40 {
		return string(r[:40]) + "…"
	}
	return text
}

func needsQuoting(key string) bool {
	return path.Format([]path.Segment{{Key: key}}) != key
}
