// Package diag implements the diagnostic record model (spec.md §3.4), the
// error taxonomy (spec.md §7), and the example-driven DiagnosticEngine
// (spec.md §4.7) that turns a scanner/grammar parse-state signature into an
// authored message by table lookup rather than ad-hoc string formatting
// scattered through the parser.
package diag

import "github.com/quarto-dev/q2-sub015/sourcemap"

// Severity is the diagnostic level.
type Severity int

const (
	Info Severity = iota
	Note
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Kind names the exhaustive diagnostic taxonomy from spec.md §7, by intent
// rather than by Go type.
type Kind string

const (
	StructuralParse    Kind = "structural-parse"
	AttributeSyntax    Kind = "attribute-syntax"
	UnresolvedRef      Kind = "unresolved-reference"
	YAMLErrorKind      Kind = "yaml-error"
	UnsupportedFeature Kind = "unsupported-feature"
	Internal           Kind = "internal"
)

// Detail is one up-to-five location-bearing elaboration of a diagnostic.
type Detail struct {
	Message string
	Source  *sourcemap.SourceInfo
}

// Hint is one up-to-five suggestion attached to a diagnostic.
type Hint struct {
	Message string
}

// Diagnostic is a single structured record, matching spec.md §3.4 and the
// console/JSON wire shapes in §6.5.
type Diagnostic struct {
	Code     string
	Kind     Kind
	Severity Severity
	Title    string
	Problem  string
	Details  []Detail
	Hints    []Hint
	Source   *sourcemap.SourceInfo
}

// maxItems bounds Details/Hints per spec.md §3.4 ("up to five").
const maxItems = 5

// AddDetail appends a detail, silently dropping beyond the five-item cap
// rather than erroring — a diagnostic that would need a sixth detail still
// reports the first five rather than failing to report at all.
func (d *Diagnostic) AddDetail(msg string, src *sourcemap.SourceInfo) {
	if len(d.Details) >= maxItems {
		return
	}
	d.Details = append(d.Details, Detail{Message: msg, Source: src})
}

// AddHint appends a hint, subject to the same five-item cap as AddDetail.
func (d *Diagnostic) AddHint(msg string) {
	if len(d.Hints) >= maxItems {
		return
	}
	d.Hints = append(d.Hints, Hint{Message: msg})
}

// Bag accumulates diagnostics across a pipeline run.
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// All returns every diagnostic added so far, in emission order.
func (b *Bag) All() []Diagnostic { return b.items }

// HasErrors reports whether any diagnostic in the bag is Error severity;
// callers use this to decide whether the pipeline may proceed to the next
// phase (spec.md §7 "Propagation").
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
