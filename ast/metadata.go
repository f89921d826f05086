package ast

import "github.com/quarto-dev/q2-sub015/sourcemap"

// MergeOp is the merge-operator tag on a ConfigValue node (spec.md §3.1).
// Within a single document only Concat occurs; Replace is retained for
// forward compatibility with multi-source YAML merges external tooling may
// perform before handing metadata to this module.
type MergeOp int

const (
	ConcatOp MergeOp = iota
	ReplaceOp
)

// ScalarKind discriminates the leaf values a ConfigValue may hold.
type ScalarKind int

const (
	ScalarNull ScalarKind = iota
	ScalarString
	ScalarNumber
	ScalarBool
)

// MapEntry is one key-value pair of a mapping ConfigValue. Both the key and
// the value carry independent SourceInfo, per spec.md §3.1.
type MapEntry struct {
	KeySrc   *sourcemap.SourceInfo
	Key      string
	Value    *ConfigValue
}

// ConfigValue is the recursive YAML-derived metadata value model.
// Exactly one of the Scalar/Mapping/Sequence representations is populated,
// selected by Kind.
type ConfigValue struct {
	SrcInfo *sourcemap.SourceInfo
	Merge   MergeOp

	Kind ConfigValueKind

	ScalarKind ScalarKind
	Str        string
	Num        float64
	Bool       bool

	Mapping  []MapEntry
	Sequence []*ConfigValue

	// Tag is set when the scalar/collection carried a YAML `!expr`-style
	// custom tag; astbuild records the tag name here and no pass resolves
	// it (spec.md §4.5).
	Tag string
}

// ConfigValueKind distinguishes scalar/mapping/sequence ConfigValues.
type ConfigValueKind int

const (
	ConfigScalar ConfigValueKind = iota
	ConfigMapping
	ConfigSequence
)

func (c *ConfigValue) Source() *sourcemap.SourceInfo { return c.SrcInfo }

// Get looks up a top-level mapping key. Returns nil, false if c is not a
// mapping or the key is absent.
func (c *ConfigValue) Get(key string) (*ConfigValue, bool) {
	if c == nil || c.Kind != ConfigMapping {
		return nil, false
	}
	for _, e := range c.Mapping {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Metadata is the document-level YAML front matter, lifted to a
// ConfigValue mapping (possibly nil if no front matter was present).
type Metadata struct {
	Root *ConfigValue
}

// Document pairs Metadata with an ordered Block sequence, per spec.md §3.1.
type Document struct {
	Metadata Metadata
	Blocks   []Block

	// Notes maps footnote id -> definition, built during block parsing and
	// consumed by Postprocess/writers (spec.md §4.5).
	Notes map[string]*NoteDefinition

	// LinkDefs maps reference-style link/image id -> target, collected
	// during block parsing for Postprocess's reference resolution pass.
	LinkDefs map[string]Target

	SourceMap *sourcemap.Map
}
