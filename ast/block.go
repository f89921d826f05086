package ast

// Block is any top-level structural node. Closed sum type, see Inline.
type Block interface {
	Node
	blockNode()
}

type blockBase struct{ base }

func (blockBase) blockNode() {}

// Paragraph is a loose-list-eligible run of inlines.
type Paragraph struct {
	blockBase
	Inlines []Inline
}

// Plain is inline content with no block wrapper, used for tight list items.
type Plain struct {
	blockBase
	Inlines []Inline
}

// Heading is an ATX or setext heading, level 1-6.
type Heading struct {
	blockBase
	Level   int
	Attr    Attr
	Inlines []Inline
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	blockBase
	Attr Attr
	Text string
}

// RawBlock is a raw block in some output format, verbatim.
type RawBlock struct {
	blockBase
	Format string
	Text   string
}

// BlockQuote is `> ...` quoted content.
type BlockQuote struct {
	blockBase
	Blocks []Block
}

// BulletList is an unordered list. Tightness is decided by Postprocess.
type BulletList struct {
	blockBase
	Items [][]Block
	Tight bool
}

// NumberStyle is the rendering style of an ordered-list marker's number.
type NumberStyle int

const (
	DefaultStyle NumberStyle = iota
	Decimal
	LowerRoman
	UpperRoman
	LowerAlpha
	UpperAlpha
)

// DelimStyle is the punctuation style following an ordered-list number.
type DelimStyle int

const (
	DefaultDelim DelimStyle = iota
	Period
	OneParen
	TwoParens
)

// OrderedList is a numbered list.
type OrderedList struct {
	blockBase
	Start   int
	Style   NumberStyle
	Delim   DelimStyle
	Items   [][]Block
	Tight   bool
}

// DefinitionPair is one term/definitions pair of a DefinitionList.
type DefinitionPair struct {
	Term        []Inline
	Definitions [][]Block
}

// DefinitionList is a list of term/definition pairs.
type DefinitionList struct {
	blockBase
	Items []DefinitionPair
}

// LineBlock is a `|`-prefixed line block, preserving line breaks verbatim.
type LineBlock struct {
	blockBase
	Lines [][]Inline
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{ blockBase }

// Alignment is a pipe-table column alignment.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignRight
	AlignCenter
)

// ColSpec is one table column's alignment and optional relative width.
type ColSpec struct {
	Align Alignment
	Width float64 // 0 means unspecified
}

// TableCell is one table cell; in this dialect cells have no internal
// rowspan/colspan tracking beyond Pandoc's default of 1x1.
type TableCell struct {
	Blocks []Block
	Attr   Attr
}

// TableRow is one row of cells.
type TableRow struct {
	Cells []TableCell
}

// TableBody groups a run of body rows, matching Pandoc's TableBody shape
// (a possible head of "row header" cells is not modeled separately; this
// dialect's pipe tables have no such construct).
type TableBody struct {
	Rows []TableRow
}

// Table is a pipe table.
type Table struct {
	blockBase
	Caption []Inline
	Colspec []ColSpec
	Head    TableRow
	Bodies  []TableBody
	Foot    *TableRow
}

// Figure is an image/content block with an optional caption.
type Figure struct {
	blockBase
	Attr    Attr
	Caption []Inline
	Blocks  []Block
}

// Div is a generic `<div class=...>`-equivalent block container. FencedDiv
// is the Quarto `:::`-delimited variant; both share shape but FencedDiv
// additionally may carry a footnote-definition id.
type Div struct {
	blockBase
	Attr   Attr
	Blocks []Block
}

// FencedDiv is Quarto's `:::{...}` fenced div. NoteID is non-empty when the
// opening fence carried a `^id` marker, marking this div as a footnote
// definition body (spec.md §4.4).
type FencedDiv struct {
	blockBase
	Attr   Attr
	Blocks []Block
	NoteID string
}

// NoteDefinition is a `[^id]: ...` footnote definition collected during
// block parsing. It is rendered inline by writers that choose to splice
// notes at their reference site (spec.md §8.3 scenario 5).
type NoteDefinition struct {
	blockBase
	ID     string
	Blocks []Block
}

// HTMLCommentBlock is a block-level `<!-- ... -->` comment, including ones
// that span what would otherwise be block boundaries (spec.md §4.2).
type HTMLCommentBlock struct {
	blockBase
	Text string
}
