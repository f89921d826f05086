// Package inlinescan implements the inline grammar (spec.md §4.2's inline
// pass). It operates on the already-concatenated text of one block's
// content (paragraph, heading, table cell, ...) rather than on raw source
// bytes directly; astbuild threads offsets back through sourcemap.Map
// using the same Concat piece list the block scanner recorded for
// multi-segment blocks. As with blockscan (see its package doc and
// DESIGN.md's OQ-1 entry), scanner and grammar are fused into one
// recursive-descent Go driver standing in for a tree-sitter external
// scanner.
package inlinescan

// Range is a half-open offset span within the concatenated block text
// handed to Scan, NOT raw source bytes.
type Range struct {
	Start, End int
}

// NodeKind discriminates the concrete inline forest.
type NodeKind int

const (
	NodeText NodeKind = iota
	NodeSpace
	NodeSoftBreak
	NodeLineBreak
	NodeEmph
	NodeStrong
	NodeStrikeout
	NodeSuperscript
	NodeSubscript
	NodeSmallCaps
	NodeUnderline
	NodeQuoted
	NodeCode
	NodeMath
	NodeRawInline
	NodeLink
	NodeImage
	NodeAutolink
	NodeFootnoteRef
	NodeCitation
	NodeSpan
	NodeShortcode
	NodeHTMLComment
)

// Node is one element of the concrete inline parse forest.
type Node struct {
	Kind NodeKind

	Start, End int // offsets within the Scan input

	Text string // literal text for NodeText/NodeCode/NodeMath/NodeRawInline

	DelimChar byte // '*','_','~','^','~','_' depending on Kind
	DoubleQuote bool // NodeQuoted: " vs '

	MathDisplay bool // NodeMath: $$...$$ vs $...$

	URL, Title string // NodeLink/NodeImage/NodeAutolink

	RefLabel string // unresolved reference-style link/image label, resolved in postprocess

	ID string // NodeFootnoteRef id, NodeSpan/NodeCitation anchor use Attr instead

	Attr *AttrSpec // trailing {.class #id key=val} attribute, if present

	Citations []CitationItem // NodeCitation

	ShortcodeName string
	ShortcodeArgs []ShortcodeArg

	Children []*Node
}

// AttrSpec is the concrete (unparsed-further) contents of a trailing
// `{...}` attribute block, e.g. after a Span or a Link.
type AttrSpec struct {
	Raw string
}

// CitationMode mirrors ast.CitationMode without importing the ast package,
// keeping inlinescan dependency-free of astbuild; astbuild translates.
type CitationMode int

const (
	NormalCitation CitationMode = iota
	SuppressAuthor
	AuthorInText
)

// CitationItem is one raw `@key` entry of a citation group, prefix/suffix
// text left as unparsed inline spans for the caller to re-scan.
type CitationItem struct {
	Key          string
	Mode         CitationMode
	PrefixStart, PrefixEnd int
	SuffixStart, SuffixEnd int
}

// ShortcodeArg is one positional or named `{{< name arg >}}` argument.
type ShortcodeArg struct {
	Name  string // "" for positional
	Value string
}
