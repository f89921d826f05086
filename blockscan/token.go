package blockscan

// Range is a half-open byte span [Start, End) within the source.
type Range struct {
	Start, End int
}

// TokenKind enumerates the block-level token vocabulary from spec.md §4.2
// (non-exhaustive list there). Scan does not emit a token stream: it
// builds the Node forest below directly. TokError is the kind that
// cmd/q2c's diagnostic-table build reports alongside a state signature.
type TokenKind string

const (
	TokLineEnding        TokenKind = "LineEnding"
	TokSoftLineEnding     TokenKind = "SoftLineEnding"
	TokBlockOpen          TokenKind = "BlockOpen"
	TokBlockClose         TokenKind = "BlockClose"
	TokBlockContinuation  TokenKind = "BlockContinuation"
	TokBlockQuoteStart    TokenKind = "BlockQuoteStart"
	TokAtxHeadingMarker   TokenKind = "AtxHeadingMarker"
	TokThematicBreak      TokenKind = "ThematicBreak"
	TokListMarker         TokenKind = "ListMarker"
	TokFencedCodeStart    TokenKind = "FencedCodeBlockStart"
	TokFencedCodeEnd      TokenKind = "FencedCodeBlockEnd"
	TokFencedDivStart     TokenKind = "FencedDivStart"
	TokFencedDivEnd       TokenKind = "FencedDivEnd"
	TokFencedDivNoteID    TokenKind = "FencedDivNoteId"
	TokPipeTableStart     TokenKind = "PipeTableStart"
	TokPipeTableLineEnd   TokenKind = "PipeTableLineEnding"
	TokMinusMetadata      TokenKind = "MinusMetadata"
	TokHtmlComment        TokenKind = "HtmlComment"
	TokError              TokenKind = "ERROR"
)

// NodeKind is the concrete block forest's node discriminator. This forest
// stands in for what a tree-sitter CST would hand the AST builder (spec.md
// §4.4's traversal contract operates over this shape).
type NodeKind int

const (
	NodeDocument NodeKind = iota
	NodeFrontMatter
	NodeParagraph
	NodeHeading
	NodeThematicBreak
	NodeFencedCode
	NodeBlockQuote
	NodeListItem
	NodeList // grouping of consecutive same-kind ListItems, built post-hoc
	NodeFencedDiv
	NodePipeTable
	NodeHTMLComment
	NodeLinkRefDef
	NodeFootnoteDef
	NodeBlank
)

// Node is one element of the concrete block parse forest.
type Node struct {
	Kind NodeKind

	Start, End int // byte offsets into the source, half-open

	// InlineSegments are the byte spans (block markers already stripped,
	// e.g. "# " from a heading or "> " from a quote line) that must be
	// concatenated and handed to the inline grammar (spec.md §4.4). Most
	// blocks need only one segment; a multi-line paragraph inside a
	// blockquote or list item needs one segment per physical line, since
	// the stripped container markers make the line contents non-contiguous
	// in the original source. ASTBuilder reassembles them with
	// sourcemap.Map.Concat, which is exactly the "string reassembly" use
	// spec.md §3.2 describes for Concat nodes.
	InlineSegments []Range

	// Level is the heading depth for NodeHeading, or the ordered-list
	// delimiter style (NumberStyleForByte) for NodeList.
	Level int

	ListMarker byte // '-', '+', '*', '.', ')'
	ListStart  int  // not set by the scanner; astbuild reads the start number from the source
	Indent     int  // list item marker+padding width
	Loose      bool // not set; postprocess records tightness on the ast list instead

	FenceChar  byte
	FenceLen   int
	InfoString string // code block info line, or fenced-div attribute body

	NoteID string // fenced div ^id, or footnote/linkref definition id

	RawText string // verbatim text for code blocks, raw html comments, front matter

	Table *TableData

	Children []*Node
}

// TableCell is one raw (unparsed-inline) pipe table cell.
type TableCell struct {
	Start, End int // byte span of the cell's trimmed inline content
}

// TableAlign is the alignment parsed from a delimiter row cell.
type TableAlign int

const (
	AlignDefault TableAlign = iota
	AlignLeft
	AlignRight
	AlignCenter
)

// TableData holds a pipe table's raw rows prior to ASTBuilder normalization.
type TableData struct {
	Header []TableCell
	Align  []TableAlign
	Rows   [][]TableCell
}
