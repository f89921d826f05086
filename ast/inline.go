package ast

// Inline is any text-level node inside a block. It is a closed sum type;
// callers dispatch with a type switch over the concrete pointer types below.
type Inline interface {
	Node
	inlineNode()
}

type inlineBase struct{ base }

func (inlineBase) inlineNode() {}

// Str is a literal run of text. Adjacent Str nodes are never merged by the
// parser (spec.md §3.1 invariant); a writer may re-concatenate them.
type Str struct {
	inlineBase
	Text string
}

// Space is an inter-word space that did not originate from a line break.
type Space struct{ inlineBase }

// SoftBreak is a newline within a paragraph that did not force a line
// break (no trailing two-space or backslash).
type SoftBreak struct{ inlineBase }

// LineBreak is an explicit forced line break.
type LineBreak struct{ inlineBase }

// Emph is CommonMark single-flanking emphasis (`*x*`/`_x_`).
type Emph struct {
	inlineBase
	Inlines []Inline
}

// Strong is double-flanking emphasis (`**x**`/`__x__`).
type Strong struct {
	inlineBase
	Inlines []Inline
}

// Strikeout is `~~x~~`.
type Strikeout struct {
	inlineBase
	Inlines []Inline
}

// Superscript is `^x^`.
type Superscript struct {
	inlineBase
	Inlines []Inline
}

// Subscript is `~x~`.
type Subscript struct {
	inlineBase
	Inlines []Inline
}

// SmallCaps is `[x]{.smallcaps}` desugared, or a dedicated span variant.
type SmallCaps struct {
	inlineBase
	Inlines []Inline
}

// Underline is `[x]{.underline}` desugared, or a dedicated span variant.
type Underline struct {
	inlineBase
	Inlines []Inline
}

// QuoteStyle distinguishes single from double smart quotes.
type QuoteStyle int

const (
	SingleQuote QuoteStyle = iota
	DoubleQuote
)

// Quoted is a smart-quoted span.
type Quoted struct {
	inlineBase
	Style   QuoteStyle
	Inlines []Inline
}

// Code is an inline code span.
type Code struct {
	inlineBase
	Attr Attr
	Text string
}

// MathMode distinguishes inline from display math.
type MathMode int

const (
	InlineMath MathMode = iota
	DisplayMath
)

// Math is an inline or display LaTeX math span.
type Math struct {
	inlineBase
	Mode MathMode
	Text string
}

// RawInline is raw content in some output format, verbatim. HTML comments
// round-trip through this variant with Format == "html" and IsHTMLComment
// set, so the QMD writer can tell a true raw-HTML inline apart from a
// comment it must re-emit as `<!-- ... -->` rather than Pandoc's backtick
// raw-inline form (spec.md §4.8.3 item 4).
type RawInline struct {
	inlineBase
	Format        string
	Text          string
	IsHTMLComment bool
}

// Target is a link/image destination plus optional title.
type Target struct {
	URL   string
	Title string
}

// Link is a hyperlink. RefLabel is non-empty only between ASTBuilder and
// Postprocess: it names an unresolved `[text][label]`/`[text]` reference
// awaiting lookup against Document.LinkDefs (spec.md §4.5); Postprocess
// clears it once Target is filled in, or leaves it set and emits an
// UnresolvedReference diagnostic if no definition matches.
type Link struct {
	inlineBase
	Attr     Attr
	Inlines  []Inline
	Target   Target
	RefLabel string
}

// Image is an image reference. See Link.RefLabel.
type Image struct {
	inlineBase
	Attr     Attr
	Inlines  []Inline
	Target   Target
	RefLabel string
}

// Note is an inline (non-referenced) footnote body, used only where the
// Pandoc model requires a fully inlined note rather than a NoteReference
// (see writer/native's inline-footnote-definition policy, spec.md §9 OQ-3).
type Note struct {
	inlineBase
	Blocks []Block
}

// NoteReference is `[^id]` at its point of use. The matching NoteDefinition
// is collected separately (spec.md §3.1); an unresolved reference is a
// diagnostic, not a structural error.
type NoteReference struct {
	inlineBase
	ID string
}

// CitationMode mirrors Pandoc's three citation rendering modes.
type CitationMode int

const (
	NormalCitation CitationMode = iota
	AuthorInText
	SuppressAuthor
)

// CitationItem is one `@key` entry of a possibly-grouped citation.
type CitationItem struct {
	Key     string
	Mode    CitationMode
	Prefix  []Inline
	Suffix  []Inline
}

// Citation is a `[@key; @key2]`-style citation group. Citation processing
// itself (style resolution) is out of scope (spec.md §1); this only
// captures the parsed structure.
type Citation struct {
	inlineBase
	Items []CitationItem
}

// Span is a generic `[...]{...}` bracketed span with attributes.
type Span struct {
	inlineBase
	Attr    Attr
	Inlines []Inline
}

// ShortcodeArg is one positional or named shortcode argument.
type ShortcodeArg struct {
	Name  string // empty for positional args
	Value string
}

// Shortcode is a Quarto `{{< name arg... >}}` shortcode. Evaluation is out
// of scope (spec.md §1); only parsed structure is retained.
type Shortcode struct {
	inlineBase
	Name string
	Args []ShortcodeArg
}

// Highlight is a `[x]{.mark}`/`==x==` CriticMarkup-like highlight span.
type Highlight struct {
	inlineBase
	Inlines []Inline
}

// Insert is a `{++x++}` CriticMarkup-like insertion span.
type Insert struct {
	inlineBase
	Inlines []Inline
}

// Delete is a `{--x--}` CriticMarkup-like deletion span.
type Delete struct {
	inlineBase
	Inlines []Inline
}

// EditComment is a `{>>x<<}` CriticMarkup-like comment span.
type EditComment struct {
	inlineBase
	Inlines []Inline
}
