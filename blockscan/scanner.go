package blockscan

import (
	"bytes"

	"github.com/quarto-dev/q2-sub015/diag"
)

// Scanner drives the block grammar over one document's bytes. It is not
// safe for concurrent/re-entrant use (spec.md §4.6); create one per
// document. The block forest is built by recursive descent over physical
// lines rather than the streaming line-automaton spec.md §4.2 describes
// literally, because that automaton is what a tree-sitter external scanner
// would implement in C; see SPEC_FULL.md §4.2 for why this module fuses
// scanner and grammar into one Go-native driver instead. The token
// vocabulary and line-matching semantics (disambiguation rules, HTML
// comment cross-boundary consumption, front-matter framing, pipe-table
// lookahead, stack-depth guard) are preserved exactly.
type Scanner struct {
	src      []byte
	diags    diag.Bag
	comments []Range // pre-scanned <!-- ... --> spans, see commentSpans
	state    *State  // kept for Signature()/CanPush(), updated as we descend
}

// New creates a Scanner over src, ready to Scan.
func New(src []byte) *Scanner {
	return &Scanner{
		src:      src,
		comments: commentSpans(src),
		state:    NewState(),
	}
}

// Diagnostics returns diagnostics accumulated during Scan.
func (s *Scanner) Diagnostics() *diag.Bag { return &s.diags }

// State returns the scanner's current container stack, for Signature()
// (spec.md §4.7 step 1, driven by diag.BuildTable's corpus build).
func (s *Scanner) State() *State { return s.state }

// scanLine is one physical line annotated with where *this* recursion
// level's content begins (container markers already consumed by callers).
type scanLine struct {
	raw     line
	content int // offset where this level's content starts
	blank   bool
}

// Scan tokenizes and parses the whole document, returning the root
// NodeDocument of the concrete block forest.
func (s *Scanner) Scan() *Node {
	root := &Node{Kind: NodeDocument, Start: 0, End: len(s.src)}

	lines := splitLines(s.src)
	startIdx := 0

	if fm, next := s.scanFrontMatter(lines); fm != nil {
		root.Children = append(root.Children, fm)
		startIdx = next
	}

	sl := make([]scanLine, 0, len(lines)-startIdx)
	for _, l := range lines[startIdx:] {
		sl = append(sl, scanLine{raw: l, content: l.Start, blank: isBlankLine(s.src, l)})
	}

	root.Children = append(root.Children, s.parseBlocks(sl, 0)...)
	return root
}

// parseBlocks consumes scanLines[0:] at one container nesting depth,
// returning the block sequence found at that level. depth counts the
// container nesting and is passed down to nested calls; the stack-limit
// guard (spec.md §4.2 "Stack limit") reads the State stack, not depth.
func (s *Scanner) parseBlocks(lines []scanLine, depth int) []*Node {
	var out []*Node
	i := 0
	for i < len(lines) {
		ln := lines[i]
		if ln.blank {
			i++
			continue
		}

		if span, ok := s.commentCovering(ln.content); ok {
			node, next := s.consumeCommentParagraph(lines, i, span)
			out = append(out, node)
			i = next
			continue
		}

		text := s.src[ln.content:ln.raw.End]

		if n, next := s.tryAtxHeading(lines, i, text); n != nil {
			out = append(out, n)
			i = next
			continue
		}
		if n, next := s.tryThematicBreak(lines, i, text); n != nil {
			out = append(out, n)
			i = next
			continue
		}
		if n, next := s.tryFencedCode(lines, i, text); n != nil {
			out = append(out, n)
			i = next
			continue
		}
		if n, next := s.tryFencedDiv(lines, i, text, depth); n != nil {
			out = append(out, n)
			i = next
			continue
		}
		if n, next := s.tryPipeTable(lines, i); n != nil {
			out = append(out, n)
			i = next
			continue
		}
		if n, next := s.tryFootnoteDef(lines, i, depth); n != nil {
			out = append(out, n)
			i = next
			continue
		}
		if n, next := s.tryLinkRefDef(lines, i, text); n != nil {
			out = append(out, n)
			i = next
			continue
		}
		if n, next := s.tryBlockQuote(lines, i, depth); n != nil {
			out = append(out, n)
			i = next
			continue
		}
		if n, next := s.tryList(lines, i, depth); n != nil {
			out = append(out, n)
			i = next
			continue
		}

		n, next := s.scanParagraph(lines, i)
		out = append(out, n)
		i = next
	}
	return out
}

// commentCovering reports whether offset falls inside a pre-scanned HTML
// comment span, and returns that span.
func (s *Scanner) commentCovering(offset int) (Range, bool) {
	for _, c := range s.comments {
		if offset >= c.Start && offset < c.End {
			return c, true
		}
	}
	return Range{}, false
}

// commentSpans finds every `<!--` ... `-->` range in src, a document-wide
// pre-pass that lets block parsing treat a comment opaquely regardless of
// what markers it appears to contain (spec.md §4.2 "HTML comments": "This
// prevents false recognition of list/heading markers inside comments").
// An unterminated comment consumes to EOF, per spec.md.
func commentSpans(src []byte) []Range {
	var spans []Range
	i := 0
	for {
		start := bytes.Index(src[i:], []byte("<!--"))
		if start < 0 {
			break
		}
		start += i
		rest := start + 4
		end := bytes.Index(src[rest:], []byte("-->"))
		if end < 0 {
			spans = append(spans, Range{Start: start, End: len(src)})
			break
		}
		end = rest + end + 3
		spans = append(spans, Range{Start: start, End: end})
		i = end
	}
	return spans
}

// consumeCommentParagraph builds (or extends into) a paragraph whose text
// includes the raw comment bytes verbatim; ASTBuilder recognizes the
// embedded `<!--`/`-->` markers and emits a RawInline(html) node for them
// (spec.md §8.3 scenario 1). Lines that are consumed entirely by the
// comment (and thus never tested as block starters) include would-be list
// markers, headings, etc. — exactly the point of the pre-pass.
func (s *Scanner) consumeCommentParagraph(lines []scanLine, i int, span Range) (*Node, int) {
	segs := []Range{{Start: lines[i].content, End: lines[i].raw.End}}
	j := i + 1
	for j < len(lines) && lines[j].raw.Start < span.End {
		segs = append(segs, Range{Start: lines[j].content, End: lines[j].raw.End})
		j++
	}
	// Continue collecting ordinary paragraph lines immediately following
	// the comment's close, same as any paragraph continuation.
	for j < len(lines) && !lines[j].blank {
		text := s.src[lines[j].content:lines[j].raw.End]
		if isAtxHeading(text) || isThematicBreak(text) || isFenceStart(text) != 0 || isFencedDivStart(text) {
			break
		}
		segs = append(segs, Range{Start: lines[j].content, End: lines[j].raw.End})
		j++
	}
	return &Node{Kind: NodeParagraph, Start: segs[0].Start, End: segs[len(segs)-1].End, InlineSegments: segs}, j
}

// scanParagraph collects consecutive non-blank lines into one Paragraph
// node, stopping at a blank line or any line that would interrupt a
// paragraph (heading, break, fence start, block-quote/list marker start).
func (s *Scanner) scanParagraph(lines []scanLine, i int) (*Node, int) {
	segs := []Range{{Start: lines[i].content, End: lines[i].raw.End}}
	j := i + 1
	for j < len(lines) {
		ln := lines[j]
		if ln.blank {
			break
		}
		if _, ok := s.commentCovering(ln.content); ok {
			break
		}
		text := s.src[ln.content:ln.raw.End]
		if paragraphInterrupts(text) {
			break
		}
		segs = append(segs, Range{Start: ln.content, End: ln.raw.End})
		j++
	}
	return &Node{Kind: NodeParagraph, Start: segs[0].Start, End: segs[len(segs)-1].End, InlineSegments: segs}, j
}

// paragraphInterrupts reports whether a line (already past container
// stripping) would start a new block and therefore cannot be a lazy
// paragraph continuation line.
func paragraphInterrupts(text []byte) bool {
	if isAtxHeading(text) {
		return true
	}
	if isThematicBreak(text) {
		return true
	}
	if isFenceStart(text) != 0 {
		return true
	}
	if isFencedDivStart(text) {
		return true
	}
	if len(text) > 0 && text[0] == '>' {
		return true
	}
	if kind, _, _ := listMarker(text); kind != 0 {
		return true
	}
	return false
}
