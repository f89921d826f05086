package astbuild

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/quarto-dev/q2-sub015/ast"
	"github.com/quarto-dev/q2-sub015/blockscan"
	"github.com/quarto-dev/q2-sub015/diag"
	"github.com/quarto-dev/q2-sub015/inlinescan"
)

// buildBlock converts one blockscan.Node into zero or more ast.Block
// (zero for nodes that only feed side tables: link reference definitions
// and footnote/fenced-div note definitions, which Document.LinkDefs/Notes
// carry instead of the Blocks sequence, per spec.md §3.1).
func (b *Builder) buildBlock(n *blockscan.Node) []ast.Block {
	switch n.Kind {
	case blockscan.NodeParagraph:
		return []ast.Block{b.buildParagraph(n)}
	case blockscan.NodeHeading:
		return []ast.Block{b.buildHeading(n)}
	case blockscan.NodeThematicBreak:
		hr := &ast.HorizontalRule{}
		hr.SrcInfo = b.nodeSrc(n)
		return []ast.Block{hr}
	case blockscan.NodeFencedCode:
		cb := &ast.CodeBlock{Attr: codeInfoAttr(n.InfoString, b.diags), Text: n.RawText}
		cb.SrcInfo = b.nodeSrc(n)
		return []ast.Block{cb}
	case blockscan.NodeBlockQuote:
		bq := &ast.BlockQuote{Blocks: b.buildBlocks(n.Children)}
		bq.SrcInfo = b.nodeSrc(n)
		return []ast.Block{bq}
	case blockscan.NodeList:
		return []ast.Block{b.buildList(n)}
	case blockscan.NodeFencedDiv:
		return b.buildFencedDiv(n)
	case blockscan.NodePipeTable:
		return []ast.Block{b.buildTable(n)}
	case blockscan.NodeLinkRefDef:
		url, title := splitLinkDestTitle(n.RawText)
		b.linkDefs[n.NoteID] = ast.Target{URL: url, Title: title}
		return nil
	case blockscan.NodeFootnoteDef:
		nd := &ast.NoteDefinition{ID: n.NoteID, Blocks: b.buildBlocks(n.Children)}
		nd.SrcInfo = b.nodeSrc(n)
		b.notes[n.NoteID] = nd
		return nil
	case blockscan.NodeBlank, blockscan.NodeHTMLComment:
		return nil
	}
	return nil
}

func (b *Builder) buildBlocks(ns []*blockscan.Node) []ast.Block {
	var out []ast.Block
	for _, c := range ns {
		out = append(out, b.buildBlock(c)...)
	}
	return out
}

// buildParagraph scans a paragraph's concatenated inline segments. A
// paragraph whose entire (non-whitespace) content is one HTML comment is
// promoted to HTMLCommentBlock rather than left as a Paragraph wrapping a
// lone RawInline, since a block-level comment (one occupying a line by
// itself, spec.md §4.2) is structurally a comment, not prose that happens
// to contain one.
func (b *Builder) buildParagraph(n *blockscan.Node) ast.Block {
	text, src := b.concatSegments(n.InlineSegments)
	nodes := inlinescan.New(text).Scan()
	inlines := b.convertInlines(nodes, text, src)
	if com, ok := soleHTMLComment(inlines); ok {
		hc := &ast.HTMLCommentBlock{Text: com.Text}
		hc.SrcInfo = com.SrcInfo
		return hc
	}
	p := &ast.Paragraph{Inlines: inlines}
	p.SrcInfo = src
	return p
}

func soleHTMLComment(inlines []ast.Inline) (*ast.RawInline, bool) {
	var found *ast.RawInline
	for _, in := range inlines {
		switch v := in.(type) {
		case *ast.Space, *ast.SoftBreak:
			continue
		case *ast.RawInline:
			if v.IsHTMLComment && found == nil {
				found = v
				continue
			}
			return nil, false
		default:
			return nil, false
		}
	}
	if found == nil {
		return nil, false
	}
	return found, true
}

// buildHeading splits off a trailing `{...}` attribute block (not stripped
// by blockscan, which only trims a closing run of bare '#' characters)
// before scanning the remaining text as inline content.
func (b *Builder) buildHeading(n *blockscan.Node) ast.Block {
	seg := n.InlineSegments[0]
	text := b.src[seg.Start:seg.End]
	attr := ast.Attr{}
	body := text
	if braceStart, ok := trailingAttrBrace(text); ok {
		attr = parseAttr(string(text[braceStart:]), b.diags)
		body = bytes.TrimRight(text[:braceStart], " \t")
	}
	bodySrc := b.rangeSrc(seg.Start, seg.Start+len(body))
	nodes := inlinescan.New(body).Scan()
	h := &ast.Heading{Level: n.Level, Attr: attr, Inlines: b.convertInlines(nodes, body, bodySrc)}
	h.SrcInfo = b.nodeSrc(n)
	return h
}

// trailingAttrBrace finds a brace-balanced `{...}` occupying the very end
// of text (after trimming trailing whitespace), returning the index of its
// opening '{'. This is deliberately conservative: it only recognizes a
// brace run with no line breaks and balanced nesting, matching how Pandoc
// heading attributes are written in practice.
func trailingAttrBrace(text []byte) (int, bool) {
	t := bytes.TrimRight(text, " \t")
	if len(t) == 0 || t[len(t)-1] != '}' {
		return 0, false
	}
	depth := 0
	for i := len(t) - 1; i >= 0; i-- {
		switch t[i] {
		case '}':
			depth++
		case '{':
			depth--
			if depth == 0 {
				return i, true
			}
		case '\n':
			return 0, false
		}
	}
	return 0, false
}

func (b *Builder) buildList(n *blockscan.Node) ast.Block {
	items := make([][]ast.Block, 0, len(n.Children))
	for _, item := range n.Children {
		items = append(items, b.buildBlocks(item.Children))
	}
	if n.Level == 0 {
		bl := &ast.BulletList{Items: items}
		bl.SrcInfo = b.nodeSrc(n)
		return bl
	}
	delim := ast.Period
	if n.ListMarker == ')' {
		delim = ast.OneParen
	}
	start := 1
	if len(n.Children) > 0 {
		start = b.orderedListStart(n.Children[0])
	}
	ol := &ast.OrderedList{
		Start: start,
		Style: ast.Decimal,
		Delim: delim,
		Items: items,
	}
	ol.SrcInfo = b.nodeSrc(n)
	return ol
}

// orderedListStart recovers an ordered list's starting number, which
// blockscan's NodeListItem never records directly: item.Start points at
// the marker's own first byte (the position before width-stripping is
// applied to its content), so the digits immediately there are the
// original marker's number (spec.md §4.3 "ordered lists start from the
// first item's number").
func (b *Builder) orderedListStart(item *blockscan.Node) int {
	i := item.Start
	for i < item.End && (b.src[i] == ' ' || b.src[i] == '\t') {
		i++
	}
	start := i
	for i < item.End && b.src[i] >= '0' && b.src[i] <= '9' {
		i++
	}
	numStr := string(b.src[start:i])
	if numStr == "" {
		return 1
	}
	val, err := strconv.Atoi(numStr)
	if err != nil {
		b.diags.Add(diag.Diagnostic{
			Kind:     diag.StructuralParse,
			Severity: diag.Warning,
			Title:    "ordered list start out of range",
			Problem:  "list marker number \"" + numStr + "\" could not be parsed",
			Source:   b.rangeSrc(start, i),
		})
		return 1
	}
	return val
}

func (b *Builder) buildFencedDiv(n *blockscan.Node) []ast.Block {
	attr := parseAttr(n.InfoString, b.diags)
	blocks := b.buildBlocks(n.Children)
	if n.NoteID != "" {
		nd := &ast.NoteDefinition{ID: n.NoteID, Blocks: blocks}
		nd.SrcInfo = b.nodeSrc(n)
		b.notes[n.NoteID] = nd
		return nil
	}
	fd := &ast.FencedDiv{Attr: attr, Blocks: blocks}
	fd.SrcInfo = b.nodeSrc(n)
	return []ast.Block{fd}
}

func (b *Builder) buildTable(n *blockscan.Node) ast.Block {
	t := n.Table
	colspec := make([]ast.ColSpec, len(t.Align))
	for i, a := range t.Align {
		colspec[i] = ast.ColSpec{Align: convertAlign(a)}
	}
	head := ast.TableRow{Cells: b.buildCellsPadded(t.Header, len(colspec))}
	var bodyRows []ast.TableRow
	for _, row := range t.Rows {
		bodyRows = append(bodyRows, ast.TableRow{Cells: b.buildCellsPadded(row, len(colspec))})
	}
	tbl := &ast.Table{Colspec: colspec, Head: head, Bodies: []ast.TableBody{{Rows: bodyRows}}}
	tbl.SrcInfo = b.nodeSrc(n)
	return tbl
}

func convertAlign(a blockscan.TableAlign) ast.Alignment {
	switch a {
	case blockscan.AlignLeft:
		return ast.AlignLeft
	case blockscan.AlignRight:
		return ast.AlignRight
	case blockscan.AlignCenter:
		return ast.AlignCenter
	default:
		return ast.AlignDefault
	}
}

// buildCellsPadded converts a raw row into exactly n cells, matching the
// delimiter row's column count: a short row is padded with empty cells and
// a long one is truncated with a diagnostic, mirroring Pandoc's own
// leniency toward ragged pipe-table rows.
func (b *Builder) buildCellsPadded(cells []blockscan.TableCell, n int) []ast.TableCell {
	out := make([]ast.TableCell, n)
	for i := 0; i < n; i++ {
		if i < len(cells) {
			out[i] = b.buildCell(cells[i])
		}
	}
	if len(cells) > n {
		b.diags.Add(diag.Diagnostic{
			Kind:     diag.StructuralParse,
			Severity: diag.Warning,
			Title:    "pipe table row has more cells than its header",
			Problem:  "truncating extra cells to match the column count",
			Source:   b.rangeSrc(cells[n].Start, cells[len(cells)-1].End),
		})
	}
	return out
}

func (b *Builder) buildCell(c blockscan.TableCell) ast.TableCell {
	text := b.src[c.Start:c.End]
	src := b.rangeSrc(c.Start, c.End)
	nodes := inlinescan.New(text).Scan()
	inlines := b.convertInlines(nodes, text, src)
	p := &ast.Paragraph{Inlines: inlines}
	p.SrcInfo = src
	return ast.TableCell{Blocks: []ast.Block{p}}
}

// splitLinkDestTitle splits a link reference definition's raw remainder
// ("<url>" / "url" optionally followed by a quoted title) into destination
// and title. Angle-bracket destinations and bare destinations are both
// accepted, matching the dialect's link-destination grammar.
func splitLinkDestTitle(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	var url string
	rest := raw
	if raw[0] == '<' {
		if end := strings.IndexByte(raw, '>'); end >= 0 {
			url = raw[1:end]
			rest = strings.TrimSpace(raw[end+1:])
		} else {
			url = raw
			rest = ""
		}
	} else if sp := strings.IndexAny(raw, " \t"); sp >= 0 {
		url = raw[:sp]
		rest = strings.TrimSpace(raw[sp+1:])
	} else {
		url = raw
		rest = ""
	}
	title := ""
	if len(rest) >= 2 {
		open, close := rest[0], rest[len(rest)-1]
		if (open == '"' && close == '"') || (open == '\'' && close == '\'') || (open == '(' && close == ')') {
			title = rest[1 : len(rest)-1]
		}
	}
	return url, title
}
