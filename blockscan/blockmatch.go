package blockscan

import "bytes"

// isSpaceOrTab reports whether b is an ASCII blank.
func isSpaceOrTab(b byte) bool { return b == ' ' || b == '\t' }

// trimLeadingIndent strips up to max leading space/tab columns (tabs count
// as 4, matching the rest of the package), returning the remainder and how
// many columns were consumed.
func trimLeadingIndent(text []byte, max int) ([]byte, int) {
	col := 0
	i := 0
	for i < len(text) && isSpaceOrTab(text[i]) && col < max {
		col = ColumnAt(col, text[i])
		i++
	}
	return text[i:], col
}

// --- ATX headings ---------------------------------------------------------

func isAtxHeading(text []byte) bool {
	rest, _ := trimLeadingIndent(text, 3)
	n := 0
	for n < len(rest) && rest[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return false
	}
	if n == len(rest) {
		return true
	}
	return isSpaceOrTab(rest[n])
}

func (s *Scanner) tryAtxHeading(lines []scanLine, i int, text []byte) (*Node, int) {
	if !isAtxHeading(text) {
		return nil, i
	}
	rest, indent := trimLeadingIndent(text, 3)
	n := 0
	for n < len(rest) && rest[n] == '#' {
		n++
	}
	body := bytes.TrimLeft(rest[n:], " \t")
	body = bytes.TrimRight(body, " \t")
	// Trim an optional closing sequence of '#' characters.
	trimmed := bytes.TrimRight(body, "#")
	if len(trimmed) < len(body) && (len(trimmed) == 0 || isSpaceOrTab(trimmed[len(trimmed)-1])) {
		body = bytes.TrimRight(trimmed, " \t")
	}
	ln := lines[i]
	contentStart := ln.content + indent + n
	for contentStart < ln.raw.End && isSpaceOrTab(s.src[contentStart]) {
		contentStart++
	}
	contentEnd := contentStart + len(body)
	node := &Node{
		Kind:           NodeHeading,
		Start:          ln.content,
		End:            ln.raw.End,
		Level:          n,
		InlineSegments: []Range{{Start: contentStart, End: contentEnd}},
	}
	return node, i + 1
}

// --- thematic breaks -------------------------------------------------------

func isThematicBreak(text []byte) bool {
	rest, _ := trimLeadingIndent(text, 3)
	if len(rest) == 0 {
		return false
	}
	var marker byte
	count := 0
	for _, b := range rest {
		switch {
		case b == '-' || b == '*' || b == '_':
			if marker == 0 {
				marker = b
			} else if b != marker {
				return false
			}
			count++
		case isSpaceOrTab(b):
			continue
		default:
			return false
		}
	}
	return count >= 3
}

func (s *Scanner) tryThematicBreak(lines []scanLine, i int, text []byte) (*Node, int) {
	if !isThematicBreak(text) {
		return nil, i
	}
	ln := lines[i]
	return &Node{Kind: NodeThematicBreak, Start: ln.content, End: ln.raw.End}, i + 1
}

// --- fenced code blocks ------------------------------------------------------

// isFenceStart returns the fence length (>=3) if text opens a fenced code
// block, or 0 otherwise.
func isFenceStart(text []byte) int {
	rest, _ := trimLeadingIndent(text, 3)
	if len(rest) == 0 {
		return 0
	}
	ch := rest[0]
	if ch != '`' && ch != '~' {
		return 0
	}
	n := 0
	for n < len(rest) && rest[n] == ch {
		n++
	}
	if n < 3 {
		return 0
	}
	if ch == '`' && bytes.IndexByte(rest[n:], '`') >= 0 {
		// A backtick fence's info string may not itself contain a backtick.
		return 0
	}
	return n
}

func fenceChar(text []byte) byte {
	rest, _ := trimLeadingIndent(text, 3)
	if len(rest) == 0 {
		return 0
	}
	return rest[0]
}

func (s *Scanner) tryFencedCode(lines []scanLine, i int, text []byte) (*Node, int) {
	n := isFenceStart(text)
	if n == 0 {
		return nil, i
	}
	ch := fenceChar(text)
	ln := lines[i]
	rest, _ := trimLeadingIndent(text, 3)
	info := bytes.TrimSpace(rest[n:])
	j := i + 1
	end := ln.raw.End
	bodyStart, bodyEnd := -1, -1
	for j < len(lines) {
		closeText := s.src[lines[j].content:lines[j].raw.End]
		closeRest, _ := trimLeadingIndent(closeText, 3)
		k := 0
		for k < len(closeRest) && closeRest[k] == ch {
			k++
		}
		if k >= n && len(bytes.TrimSpace(closeRest[k:])) == 0 {
			end = lines[j].raw.End
			j++
			break
		}
		if bodyStart < 0 {
			bodyStart = lines[j].content
		}
		bodyEnd = lines[j].raw.End
		end = lines[j].raw.End
		j++
	}
	// Body text is the content lines joined by their own newlines, plus a
	// trailing one -- never a leading newline carried over from the
	// opening fence line, and never missing the final line's terminator.
	raw := ""
	if bodyStart >= 0 {
		raw = string(s.src[bodyStart:bodyEnd]) + "\n"
	}
	node := &Node{
		Kind:       NodeFencedCode,
		Start:      ln.content,
		End:        end,
		FenceChar:  ch,
		FenceLen:   n,
		InfoString: string(info),
		RawText:    raw,
	}
	return node, j
}

// --- fenced divs (Quarto/Pandoc ::: containers) -----------------------------

func isFencedDivStart(text []byte) bool {
	rest, _ := trimLeadingIndent(text, 3)
	n := 0
	for n < len(rest) && rest[n] == ':' {
		n++
	}
	return n >= 3
}

// extractCaretID pulls a "^id" footnote-definition marker out of a fenced
// div's attribute body (spec.md §4.3/§4.4: "an optional `^id` marker on the
// opening fence denotes a footnote-definition div"), returning "" if none is
// present. This is distinct from the ordinary Pandoc "#id" attribute-id
// token, which astbuild's attribute grammar parses separately into Attr.ID;
// a fenced div may carry both, e.g. `:::{#fig-one ^note1}`.
func extractCaretID(attr []byte) string {
	idx := bytes.IndexByte(attr, '^')
	if idx < 0 {
		return ""
	}
	rest := attr[idx+1:]
	k := 0
	for k < len(rest) && rest[k] != ' ' && rest[k] != '}' {
		k++
	}
	return string(rest[:k])
}

func fencedDivLen(text []byte) int {
	rest, _ := trimLeadingIndent(text, 3)
	n := 0
	for n < len(rest) && rest[n] == ':' {
		n++
	}
	return n
}

func (s *Scanner) tryFencedDiv(lines []scanLine, i int, text []byte, depth int) (*Node, int) {
	if !isFencedDivStart(text) {
		return nil, i
	}
	if !s.state.CanPush() {
		return nil, i
	}
	openLen := fencedDivLen(text)
	rest, _ := trimLeadingIndent(text, 3)
	attr := bytes.TrimSpace(rest[openLen:])

	s.state.Push(OpenBlock{Kind: KindFencedDiv, FenceLen: openLen, FenceChar: ':'})
	defer s.state.Pop()

	ln := lines[i]
	j := i + 1
	var inner []scanLine
	closeIdx := -1
	for j < len(lines) {
		if lines[j].blank {
			inner = append(inner, lines[j])
			j++
			continue
		}
		t := s.src[lines[j].content:lines[j].raw.End]
		if isFencedDivStart(t) {
			closeLen := fencedDivLen(t)
			r, _ := trimLeadingIndent(t, 3)
			if closeLen >= openLen && len(bytes.TrimSpace(r[closeLen:])) == 0 {
				closeIdx = j
				break
			}
		}
		inner = append(inner, lines[j])
		j++
	}
	children := s.parseBlocks(inner, depth+1)
	end := ln.raw.End
	next := i + 1 + len(inner)
	if closeIdx >= 0 {
		end = lines[closeIdx].raw.End
		next = closeIdx + 1
	} else if len(inner) > 0 {
		end = inner[len(inner)-1].raw.End
	}
	noteID := extractCaretID(attr)
	node := &Node{
		Kind:       NodeFencedDiv,
		Start:      ln.content,
		End:        end,
		InfoString: string(attr),
		NoteID:     noteID,
		Children:   children,
	}
	return node, next
}

// --- block quotes ------------------------------------------------------------

func blockQuoteMarkerLen(text []byte) (int, bool) {
	rest, _ := trimLeadingIndent(text, 3)
	if len(rest) == 0 || rest[0] != '>' {
		return 0, false
	}
	consumed := (len(text) - len(rest)) + 1
	if consumed < len(text) && isSpaceOrTab(text[consumed]) {
		consumed++
	}
	return consumed, true
}

func (s *Scanner) tryBlockQuote(lines []scanLine, i int, depth int) (*Node, int) {
	ln := lines[i]
	text := s.src[ln.content:ln.raw.End]
	consumed, ok := blockQuoteMarkerLen(text)
	if !ok {
		return nil, i
	}
	if !s.state.CanPush() {
		return nil, i
	}
	s.state.Push(OpenBlock{Kind: KindBlockQuote})
	defer s.state.Pop()

	var inner []scanLine
	inner = append(inner, scanLine{raw: ln.raw, content: ln.content + consumed, blank: isBlankLine(s.src, line{Start: ln.content + consumed, End: ln.raw.End})})
	j := i + 1
	for j < len(lines) {
		l2 := lines[j]
		if l2.blank {
			break
		}
		t2 := s.src[l2.content:l2.raw.End]
		if c2, ok2 := blockQuoteMarkerLen(t2); ok2 {
			inner = append(inner, scanLine{raw: l2.raw, content: l2.content + c2, blank: isBlankLine(s.src, line{Start: l2.content + c2, End: l2.raw.End})})
			j++
			continue
		}
		// Lazy continuation: a line with no '>' marker continues the
		// blockquote's paragraph as long as it wouldn't itself start a
		// new block.
		if paragraphInterrupts(t2) {
			break
		}
		inner = append(inner, scanLine{raw: l2.raw, content: l2.content, blank: false})
		j++
	}
	children := s.parseBlocks(inner, depth+1)
	return &Node{Kind: NodeBlockQuote, Start: ln.content, End: lines[j-1].raw.End, Children: children}, j
}

// --- lists -------------------------------------------------------------------

// listMarker reports whether text (container markers already stripped)
// opens a list item. kind is 'b' for bullet or 'o' for ordered; marker is
// the literal byte ('-','+','*','.',')'); width is the total column width
// of the marker plus its trailing whitespace, i.e. how much of the line
// belongs to the marker rather than the item's content.
func listMarker(text []byte) (kind byte, marker byte, width int) {
	rest, indent := trimLeadingIndent(text, 3)
	if len(rest) == 0 {
		return 0, 0, 0
	}
	if rest[0] == '-' || rest[0] == '+' || rest[0] == '*' {
		if len(rest) > 1 && !isSpaceOrTab(rest[1]) {
			return 0, 0, 0
		}
		if len(rest) == 1 {
			return 'b', rest[0], indent + 1
		}
		pad := 1
		for pad < len(rest) && isSpaceOrTab(rest[pad]) && pad < 5 {
			pad++
		}
		return 'b', rest[0], indent + pad
	}
	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' && n < 9 {
		n++
	}
	if n == 0 || n >= len(rest) {
		return 0, 0, 0
	}
	if rest[n] != '.' && rest[n] != ')' {
		return 0, 0, 0
	}
	if n+1 < len(rest) && !isSpaceOrTab(rest[n+1]) {
		return 0, 0, 0
	}
	if n+1 == len(rest) {
		return 'o', rest[n], indent + n + 1
	}
	pad := n + 1
	for pad < len(rest) && isSpaceOrTab(rest[pad]) && pad < n+5 {
		pad++
	}
	return 'o', rest[n], indent + pad
}

func (s *Scanner) tryList(lines []scanLine, i int, depth int) (*Node, int) {
	ln := lines[i]
	text := s.src[ln.content:ln.raw.End]
	kind, marker, width := listMarker(text)
	if kind == 0 {
		return nil, i
	}
	if !s.state.CanPush() {
		return nil, i
	}
	style := NumberStyleForByte(marker)
	var items []*Node
	j := i
	for j < len(lines) {
		l2 := lines[j]
		if l2.blank {
			j++
			continue
		}
		t2 := s.src[l2.content:l2.raw.End]
		k2, m2, w2 := listMarker(t2)
		if k2 == 0 || k2 != kind || !sameListStyle(kind, marker, m2) {
			break
		}
		item, next := s.scanListItem(lines, j, w2, depth)
		items = append(items, item)
		j = next
	}
	if len(items) == 0 {
		return nil, i
	}
	start := items[0].Start
	end := items[len(items)-1].End
	return &Node{
		Kind:       NodeList,
		Start:      start,
		End:        end,
		ListMarker: marker,
		Level:      style,
		Children:   items,
	}, j
}

// NumberStyleForByte is exported for astbuild to interpret List.Level
// without re-deriving it from the marker byte.
func NumberStyleForByte(marker byte) int {
	switch marker {
	case '.':
		return 1
	case ')':
		return 2
	default:
		return 0
	}
}

func sameListStyle(kind, a, b byte) bool {
	if kind == 'b' {
		return a == b
	}
	return a == b // delimiter char ('.' vs ')') distinguishes ordered sub-styles
}

func (s *Scanner) scanListItem(lines []scanLine, i int, width int, depth int) (*Node, int) {
	s.state.Push(OpenBlock{Kind: KindListItem, Indent: width})
	defer s.state.Pop()

	ln := lines[i]
	var inner []scanLine
	first := ln.content + width
	inner = append(inner, scanLine{raw: ln.raw, content: first, blank: isBlankLine(s.src, line{Start: first, End: ln.raw.End})})
	j := i + 1
	for j < len(lines) {
		l2 := lines[j]
		if l2.blank {
			inner = append(inner, l2.Blank())
			j++
			continue
		}
		t2 := s.src[l2.content:l2.raw.End]
		_, col := trimLeadingIndent(t2, width+4)
		if col >= width {
			stripped, _ := trimLeadingIndent(t2, width)
			inner = append(inner, scanLine{raw: l2.raw, content: l2.raw.End - len(stripped), blank: false})
			j++
			continue
		}
		if k2, _, _ := listMarker(t2); k2 != 0 {
			break
		}
		if paragraphInterrupts(t2) {
			break
		}
		break
	}
	children := s.parseBlocks(inner, depth+1)
	end := ln.raw.End
	if len(inner) > 0 {
		end = inner[len(inner)-1].raw.End
	}
	return &Node{Kind: NodeListItem, Start: ln.content, End: end, Indent: width, Children: children}, j
}

// Blank returns a copy of the scanLine flagged blank, content unchanged;
// used when re-threading an already-classified blank line into an inner
// slice without re-deriving it from src.
func (l scanLine) Blank() scanLine {
	l.blank = true
	return l
}

// --- pipe tables ---------------------------------------------------------

func isDelimiterRow(text []byte) bool {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 {
		return false
	}
	cells := splitPipeCells(trimmed)
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		c = bytes.TrimSpace(c)
		if len(c) == 0 {
			return false
		}
		start, end := 0, len(c)
		if c[0] == ':' {
			start++
		}
		if end > start && c[end-1] == ':' {
			end--
		}
		if start >= end {
			return false
		}
		for _, b := range c[start:end] {
			if b != '-' {
				return false
			}
		}
	}
	return true
}

// splitPipeCells splits a pipe-table row on unescaped '|', except inside a
// backtick code span or '$'/'$$' latex span (spec.md §4.3): a '|' enclosed
// by a matching delimiter run is part of the cell's content, not a column
// boundary, mirroring the run-matching idiom inlinescan's tryCodeSpan/tryMath
// use for the same delimiters.
func splitPipeCells(line []byte) [][]byte {
	line = bytes.TrimSpace(line)
	line = bytes.TrimPrefix(line, []byte("|"))
	line = bytes.TrimSuffix(line, []byte("|"))
	var cells [][]byte
	start := 0
	escaped := false
	for i := 0; i < len(line); i++ {
		switch {
		case escaped:
			escaped = false
		case line[i] == '\\':
			escaped = true
		case line[i] == '`' || line[i] == '$':
			if closeEnd := spanCloseEnd(line, i); closeEnd > i {
				i = closeEnd - 1
			}
		case line[i] == '|':
			cells = append(cells, line[start:i])
			start = i + 1
		}
	}
	cells = append(cells, line[start:])
	return cells
}

// spanCloseEnd reports the end index (exclusive) of the code/latex span that
// opens at line[i], or i if no closing run of the same delimiter length
// exists, in which case the delimiter run is left for the caller to treat as
// ordinary text.
func spanCloseEnd(line []byte, i int) int {
	ch := line[i]
	n := 0
	for i+n < len(line) && line[i+n] == ch {
		n++
	}
	j := i + n
	for j < len(line) {
		if line[j] == ch {
			k := j
			for k < len(line) && line[k] == ch {
				k++
			}
			if k-j == n {
				return k
			}
			j = k
			continue
		}
		j++
	}
	return i
}

func cellAlign(text []byte) TableAlign {
	c := bytes.TrimSpace(text)
	left := len(c) > 0 && c[0] == ':'
	right := len(c) > 0 && c[len(c)-1] == ':'
	switch {
	case left && right:
		return AlignCenter
	case left:
		return AlignLeft
	case right:
		return AlignRight
	default:
		return AlignDefault
	}
}

func (s *Scanner) tryPipeTable(lines []scanLine, i int) (*Node, int) {
	if i+1 >= len(lines) {
		return nil, i
	}
	headerLine := lines[i]
	if headerLine.blank {
		return nil, i
	}
	headerText := s.src[headerLine.content:headerLine.raw.End]
	if bytes.IndexByte(headerText, '|') < 0 {
		return nil, i
	}
	delimText := s.src[lines[i+1].content:lines[i+1].raw.End]
	if !isDelimiterRow(delimText) {
		return nil, i
	}
	headerCells := splitPipeCells(bytes.TrimSpace(headerText))
	delimCells := splitPipeCells(bytes.TrimSpace(delimText))

	table := &TableData{}
	base := headerLine.content
	for _, c := range headerCells {
		s0, e0 := cellOffsets(s.src, base, headerText, c)
		table.Header = append(table.Header, TableCell{Start: s0, End: e0})
	}
	for _, c := range delimCells {
		table.Align = append(table.Align, cellAlign(c))
	}

	j := i + 2
	for j < len(lines) {
		l := lines[j]
		if l.blank {
			break
		}
		t := s.src[l.content:l.raw.End]
		if bytes.IndexByte(t, '|') < 0 {
			break
		}
		cells := splitPipeCells(bytes.TrimSpace(t))
		var row []TableCell
		for _, c := range cells {
			s0, e0 := cellOffsets(s.src, l.content, t, c)
			row = append(row, TableCell{Start: s0, End: e0})
		}
		table.Rows = append(table.Rows, row)
		j++
	}
	node := &Node{
		Kind:  NodePipeTable,
		Start: headerLine.content,
		End:   lines[j-1].raw.End,
		Table: table,
	}
	return node, j
}

// cellOffsets recovers a cell's absolute byte offsets given the line's
// absolute base offset and the slice it was cut from via splitPipeCells
// (which operates on a TrimSpace'd copy, so pointer arithmetic against the
// original line text is needed instead of len-based reconstruction).
func cellOffsets(src []byte, base int, lineText, cell []byte) (int, int) {
	if len(cell) == 0 {
		return base, base
	}
	off := bytes.Index(lineText, cell)
	if off < 0 {
		return base, base
	}
	return base + off, base + off + len(cell)
}

// --- link reference definitions & footnote definitions ----------------------

func (s *Scanner) tryLinkRefDef(lines []scanLine, i int, text []byte) (*Node, int) {
	rest, _ := trimLeadingIndent(text, 3)
	if len(rest) < 4 || rest[0] != '[' {
		return nil, i
	}
	if rest[1] == '^' {
		return nil, i // footnote definition, handled separately
	}
	close := bytes.IndexByte(rest, ']')
	if close < 0 || close+1 >= len(rest) || rest[close+1] != ':' {
		return nil, i
	}
	label := string(rest[1:close])
	url := bytes.TrimSpace(rest[close+2:])
	ln := lines[i]
	return &Node{
		Kind:    NodeLinkRefDef,
		Start:   ln.content,
		End:     ln.raw.End,
		NoteID:  label,
		RawText: string(url),
	}, i + 1
}

func (s *Scanner) tryFootnoteDef(lines []scanLine, i int, depth int) (*Node, int) {
	ln := lines[i]
	text := s.src[ln.content:ln.raw.End]
	rest, _ := trimLeadingIndent(text, 3)
	if len(rest) < 4 || rest[0] != '[' || rest[1] != '^' {
		return nil, i
	}
	close := bytes.IndexByte(rest, ']')
	if close < 0 || close+1 >= len(rest) || rest[close+1] != ':' {
		return nil, i
	}
	id := string(rest[2:close])
	if !s.state.CanPush() {
		return nil, i
	}
	s.state.Push(OpenBlock{Kind: KindAnonymous})
	defer s.state.Pop()

	afterColon := close + 2
	for afterColon < len(rest) && isSpaceOrTab(rest[afterColon]) {
		afterColon++
	}
	firstContent := ln.content + (len(text) - len(rest)) + afterColon
	var inner []scanLine
	inner = append(inner, scanLine{raw: ln.raw, content: firstContent, blank: isBlankLine(s.src, line{Start: firstContent, End: ln.raw.End})})
	j := i + 1
	for j < len(lines) {
		l2 := lines[j]
		if l2.blank {
			inner = append(inner, l2.Blank())
			j++
			continue
		}
		t2 := s.src[l2.content:l2.raw.End]
		_, col := trimLeadingIndent(t2, 4)
		if col >= 4 {
			stripped, _ := trimLeadingIndent(t2, 4)
			inner = append(inner, scanLine{raw: l2.raw, content: l2.raw.End - len(stripped), blank: false})
			j++
			continue
		}
		break
	}
	children := s.parseBlocks(inner, depth+1)
	end := ln.raw.End
	if len(inner) > 0 {
		end = inner[len(inner)-1].raw.End
	}
	return &Node{Kind: NodeFootnoteDef, Start: ln.content, End: end, NoteID: id, Children: children}, j
}

// --- front matter ------------------------------------------------------------

// scanFrontMatter recognizes a YAML front matter block delimited by "---"
// at the very start of the document (spec.md §4.3). It returns nil if the
// document does not open with one.
func (s *Scanner) scanFrontMatter(lines []line) (*Node, int) {
	if len(lines) == 0 {
		return nil, 0
	}
	first := bytes.TrimRight(s.src[lines[0].Start:lines[0].End], " \t")
	if string(first) != "---" {
		return nil, 0
	}
	if len(lines) > 1 && len(bytes.TrimSpace(s.src[lines[1].Start:lines[1].End])) == 0 {
		// A blank line immediately after "---" means it's a thematic break,
		// not a front matter opener (spec.md §4.2).
		return nil, 0
	}
	for j := 1; j < len(lines); j++ {
		t := bytes.TrimRight(s.src[lines[j].Start:lines[j].End], " \t")
		if string(t) == "---" || string(t) == "..." {
			return &Node{
				Kind:           NodeFrontMatter,
				Start:          lines[0].Start,
				End:            lines[j].End,
				RawText:        string(s.src[lines[1].Start:lines[j].Start]),
				InlineSegments: []Range{{Start: lines[1].Start, End: lines[j].Start}},
			}, j + 1
		}
	}
	return nil, 0
}
