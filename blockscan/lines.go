package blockscan

// line is one physical line of source, as a half-open byte range
// excluding its terminating newline, plus the offset right after the
// newline (or len(src) at EOF).
type line struct {
	Start, End   int // content span, newline excluded
	NextLineAt   int // offset of the following line (after \n / \r\n)
}

// splitLines breaks src into physical lines. CRLF and LF are both
// recognized; the line's content range never includes the terminator.
func splitLines(src []byte) []line {
	var lines []line
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			end := i
			if end > start && src[end-1] == '\r' {
				end--
			}
			lines = append(lines, line{Start: start, End: end, NextLineAt: i + 1})
			start = i + 1
		}
	}
	if start < len(src) || len(lines) == 0 {
		lines = append(lines, line{Start: start, End: len(src), NextLineAt: len(src)})
	}
	return lines
}

func isBlankLine(src []byte, l line) bool {
	for i := l.Start; i < l.End; i++ {
		switch src[i] {
		case ' ', '\t':
			continue
		default:
			return false
		}
	}
	return true
}

// leadingSpaces returns the number of leading space/tab columns (tabs
// expand to the next stop of 4, per spec.md §3.3) and the byte offset of
// the first non-space/tab character.
func leadingSpaces(src []byte, l line) (cols int, contentStart int) {
	col := 0
	i := l.Start
	for i < l.End && (src[i] == ' ' || src[i] == '\t') {
		col = ColumnAt(col, src[i])
		i++
	}
	return col, i
}
