package inlinescan

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
)

// Scanner drives the inline grammar over one block's concatenated text.
// Create one per block; it is not safe for concurrent use.
type Scanner struct {
	src []byte
}

// New creates a Scanner over the concatenated inline text of one block.
func New(src []byte) *Scanner { return &Scanner{src: src} }

// Scan tokenizes the whole input into a flat top-level node sequence;
// delimiter-bearing constructs (emphasis, strong, links, spans, ...) own
// their matched content as Children.
func (s *Scanner) Scan() []*Node {
	return s.scanRun(0, len(s.src), nil)
}

// delim is one entry of the emphasis delimiter stack (CommonMark's
// algorithm, simplified: this grammar does not need the full
// active/inactive bookkeeping CommonMark uses for link-in-emphasis
// interactions, since links are parsed as atomic units before emphasis
// resolution ever sees their bracket characters).
type delim struct {
	ch           byte
	start, end   int // byte range of the run in s.src
	canOpen      bool
	canClose     bool
	nodeIdx      int // index into the run's pending node list where this run's placeholder Text node sits
}

// scanRun scans [start:end) of s.src, stopping early if a closing
// delimiter matching stopAt is found (used when scanning inside a Span's
// `{` or a Citation's `]`); stopAt is nil for a top-level/emphasis-only
// scan that runs to end.
func (s *Scanner) scanRun(start, end int, stopAt func(i int) (consumed int, ok bool)) []*Node {
	var out []*Node
	var delims []delim
	i := start
	textStart := start

	flush := func(j int) {
		if j > textStart {
			out = append(out, s.textRun(textStart, j))
		}
		textStart = j
	}

	for i < end {
		if stopAt != nil {
			if n, ok := stopAt(i); ok {
				_ = n
				flush(i)
				return resolveEmphasis(out, delims, s.src)
			}
		}
		b := s.src[i]
		switch {
		case b == '\\' && i+1 < end:
			flush(i)
			out = append(out, &Node{Kind: NodeText, Start: i + 1, End: i + 2, Text: string(s.src[i+1 : i+2])})
			i += 2
			textStart = i
			continue
		case b == '\n':
			flush(i)
			if i > start && s.src[i-1] == ' ' && i-1 > start && s.src[i-2] == ' ' {
				out = append(out, &Node{Kind: NodeLineBreak, Start: i, End: i + 1})
			} else {
				out = append(out, &Node{Kind: NodeSoftBreak, Start: i, End: i + 1})
			}
			i++
			textStart = i
			continue
		case b == ' ' || b == '\t':
			j := i
			for j < end && (s.src[j] == ' ' || s.src[j] == '\t') {
				j++
			}
			flush(i)
			out = append(out, &Node{Kind: NodeSpace, Start: i, End: j})
			i = j
			textStart = i
			continue
		case b == '`':
			if n, node := s.tryCodeSpan(i, end); node != nil {
				flush(i)
				out = append(out, node)
				i = n
				textStart = i
				continue
			}
		case b == '$':
			if n, node := s.tryMath(i, end); node != nil {
				flush(i)
				out = append(out, node)
				i = n
				textStart = i
				continue
			}
		case b == '<':
			if n, node := s.tryAutolinkOrComment(i, end); node != nil {
				flush(i)
				out = append(out, node)
				i = n
				textStart = i
				continue
			}
		case b == '{' && i+1 < end && s.src[i+1] == '{':
			if n, node := s.tryShortcode(i, end); node != nil {
				flush(i)
				out = append(out, node)
				i = n
				textStart = i
				continue
			}
		case b == '[':
			if n, node := s.tryBracketed(i, end, false, i); node != nil {
				flush(i)
				out = append(out, node)
				i = n
				textStart = i
				continue
			}
		case b == '!' && i+1 < end && s.src[i+1] == '[':
			if n, node := s.tryBracketed(i+1, end, true, i); node != nil {
				flush(i)
				out = append(out, node)
				i = n
				textStart = i
				continue
			}
		case b == '*' || b == '_' || b == '~' || b == '^':
			run := s.delimRun(i, end, b)
			flush(i)
			placeholder := &Node{Kind: NodeText, Start: i, End: run, Text: string(s.src[i:run])}
			canOpen, canClose := flankingRules(s.src, i, run, b)
			delims = append(delims, delim{ch: b, start: i, end: run, canOpen: canOpen, canClose: canClose, nodeIdx: len(out)})
			out = append(out, placeholder)
			i = run
			textStart = i
			continue
		}
		// Advance by one grapheme cluster rather than one byte, so a
		// combining mark stays attached to its base character instead of
		// being examined as its own "character" by the punctuation/space
		// classification used for the next delimiter run's flanking test.
		step := firstGrapheme(s.src[i:end])
		if step <= 0 {
			step = 1
		}
		i += step
	}
	flush(end)
	return resolveEmphasis(out, delims, s.src)
}

// firstGrapheme returns the byte length of the first grapheme cluster in b,
// or 0 if b is empty.
func firstGrapheme(b []byte) int {
	for g := range graphemes.FromString(string(b)) {
		return len(g)
	}
	return 0
}

func (s *Scanner) textRun(start, end int) *Node {
	return &Node{Kind: NodeText, Start: start, End: end, Text: string(s.src[start:end])}
}

// delimRun returns the end offset of the run of ch starting at i.
func (s *Scanner) delimRun(i, end int, ch byte) int {
	j := i
	for j < end && s.src[j] == ch {
		j++
	}
	return j
}

// flankingRules implements a simplified CommonMark left/right-flanking
// test: a run can open emphasis if not followed by whitespace and (not
// followed by punctuation, or preceded by whitespace/punctuation); can
// close if not preceded by whitespace and the mirror condition. '_' runs
// additionally require a word boundary on the opening/closing side.
func flankingRules(src []byte, start, end int, ch byte) (canOpen, canClose bool) {
	before := byte(' ')
	if start > 0 {
		before = src[start-1]
	}
	after := byte(' ')
	if end < len(src) {
		after = src[end]
	}
	beforeSpace := isUnicodeSpace(before)
	afterSpace := isUnicodeSpace(after)
	beforePunct := isPunct(before)
	afterPunct := isPunct(after)

	leftFlanking := !afterSpace && (!afterPunct || beforeSpace || beforePunct)
	rightFlanking := !beforeSpace && (!beforePunct || afterSpace || afterPunct)

	if ch == '_' {
		canOpen = leftFlanking && (!rightFlanking || beforePunct)
		canClose = rightFlanking && (!leftFlanking || afterPunct)
		return
	}
	return leftFlanking, rightFlanking
}

func isUnicodeSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

func isPunct(b byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", b) >= 0
}
