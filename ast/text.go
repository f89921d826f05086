package ast

import "strings"

// PlainText concatenates the literal text content of an inline sequence,
// descending into formatting wrappers but rendering Space/SoftBreak as a
// single space and skipping non-textual inlines (Code/Math text is
// included verbatim since it is still "text" for this purpose; raw HTML
// and shortcodes are not). Mirrors the teacher's extractTextFromNode.
func PlainText(inlines []Inline) string {
	var b strings.Builder
	var walk func([]Inline)
	walk = func(xs []Inline) {
		for _, in := range xs {
			switch n := in.(type) {
			case *Str:
				b.WriteString(n.Text)
			case *Space, *SoftBreak:
				b.WriteByte(' ')
			case *LineBreak:
				b.WriteByte('\n')
			case *Code:
				b.WriteString(n.Text)
			case *Math:
				b.WriteString(n.Text)
			case *Emph:
				walk(n.Inlines)
			case *Strong:
				walk(n.Inlines)
			case *Strikeout:
				walk(n.Inlines)
			case *Superscript:
				walk(n.Inlines)
			case *Subscript:
				walk(n.Inlines)
			case *SmallCaps:
				walk(n.Inlines)
			case *Underline:
				walk(n.Inlines)
			case *Quoted:
				walk(n.Inlines)
			case *Link:
				walk(n.Inlines)
			case *Image:
				walk(n.Inlines)
			case *Span:
				walk(n.Inlines)
			case *Highlight:
				walk(n.Inlines)
			case *Insert:
				walk(n.Inlines)
			case *Delete:
				walk(n.Inlines)
			case *EditComment:
				walk(n.Inlines)
			}
		}
	}
	walk(inlines)
	return strings.TrimSpace(b.String())
}

// PlainTextBlocks concatenates PlainText across a block sequence, used to
// render definition-list terms or figure captions down to a flat string
// where a writer needs one (e.g. generating heading slugs).
func PlainTextBlocks(blocks []Block) string {
	var parts []string
	for _, blk := range blocks {
		switch b := blk.(type) {
		case *Paragraph:
			parts = append(parts, PlainText(b.Inlines))
		case *Plain:
			parts = append(parts, PlainText(b.Inlines))
		case *Heading:
			parts = append(parts, PlainText(b.Inlines))
		}
	}
	return strings.Join(parts, " ")
}

// Slugify produces a GitHub/Pandoc-compatible heading anchor: lowercase,
// non-alphanumeric runs collapsed to a single hyphen, leading/trailing
// hyphens trimmed. Grounded on catmd's reliance on goldmark's
// WithAutoHeadingID for the same purpose; reimplemented here in the
// teacher's spirit since we no longer delegate parsing to goldmark.
func Slugify(text string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(text) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case r == '_' || r == '-':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
