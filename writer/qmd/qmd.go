// Package qmd implements the incremental QMD writer (spec.md §4.8.3): given
// a (possibly edited) AST and the original source bytes it was derived
// from, it reproduces unchanged blocks verbatim from the original and only
// serializes from the AST the blocks that actually changed, so a small edit
// to a large document produces a minimal textual diff rather than a full
// re-render.
//
// The per-block decision and the from-scratch Markdown serializer it falls
// back to are both hand-written in the teacher's append-only
// strings.Builder idiom (parser.go's extractFootnoteMarkdown), since the
// teacher's own Markdown rendering is delegated entirely to
// github.com/teekennedy/goldmark-markdown -- an intentionally dropped
// dependency (see DESIGN.md) this writer must not reuse.
package qmd

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	goyaml "github.com/goccy/go-yaml"

	"github.com/quarto-dev/q2-sub015/ast"
	"github.com/quarto-dev/q2-sub015/sourcemap"
)

// Decision is the per-block reconciliation outcome spec.md §4.8.3 names.
type Decision int

const (
	UseAfter Decision = iota
	KeepBefore
	Rewrite
)

// classify decides how a block should be emitted. A block is KeepBefore
// only when its own SourceInfo is still a plain, untouched span of
// original: no separate "old AST" is available to diff against (Write
// takes a single AST), so a node's own provenance stands in for the
// comparison. ASTBuilder attaches every node a Substring of the document's
// single Original fileRoot node (sourcemap.Map.Offset always produces
// Substring, even for a single untransformed byte range -- see
// astbuild.Builder.rangeSrc), and a multi-line paragraph a Concat of its
// line segments whose Range spans the paragraph's original bytes (see
// astbuild.Builder.concatSegments); a still-Original, Substring or Concat
// span therefore means nothing upstream mutated this block's shape. A
// Transformed (escape/typography normalization) span, a Synthetic span, or
// no SourceInfo at all, mean some pass (or a hand-authored tree, as in a
// test) produced or altered this block, so it must be (re)serialized from
// the AST.
func classify(b ast.Block, original []byte) (d Decision, start, end int) {
	if original == nil {
		return UseAfter, 0, 0
	}
	src := b.Source()
	if src == nil {
		return UseAfter, 0, 0
	}
	if src.Synthetic || (src.Kind != sourcemap.Original && src.Kind != sourcemap.Substring && src.Kind != sourcemap.Concat) {
		return Rewrite, 0, 0
	}
	start, end = src.Range.Start.Offset, src.Range.End.Offset
	if start < 0 || end < start || end > len(original) {
		return Rewrite, 0, 0
	}
	return KeepBefore, start, end
}

// Write serializes doc as QMD text. original is the source bytes doc was
// built from; pass nil to always serialize from scratch (spec.md §4.8.3:
// "if absent, the writer emits from scratch and never uses verbatim
// copy").
func Write(doc *ast.Document, original []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := writePrefix(&buf, doc, original); err != nil {
		return nil, err
	}

	prevEnd := -1
	for i, b := range doc.Blocks {
		decision, start, end := classify(b, original)
		switch decision {
		case KeepBefore:
			if prevEnd >= 0 {
				buf.Write(original[prevEnd:start])
			} else if i > 0 {
				buf.WriteString("\n")
			}
			buf.Write(original[start:end])
			prevEnd = end
		default:
			if i > 0 {
				buf.WriteString("\n")
			}
			s, err := renderBlock(b, 0)
			if err != nil {
				return nil, err
			}
			buf.WriteString(s)
			prevEnd = -1
		}
	}
	if prevEnd >= 0 {
		buf.Write(original[prevEnd:])
	}
	return buf.Bytes(), nil
}

// writePrefix emits the YAML front matter plus the blank line that follows
// it (spec.md §4.8.3 item 3). When the metadata's own SourceInfo is still
// an untouched Original span, the original bytes up to the first block are
// copied verbatim (preserving comments or formatting inside the YAML this
// module's own ConfigValue model does not retain); otherwise the front
// matter is regenerated from the ConfigValue tree.
func writePrefix(buf *bytes.Buffer, doc *ast.Document, original []byte) error {
	root := doc.Metadata.Root
	if root == nil {
		return nil
	}
	clean := root.SrcInfo != nil && !root.SrcInfo.Synthetic &&
		(root.SrcInfo.Kind == sourcemap.Original || root.SrcInfo.Kind == sourcemap.Substring)
	if original != nil && clean {
		firstBlockStart := len(original)
		if len(doc.Blocks) > 0 {
			if src := doc.Blocks[0].Source(); src != nil {
				firstBlockStart = src.Range.Start.Offset
			}
		}
		if firstBlockStart >= 0 && firstBlockStart <= len(original) {
			buf.Write(original[:firstBlockStart])
			return nil
		}
	}
	y, err := configValueToYAML(root)
	if err != nil {
		return err
	}
	out, err := goyaml.Marshal(y)
	if err != nil {
		return err
	}
	buf.WriteString("---\n")
	buf.Write(out)
	buf.WriteString("---\n\n")
	return nil
}

func configValueToYAML(cv *ast.ConfigValue) (any, error) {
	if cv == nil {
		return nil, nil
	}
	switch cv.Kind {
	case ast.ConfigMapping:
		items := make(goyaml.MapSlice, 0, len(cv.Mapping))
		for _, e := range cv.Mapping {
			v, err := configValueToYAML(e.Value)
			if err != nil {
				return nil, err
			}
			items = append(items, goyaml.MapItem{Key: e.Key, Value: v})
		}
		return items, nil
	case ast.ConfigSequence:
		out := make([]any, len(cv.Sequence))
		for i, e := range cv.Sequence {
			v, err := configValueToYAML(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		switch cv.ScalarKind {
		case ast.ScalarBool:
			return cv.Bool, nil
		case ast.ScalarNumber:
			return cv.Num, nil
		case ast.ScalarNull:
			return nil, nil
		default:
			return cv.Str, nil
		}
	}
}

// prefixLines joins the (possibly multi-block, multi-line) rendering of a
// list item / definition / footnote body onto a single marker line: marker
// goes before the first line, cont (used as given, not padded) before
// every non-empty line after it, matching how Pandoc's own Markdown writer
// aligns continuation lines under a "- "/"1. "/"[^id]: " marker.
func prefixLines(body, marker, cont string) string {
	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	var out strings.Builder
	for i, l := range lines {
		if i == 0 {
			out.WriteString(marker + l + "\n")
			continue
		}
		if l == "" {
			out.WriteString("\n")
			continue
		}
		out.WriteString(cont + l + "\n")
	}
	return out.String()
}

func renderBlocks(bs []ast.Block) (string, error) {
	var parts []string
	for _, b := range bs {
		s, err := renderBlock(b, 0)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n"), nil
}

func renderBlock(b ast.Block, depth int) (string, error) {
	switch v := b.(type) {
	case *ast.Paragraph:
		s, err := renderInlines(v.Inlines)
		return s + "\n", err
	case *ast.Plain:
		s, err := renderInlines(v.Inlines)
		return s + "\n", err
	case *ast.Heading:
		s, err := renderInlines(v.Inlines)
		if err != nil {
			return "", err
		}
		return strings.Repeat("#", v.Level) + " " + s + attrSuffix(v.Attr) + "\n", nil
	case *ast.CodeBlock:
		fence := "```"
		return fence + attrSuffix(v.Attr) + "\n" + v.Text + fence + "\n", nil
	case *ast.RawBlock:
		return v.Text, nil
	case *ast.HTMLCommentBlock:
		return "<!--" + v.Text + "-->\n", nil
	case *ast.BlockQuote:
		body, err := renderBlocks(v.Blocks)
		if err != nil {
			return "", err
		}
		return quoteLines(body), nil
	case *ast.BulletList:
		return renderItems(v.Items, func(int) string { return "- " })
	case *ast.OrderedList:
		start := v.Start
		return renderItems(v.Items, func(i int) string { return strconv.Itoa(start+i) + ". " })
	case *ast.DefinitionList:
		var out strings.Builder
		for _, p := range v.Items {
			term, err := renderInlines(p.Term)
			if err != nil {
				return "", err
			}
			out.WriteString(term + "\n")
			for _, def := range p.Definitions {
				body, err := renderBlocks(def)
				if err != nil {
					return "", err
				}
				out.WriteString(prefixLines(body, ": ", "  "))
			}
		}
		return out.String(), nil
	case *ast.LineBlock:
		var out strings.Builder
		for _, l := range v.Lines {
			s, err := renderInlines(l)
			if err != nil {
				return "", err
			}
			out.WriteString("| " + s + "\n")
		}
		return out.String(), nil
	case *ast.HorizontalRule:
		return "---\n", nil
	case *ast.Table:
		return renderTable(v)
	case *ast.Figure:
		cap, err := renderInlines(v.Caption)
		if err != nil {
			return "", err
		}
		body, err := renderBlocks(v.Blocks)
		if err != nil {
			return "", err
		}
		return body + "\n" + cap + "\n", nil
	case *ast.Div:
		body, err := renderBlocks(v.Blocks)
		if err != nil {
			return "", err
		}
		return ":::{" + attrBody(v.Attr) + "}\n" + body + ":::\n", nil
	case *ast.FencedDiv:
		body, err := renderBlocks(v.Blocks)
		if err != nil {
			return "", err
		}
		noteTag := ""
		if v.NoteID != "" {
			noteTag = " ^" + v.NoteID
		}
		return ":::{" + attrBody(v.Attr) + noteTag + "}\n" + body + ":::\n", nil
	case *ast.NoteDefinition:
		body, err := renderBlocks(v.Blocks)
		if err != nil {
			return "", err
		}
		return prefixLines(body, "[^"+v.ID+"]: ", "    "), nil
	default:
		return "", fmt.Errorf("qmd writer: unsupported block %T", b)
	}
}

func renderItems(items [][]ast.Block, marker func(int) string) (string, error) {
	var out strings.Builder
	for i, it := range items {
		body, err := renderBlocks(it)
		if err != nil {
			return "", err
		}
		m := marker(i)
		out.WriteString(prefixLines(body, m, strings.Repeat(" ", len(m))))
	}
	return out.String(), nil
}

func quoteLines(body string) string {
	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + l
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func renderTable(t *ast.Table) (string, error) {
	var out strings.Builder
	renderRow := func(r ast.TableRow) (string, error) {
		cells := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			s, err := renderBlocks(c.Blocks)
			if err != nil {
				return "", err
			}
			cells[i] = strings.ReplaceAll(strings.TrimSuffix(s, "\n"), "\n", " ")
		}
		return "| " + strings.Join(cells, " | ") + " |\n", nil
	}
	head, err := renderRow(t.Head)
	if err != nil {
		return "", err
	}
	out.WriteString(head)
	seps := make([]string, len(t.Colspec))
	for i, c := range t.Colspec {
		switch c.Align {
		case ast.AlignLeft:
			seps[i] = ":---"
		case ast.AlignRight:
			seps[i] = "---:"
		case ast.AlignCenter:
			seps[i] = ":--:"
		default:
			seps[i] = "---"
		}
	}
	out.WriteString("| " + strings.Join(seps, " | ") + " |\n")
	for _, body := range t.Bodies {
		for _, r := range body.Rows {
			rs, err := renderRow(r)
			if err != nil {
				return "", err
			}
			out.WriteString(rs)
		}
	}
	if t.Foot != nil {
		fr, err := renderRow(*t.Foot)
		if err != nil {
			return "", err
		}
		out.WriteString(fr)
	}
	if len(t.Caption) > 0 {
		cap, err := renderInlines(t.Caption)
		if err != nil {
			return "", err
		}
		out.WriteString("\n: " + cap + "\n")
	}
	return out.String(), nil
}

func attrBody(a ast.Attr) string {
	var parts []string
	if a.ID != "" {
		parts = append(parts, "#"+a.ID)
	}
	for _, c := range a.Classes {
		parts = append(parts, "."+c)
	}
	for _, kv := range a.KVs {
		parts = append(parts, kv.Key+`="`+kv.Value+`"`)
	}
	return strings.Join(parts, " ")
}

func attrSuffix(a ast.Attr) string {
	if a.IsEmpty() {
		return ""
	}
	return " {" + attrBody(a) + "}"
}

func mdEscape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`, `*`, `\*`, `_`, `\_`, "`", "\\`",
		`[`, `\[`, `]`, `\]`,
	)
	return r.Replace(s)
}

func renderInlines(xs []ast.Inline) (string, error) {
	var out strings.Builder
	for _, in := range xs {
		s, err := renderInline(in)
		if err != nil {
			return "", err
		}
		out.WriteString(s)
	}
	return out.String(), nil
}

func renderInline(in ast.Inline) (string, error) {
	switch v := in.(type) {
	case *ast.Str:
		return mdEscape(v.Text), nil
	case *ast.Space:
		return " ", nil
	case *ast.SoftBreak:
		return "\n", nil
	case *ast.LineBreak:
		return "\\\n", nil
	case *ast.Emph:
		s, err := renderInlines(v.Inlines)
		return "*" + s + "*", err
	case *ast.Strong:
		s, err := renderInlines(v.Inlines)
		return "**" + s + "**", err
	case *ast.Strikeout:
		s, err := renderInlines(v.Inlines)
		return "~~" + s + "~~", err
	case *ast.Superscript:
		s, err := renderInlines(v.Inlines)
		return "^" + s + "^", err
	case *ast.Subscript:
		s, err := renderInlines(v.Inlines)
		return "~" + s + "~", err
	case *ast.SmallCaps:
		s, err := renderInlines(v.Inlines)
		return "[" + s + "]{.smallcaps}", err
	case *ast.Underline:
		s, err := renderInlines(v.Inlines)
		return "[" + s + "]{.underline}", err
	case *ast.Quoted:
		s, err := renderInlines(v.Inlines)
		if err != nil {
			return "", err
		}
		if v.Style == ast.DoubleQuote {
			return `"` + s + `"`, nil
		}
		return "'" + s + "'", nil
	case *ast.Code:
		return "`" + v.Text + "`" + attrSuffix(v.Attr), nil
	case *ast.Math:
		if v.Mode == ast.DisplayMath {
			return "$$" + v.Text + "$$", nil
		}
		return "$" + v.Text + "$", nil
	case *ast.RawInline:
		if v.IsHTMLComment {
			return "<!--" + v.Text + "-->", nil
		}
		return v.Text, nil
	case *ast.Link:
		s, err := renderInlines(v.Inlines)
		if err != nil {
			return "", err
		}
		return "[" + s + "](" + v.Target.URL + linkTitle(v.Target.Title) + ")" + attrSuffix(v.Attr), nil
	case *ast.Image:
		s, err := renderInlines(v.Inlines)
		if err != nil {
			return "", err
		}
		return "![" + s + "](" + v.Target.URL + linkTitle(v.Target.Title) + ")" + attrSuffix(v.Attr), nil
	case *ast.Note:
		body, err := renderBlocks(v.Blocks)
		if err != nil {
			return "", err
		}
		return "^[" + strings.TrimSuffix(body, "\n") + "]", nil
	case *ast.NoteReference:
		return "[^" + v.ID + "]", nil
	case *ast.Citation:
		return renderCitation(v)
	case *ast.Span:
		s, err := renderInlines(v.Inlines)
		return "[" + s + "]" + attrSuffix(v.Attr), err
	case *ast.Shortcode:
		return renderShortcode(v), nil
	case *ast.Highlight:
		s, err := renderInlines(v.Inlines)
		return "[" + s + "]{.mark}", err
	case *ast.Insert:
		s, err := renderInlines(v.Inlines)
		return "{++" + s + "++}", err
	case *ast.Delete:
		s, err := renderInlines(v.Inlines)
		return "{--" + s + "--}", err
	case *ast.EditComment:
		s, err := renderInlines(v.Inlines)
		return "{>>" + s + "<<}", err
	default:
		return "", fmt.Errorf("qmd writer: unsupported inline %T", in)
	}
}

func linkTitle(title string) string {
	if title == "" {
		return ""
	}
	return ` "` + title + `"`
}

// renderCitation round-trips the bracket-group citation syntax
// (`[@key]`/`[-@key; @key2]`) this module parses (spec.md §4.4). A lone
// AuthorInText item renders unbracketed (`@key`), its point-of-use shorthand
// form; anything else (SuppressAuthor, multi-item groups, or a prefix/
// suffix) always needs the enclosing brackets.
func renderCitation(c *ast.Citation) (string, error) {
	if len(c.Items) == 1 && c.Items[0].Mode == ast.AuthorInText &&
		len(c.Items[0].Prefix) == 0 && len(c.Items[0].Suffix) == 0 {
		return "@" + c.Items[0].Key, nil
	}
	parts := make([]string, len(c.Items))
	for i, it := range c.Items {
		key := "@" + it.Key
		if it.Mode == ast.SuppressAuthor {
			key = "-" + key
		}
		prefix, err := renderInlines(it.Prefix)
		if err != nil {
			return "", err
		}
		suffix, err := renderInlines(it.Suffix)
		if err != nil {
			return "", err
		}
		parts[i] = strings.TrimSpace(prefix + " " + key + " " + suffix)
	}
	return "[" + strings.Join(parts, "; ") + "]", nil
}

func renderShortcode(v *ast.Shortcode) string {
	var parts []string
	parts = append(parts, v.Name)
	for _, a := range v.Args {
		if a.Name == "" {
			parts = append(parts, a.Value)
		} else {
			parts = append(parts, a.Name+"="+a.Value)
		}
	}
	return "{{< " + strings.Join(parts, " ") + " >}}"
}
