package jsonw

import (
	"encoding/json"
	"strconv"

	"github.com/quarto-dev/q2-sub015/ast"
)

// apiVersion is the fixed Pandoc API version this writer targets (spec.md
// §6.2: "array of three integers, fixed").
var apiVersion = [3]int{1, 23, 1}

// node is the generic `{"t": tag, "c": content}` Pandoc JSON node shape,
// with an additional srcInfo key this module attaches for every node that
// carries source provenance (spec.md §4.8.2's "$ref" scheme).
type node struct {
	T       string         `json:"t"`
	C       any            `json:"c,omitempty"`
	SrcInfo map[string]int `json:"srcInfo,omitempty"`
}

// pandocDoc is the top-level JSON object (spec.md §6.2's key order:
// pandoc-api-version, meta, blocks, astContext).
type pandocDoc struct {
	APIVersion [3]int     `json:"pandoc-api-version"`
	Meta       any        `json:"meta"`
	Blocks     []node     `json:"blocks"`
	AstContext astContext `json:"astContext"`
}

// Write serializes doc as Pandoc JSON augmented with the astContext object.
func Write(doc *ast.Document) ([]byte, error) {
	pd := pandocDoc{
		APIVersion: apiVersion,
		Meta:       encodeMeta(doc.Metadata.Root),
		Blocks:     encodeBlocks(doc.Blocks),
	}
	if doc.SourceMap != nil {
		pd.AstContext = buildAstContext(doc.SourceMap)
	}
	return json.Marshal(pd)
}

func encodeAttr(a ast.Attr) []any {
	classes := a.Classes
	if classes == nil {
		classes = []string{}
	}
	kvs := make([][2]string, 0, len(a.KVs))
	for _, kv := range a.KVs {
		kvs = append(kvs, [2]string{kv.Key, kv.Value})
	}
	return []any{a.ID, classes, kvs}
}

func encodeTarget(t ast.Target) []string {
	return []string{t.URL, t.Title}
}

func encodeBlocks(bs []ast.Block) []node {
	out := make([]node, 0, len(bs))
	for _, b := range bs {
		out = append(out, encodeBlock(b))
	}
	return out
}

func encodeItemLists(items [][]ast.Block) [][]node {
	out := make([][]node, len(items))
	for i, it := range items {
		out[i] = encodeBlocks(it)
	}
	return out
}

func encodeBlock(b ast.Block) node {
	n := node{SrcInfo: ref(b.Source())}
	switch v := b.(type) {
	case *ast.Paragraph:
		n.T, n.C = "Para", encodeInlines(v.Inlines)
	case *ast.Plain:
		n.T, n.C = "Plain", encodeInlines(v.Inlines)
	case *ast.Heading:
		n.T, n.C = "Header", []any{v.Level, encodeAttr(v.Attr), encodeInlines(v.Inlines)}
	case *ast.CodeBlock:
		n.T, n.C = "CodeBlock", []any{encodeAttr(v.Attr), v.Text}
	case *ast.RawBlock:
		n.T, n.C = "RawBlock", []any{v.Format, v.Text}
	case *ast.BlockQuote:
		n.T, n.C = "BlockQuote", encodeBlocks(v.Blocks)
	case *ast.BulletList:
		n.T, n.C = "BulletList", encodeItemLists(v.Items)
	case *ast.OrderedList:
		n.T, n.C = "OrderedList", []any{
			[]any{v.Start, styleTag(v.Style), delimTag(v.Delim)},
			encodeItemLists(v.Items),
		}
	case *ast.DefinitionList:
		pairs := make([]any, len(v.Items))
		for i, p := range v.Items {
			pairs[i] = []any{encodeInlines(p.Term), encodeItemLists(p.Definitions)}
		}
		n.T, n.C = "DefinitionList", pairs
	case *ast.LineBlock:
		lines := make([][]node, len(v.Lines))
		for i, l := range v.Lines {
			lines[i] = encodeInlines(l)
		}
		n.T, n.C = "LineBlock", lines
	case *ast.HorizontalRule:
		n.T = "HorizontalRule"
	case *ast.Table:
		n.T, n.C = "Table", encodeTable(v)
	case *ast.Figure:
		n.T, n.C = "Figure", []any{encodeAttr(v.Attr), encodeInlines(v.Caption), encodeBlocks(v.Blocks)}
	case *ast.Div:
		n.T, n.C = "Div", []any{encodeAttr(v.Attr), encodeBlocks(v.Blocks)}
	case *ast.FencedDiv:
		n.T, n.C = "Div", []any{encodeAttr(v.Attr), encodeBlocks(v.Blocks)}
	case *ast.NoteDefinition:
		n.T, n.C = "NoteDefinition", []any{v.ID, encodeBlocks(v.Blocks)}
	case *ast.HTMLCommentBlock:
		n.T, n.C = "RawBlock", []any{"html", "<!--" + v.Text + "-->"}
	default:
		n.T = "Null"
	}
	return n
}

func styleTag(s ast.NumberStyle) node {
	switch s {
	case ast.Decimal:
		return node{T: "Decimal"}
	case ast.LowerRoman:
		return node{T: "LowerRoman"}
	case ast.UpperRoman:
		return node{T: "UpperRoman"}
	case ast.LowerAlpha:
		return node{T: "LowerAlpha"}
	case ast.UpperAlpha:
		return node{T: "UpperAlpha"}
	default:
		return node{T: "DefaultStyle"}
	}
}

func delimTag(d ast.DelimStyle) node {
	switch d {
	case ast.Period:
		return node{T: "Period"}
	case ast.OneParen:
		return node{T: "OneParen"}
	case ast.TwoParens:
		return node{T: "TwoParens"}
	default:
		return node{T: "DefaultDelim"}
	}
}

func alignTag(a ast.Alignment) node {
	switch a {
	case ast.AlignLeft:
		return node{T: "AlignLeft"}
	case ast.AlignRight:
		return node{T: "AlignRight"}
	case ast.AlignCenter:
		return node{T: "AlignCenter"}
	default:
		return node{T: "AlignDefault"}
	}
}

func encodeTable(t *ast.Table) any {
	colspecs := make([][2]any, len(t.Colspec))
	for i, c := range t.Colspec {
		width := any(node{T: "ColWidthDefault"})
		if c.Width > 0 {
			width = []any{"ColWidth", c.Width}
		}
		colspecs[i] = [2]any{alignTag(c.Align), width}
	}
	encodeRow := func(r ast.TableRow) []any {
		cells := make([]any, len(r.Cells))
		for i, cell := range r.Cells {
			cells[i] = []any{encodeAttr(cell.Attr), encodeBlocks(cell.Blocks)}
		}
		return cells
	}
	bodies := make([]any, len(t.Bodies))
	for i, body := range t.Bodies {
		rows := make([]any, len(body.Rows))
		for j, r := range body.Rows {
			rows[j] = encodeRow(r)
		}
		bodies[i] = []any{encodeAttr(ast.Attr{}), 0, []any{}, rows}
	}
	var foot []any
	if t.Foot != nil {
		foot = encodeRow(*t.Foot)
	}
	return []any{
		encodeAttr(ast.Attr{}),
		[]any{nil, encodeInlines(t.Caption)},
		colspecs,
		[]any{encodeAttr(ast.Attr{}), encodeRow(t.Head)},
		bodies,
		[]any{encodeAttr(ast.Attr{}), foot},
	}
}

func encodeInlines(xs []ast.Inline) []node {
	out := make([]node, 0, len(xs))
	for _, in := range xs {
		out = append(out, encodeInline(in))
	}
	return out
}

func encodeInline(in ast.Inline) node {
	n := node{SrcInfo: ref(in.Source())}
	switch v := in.(type) {
	case *ast.Str:
		n.T, n.C = "Str", v.Text
	case *ast.Space:
		n.T = "Space"
	case *ast.SoftBreak:
		n.T = "SoftBreak"
	case *ast.LineBreak:
		n.T = "LineBreak"
	case *ast.Emph:
		n.T, n.C = "Emph", encodeInlines(v.Inlines)
	case *ast.Strong:
		n.T, n.C = "Strong", encodeInlines(v.Inlines)
	case *ast.Strikeout:
		n.T, n.C = "Strikeout", encodeInlines(v.Inlines)
	case *ast.Superscript:
		n.T, n.C = "Superscript", encodeInlines(v.Inlines)
	case *ast.Subscript:
		n.T, n.C = "Subscript", encodeInlines(v.Inlines)
	case *ast.SmallCaps:
		n.T, n.C = "SmallCaps", encodeInlines(v.Inlines)
	case *ast.Underline:
		n.T, n.C = "Underline", encodeInlines(v.Inlines)
	case *ast.Quoted:
		tag := "SingleQuote"
		if v.Style == ast.DoubleQuote {
			tag = "DoubleQuote"
		}
		n.T, n.C = "Quoted", []any{node{T: tag}, encodeInlines(v.Inlines)}
	case *ast.Code:
		n.T, n.C = "Code", []any{encodeAttr(v.Attr), v.Text}
	case *ast.Math:
		tag := "InlineMath"
		if v.Mode == ast.DisplayMath {
			tag = "DisplayMath"
		}
		n.T, n.C = "Math", []any{node{T: tag}, v.Text}
	case *ast.RawInline:
		if v.IsHTMLComment {
			n.T, n.C = "RawInline", []any{"html", "<!--" + v.Text + "-->"}
		} else {
			n.T, n.C = "RawInline", []any{v.Format, v.Text}
		}
	case *ast.Link:
		n.T, n.C = "Link", []any{encodeAttr(v.Attr), encodeInlines(v.Inlines), encodeTarget(v.Target)}
	case *ast.Image:
		n.T, n.C = "Image", []any{encodeAttr(v.Attr), encodeInlines(v.Inlines), encodeTarget(v.Target)}
	case *ast.Note:
		n.T, n.C = "Note", encodeBlocks(v.Blocks)
	case *ast.NoteReference:
		n.T, n.C = "NoteReference", v.ID
	case *ast.Citation:
		n.T, n.C = "Cite", encodeCitationItems(v.Items)
	case *ast.Span:
		n.T, n.C = "Span", []any{encodeAttr(v.Attr), encodeInlines(v.Inlines)}
	case *ast.Shortcode:
		n.T, n.C = "Shortcode", []any{v.Name, encodeShortcodeArgs(v.Args)}
	case *ast.Highlight:
		n.T, n.C = "Span", []any{encodeAttr(ast.Attr{Classes: []string{"mark"}}), encodeInlines(v.Inlines)}
	case *ast.Insert:
		n.T, n.C = "Span", []any{encodeAttr(ast.Attr{Classes: []string{"critic-insert"}}), encodeInlines(v.Inlines)}
	case *ast.Delete:
		n.T, n.C = "Span", []any{encodeAttr(ast.Attr{Classes: []string{"critic-delete"}}), encodeInlines(v.Inlines)}
	case *ast.EditComment:
		n.T, n.C = "Span", []any{encodeAttr(ast.Attr{Classes: []string{"critic-comment"}}), encodeInlines(v.Inlines)}
	default:
		n.T = "Null"
	}
	return n
}

func encodeShortcodeArgs(args []ast.ShortcodeArg) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = []string{a.Name, a.Value}
	}
	return out
}

func encodeCitationItems(items []ast.CitationItem) []any {
	out := make([]any, len(items))
	for i, it := range items {
		mode := "NormalCitation"
		switch it.Mode {
		case ast.AuthorInText:
			mode = "AuthorInText"
		case ast.SuppressAuthor:
			mode = "SuppressAuthor"
		}
		out[i] = map[string]any{
			"citationId":     it.Key,
			"citationMode":   node{T: mode},
			"citationPrefix": encodeInlines(it.Prefix),
			"citationSuffix": encodeInlines(it.Suffix),
		}
	}
	return out
}

func encodeMeta(cv *ast.ConfigValue) any {
	if cv == nil {
		return map[string]any{}
	}
	switch cv.Kind {
	case ast.ConfigMapping:
		m := make(map[string]any, len(cv.Mapping))
		for _, e := range cv.Mapping {
			m[e.Key] = encodeMetaValue(e.Value)
		}
		return m
	default:
		return map[string]any{}
	}
}

func encodeMetaValue(cv *ast.ConfigValue) node {
	if cv == nil {
		return node{T: "MetaString"}
	}
	switch cv.Kind {
	case ast.ConfigMapping:
		m := make(map[string]node, len(cv.Mapping))
		for _, e := range cv.Mapping {
			m[e.Key] = encodeMetaValue(e.Value)
		}
		return node{T: "MetaMap", C: m}
	case ast.ConfigSequence:
		items := make([]node, len(cv.Sequence))
		for i, e := range cv.Sequence {
			items[i] = encodeMetaValue(e)
		}
		return node{T: "MetaList", C: items}
	default:
		switch cv.ScalarKind {
		case ast.ScalarBool:
			return node{T: "MetaBool", C: cv.Bool}
		case ast.ScalarNull:
			return node{T: "MetaString", C: ""}
		case ast.ScalarNumber:
			return node{T: "MetaString", C: strconv.FormatFloat(cv.Num, 'g', -1, 64)}
		default:
			return node{T: "MetaString", C: cv.Str}
		}
	}
}
