package astbuild

import (
	"github.com/quarto-dev/q2-sub015/ast"
	"github.com/quarto-dev/q2-sub015/inlinescan"
	"github.com/quarto-dev/q2-sub015/sourcemap"
)

// convertInlines converts a whole inlinescan forest produced by scanning
// segText into []ast.Inline. segSrc is the provenance handle for segText as
// a whole (a Substring for a one-segment block, a Concat for a multi-line
// one); every node's own SourceInfo is a further Offset of segSrc, so the
// chain resolves back to real file bytes regardless of how many segments
// were concatenated to produce segText.
func (b *Builder) convertInlines(nodes []*inlinescan.Node, segText []byte, segSrc *sourcemap.SourceInfo) []ast.Inline {
	out := make([]ast.Inline, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, b.convertInline(n, segText, segSrc))
	}
	return out
}

func (b *Builder) segSrcRange(segSrc *sourcemap.SourceInfo, start, end int) *sourcemap.SourceInfo {
	return b.smap.Offset(segSrc, start, end-start)
}

func (b *Builder) convertInline(n *inlinescan.Node, segText []byte, segSrc *sourcemap.SourceInfo) ast.Inline {
	src := b.segSrcRange(segSrc, n.Start, n.End)
	children := func() []ast.Inline { return b.convertInlines(n.Children, segText, segSrc) }

	switch n.Kind {
	case inlinescan.NodeText:
		v := &ast.Str{Text: n.Text}
		v.SrcInfo = src
		return v
	case inlinescan.NodeSpace:
		v := &ast.Space{}
		v.SrcInfo = src
		return v
	case inlinescan.NodeSoftBreak:
		v := &ast.SoftBreak{}
		v.SrcInfo = src
		return v
	case inlinescan.NodeLineBreak:
		v := &ast.LineBreak{}
		v.SrcInfo = src
		return v
	case inlinescan.NodeEmph:
		v := &ast.Emph{Inlines: children()}
		v.SrcInfo = src
		return v
	case inlinescan.NodeStrong:
		v := &ast.Strong{Inlines: children()}
		v.SrcInfo = src
		return v
	case inlinescan.NodeStrikeout:
		v := &ast.Strikeout{Inlines: children()}
		v.SrcInfo = src
		return v
	case inlinescan.NodeSuperscript:
		v := &ast.Superscript{Inlines: children()}
		v.SrcInfo = src
		return v
	case inlinescan.NodeSubscript:
		v := &ast.Subscript{Inlines: children()}
		v.SrcInfo = src
		return v
	case inlinescan.NodeSmallCaps:
		v := &ast.SmallCaps{Inlines: children()}
		v.SrcInfo = src
		return v
	case inlinescan.NodeUnderline:
		v := &ast.Underline{Inlines: children()}
		v.SrcInfo = src
		return v
	case inlinescan.NodeQuoted:
		style := ast.SingleQuote
		if n.DoubleQuote {
			style = ast.DoubleQuote
		}
		v := &ast.Quoted{Style: style, Inlines: children()}
		v.SrcInfo = src
		return v
	case inlinescan.NodeCode:
		v := &ast.Code{Text: n.Text}
		v.SrcInfo = src
		return v
	case inlinescan.NodeMath:
		mode := ast.InlineMath
		if n.MathDisplay {
			mode = ast.DisplayMath
		}
		v := &ast.Math{Mode: mode, Text: n.Text}
		v.SrcInfo = src
		return v
	case inlinescan.NodeRawInline:
		v := &ast.RawInline{Format: "html", Text: n.Text}
		v.SrcInfo = src
		return v
	case inlinescan.NodeHTMLComment:
		v := &ast.RawInline{Format: "html", Text: n.Text, IsHTMLComment: true}
		v.SrcInfo = src
		return v
	case inlinescan.NodeAutolink:
		str := &ast.Str{Text: n.URL}
		str.SrcInfo = src
		v := &ast.Link{Inlines: []ast.Inline{str}, Target: ast.Target{URL: n.URL}}
		v.SrcInfo = src
		return v
	case inlinescan.NodeLink:
		v := &ast.Link{Inlines: children(), Target: ast.Target{URL: n.URL, Title: n.Title}, RefLabel: n.RefLabel}
		v.SrcInfo = src
		return v
	case inlinescan.NodeImage:
		v := &ast.Image{Inlines: children(), Target: ast.Target{URL: n.URL, Title: n.Title}, RefLabel: n.RefLabel}
		v.SrcInfo = src
		return v
	case inlinescan.NodeFootnoteRef:
		v := &ast.NoteReference{ID: n.ID}
		v.SrcInfo = src
		return v
	case inlinescan.NodeCitation:
		v := &ast.Citation{Items: b.convertCitationItems(n.Citations, segText, segSrc)}
		v.SrcInfo = src
		return v
	case inlinescan.NodeSpan:
		return b.convertSpan(n, src, children())
	case inlinescan.NodeShortcode:
		v := &ast.Shortcode{Name: n.ShortcodeName, Args: convertShortcodeArgs(n.ShortcodeArgs)}
		v.SrcInfo = src
		return v
	}
	v := &ast.Str{Text: n.Text}
	v.SrcInfo = src
	return v
}

func convertShortcodeArgs(args []inlinescan.ShortcodeArg) []ast.ShortcodeArg {
	out := make([]ast.ShortcodeArg, len(args))
	for i, a := range args {
		out[i] = ast.ShortcodeArg{Name: a.Name, Value: a.Value}
	}
	return out
}

// convertSpan recognizes the handful of bracketed-span classes Pandoc
// treats as dedicated inline variants rather than a generic Span (spec.md
// §4.4's Span desugaring); anything else stays a Span carrying its
// attributes verbatim.
func (b *Builder) convertSpan(n *inlinescan.Node, src *sourcemap.SourceInfo, inlines []ast.Inline) ast.Inline {
	raw := ""
	if n.Attr != nil {
		raw = n.Attr.Raw
	}
	attr := parseAttr(raw, b.diags)
	switch {
	case hasClass(attr, "smallcaps"):
		v := &ast.SmallCaps{Inlines: inlines}
		v.SrcInfo = src
		return v
	case hasClass(attr, "underline"):
		v := &ast.Underline{Inlines: inlines}
		v.SrcInfo = src
		return v
	case hasClass(attr, "mark") || hasClass(attr, "highlight"):
		v := &ast.Highlight{Inlines: inlines}
		v.SrcInfo = src
		return v
	}
	v := &ast.Span{Attr: attr, Inlines: inlines}
	v.SrcInfo = src
	return v
}

func hasClass(a ast.Attr, name string) bool {
	for _, c := range a.Classes {
		if c == name {
			return true
		}
	}
	return false
}

func convertCitationMode(m inlinescan.CitationMode) ast.CitationMode {
	switch m {
	case inlinescan.AuthorInText:
		return ast.AuthorInText
	case inlinescan.SuppressAuthor:
		return ast.SuppressAuthor
	default:
		return ast.NormalCitation
	}
}

func (b *Builder) convertCitationItems(items []inlinescan.CitationItem, segText []byte, segSrc *sourcemap.SourceInfo) []ast.CitationItem {
	out := make([]ast.CitationItem, len(items))
	for i, it := range items {
		out[i] = ast.CitationItem{
			Key:    it.Key,
			Mode:   convertCitationMode(it.Mode),
			Prefix: b.scanSubrange(segText, segSrc, it.PrefixStart, it.PrefixEnd),
			Suffix: b.scanSubrange(segText, segSrc, it.SuffixStart, it.SuffixEnd),
		}
	}
	return out
}

// scanSubrange re-scans a byte range of an already-scanned segment as its
// own inline content, used for citation prefix/suffix text (spec.md §4.4:
// "[prefix @key suffix]" carries ordinary Pandoc inlines on either side of
// the key). The subrange's own SourceInfo is computed directly off segSrc,
// so a fresh Scan starting back at offset 0 still resolves to the correct
// absolute document bytes: a Scanner node at position p within sub
// corresponds to position start+p within segText, which is exactly what
// segSrcRange(segSrc, start, end) already names.
func (b *Builder) scanSubrange(segText []byte, segSrc *sourcemap.SourceInfo, start, end int) []ast.Inline {
	if end <= start {
		return nil
	}
	sub := segText[start:end]
	subSrc := b.segSrcRange(segSrc, start, end)
	nodes := inlinescan.New(sub).Scan()
	return b.convertInlines(nodes, sub, subSrc)
}
