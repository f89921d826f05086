package astbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarto-dev/q2-sub015/ast"
	"github.com/quarto-dev/q2-sub015/diag"
	"github.com/quarto-dev/q2-sub015/sourcemap"
)

func build(t *testing.T, src string) (*ast.Document, *diag.Bag) {
	t.Helper()
	smap := sourcemap.NewMap()
	diags := &diag.Bag{}
	doc := Build([]byte(src), "test.qmd", smap, diags)
	require.NotNil(t, doc)
	return doc, diags
}

func TestBuildSimpleParagraph(t *testing.T) {
	doc, diags := build(t, "hello *world*\n")
	require.False(t, diags.HasErrors())
	require.Len(t, doc.Blocks, 1)
	p, ok := doc.Blocks[0].(*ast.Paragraph)
	require.True(t, ok)
	require.Len(t, p.Inlines, 3)
	assert.IsType(t, &ast.Str{}, p.Inlines[0])
	assert.IsType(t, &ast.Space{}, p.Inlines[1])
	em, ok := p.Inlines[2].(*ast.Emph)
	require.True(t, ok)
	require.Len(t, em.Inlines, 1)
	assert.Equal(t, "world", em.Inlines[0].(*ast.Str).Text)
	require.NotNil(t, p.Source())
}

func TestBuildHeadingWithAttr(t *testing.T) {
	doc, _ := build(t, "# Title {#intro .unnumbered}\n")
	require.Len(t, doc.Blocks, 1)
	h, ok := doc.Blocks[0].(*ast.Heading)
	require.True(t, ok)
	assert.Equal(t, 1, h.Level)
	assert.Equal(t, "intro", h.Attr.ID)
	assert.Equal(t, []string{"unnumbered"}, h.Attr.Classes)
	require.Len(t, h.Inlines, 1)
	assert.Equal(t, "Title", h.Inlines[0].(*ast.Str).Text)
}

func TestBuildFencedCodeBlock(t *testing.T) {
	doc, _ := build(t, "```python\nprint(1)\n```\n")
	require.Len(t, doc.Blocks, 1)
	cb, ok := doc.Blocks[0].(*ast.CodeBlock)
	require.True(t, ok)
	assert.Equal(t, []string{"python"}, cb.Attr.Classes)
	assert.Equal(t, "print(1)\n", cb.Text)
}

func TestBuildFencedDivBecomesNoteDefinition(t *testing.T) {
	doc, _ := build(t, ":::{#fig-one ^note1}\ncontent here\n:::\n")
	assert.Len(t, doc.Blocks, 0)
	require.Contains(t, doc.Notes, "note1")
	nd := doc.Notes["note1"]
	require.Len(t, nd.Blocks, 1)
	p, ok := nd.Blocks[0].(*ast.Paragraph)
	require.True(t, ok)
	assert.Equal(t, "content", p.Inlines[0].(*ast.Str).Text)
}

func TestBuildOrdinaryFencedDiv(t *testing.T) {
	doc, _ := build(t, ":::{.callout-note}\nbody\n:::\n")
	require.Len(t, doc.Blocks, 1)
	fd, ok := doc.Blocks[0].(*ast.FencedDiv)
	require.True(t, ok)
	assert.Equal(t, []string{"callout-note"}, fd.Attr.Classes)
	assert.Empty(t, fd.NoteID)
}

func TestBuildBulletList(t *testing.T) {
	doc, _ := build(t, "- one\n- two\n")
	require.Len(t, doc.Blocks, 1)
	bl, ok := doc.Blocks[0].(*ast.BulletList)
	require.True(t, ok)
	require.Len(t, bl.Items, 2)
	p0 := bl.Items[0][0].(*ast.Paragraph)
	assert.Equal(t, "one", p0.Inlines[0].(*ast.Str).Text)
}

func TestBuildOrderedListStart(t *testing.T) {
	doc, _ := build(t, "3. three\n4. four\n")
	require.Len(t, doc.Blocks, 1)
	ol, ok := doc.Blocks[0].(*ast.OrderedList)
	require.True(t, ok)
	assert.Equal(t, 3, ol.Start)
	assert.Equal(t, ast.Period, ol.Delim)
	require.Len(t, ol.Items, 2)
}

func TestBuildLinkRefDef(t *testing.T) {
	doc, _ := build(t, "see [foo][bar]\n\n[bar]: https://example.com \"Example\"\n")
	require.Len(t, doc.Blocks, 1)
	require.Contains(t, doc.LinkDefs, "bar")
	target := doc.LinkDefs["bar"]
	assert.Equal(t, "https://example.com", target.URL)
	assert.Equal(t, "Example", target.Title)

	p := doc.Blocks[0].(*ast.Paragraph)
	var link *ast.Link
	for _, in := range p.Inlines {
		if l, ok := in.(*ast.Link); ok {
			link = l
		}
	}
	require.NotNil(t, link)
	assert.Equal(t, "bar", link.RefLabel)
}

func TestBuildCitationWithPrefixSuffix(t *testing.T) {
	doc, _ := build(t, "see [see @smith2020 p. 4]\n")
	p := doc.Blocks[0].(*ast.Paragraph)
	var cite *ast.Citation
	for _, in := range p.Inlines {
		if c, ok := in.(*ast.Citation); ok {
			cite = c
		}
	}
	require.NotNil(t, cite)
	require.Len(t, cite.Items, 1)
	assert.Equal(t, "smith2020", cite.Items[0].Key)
	require.NotEmpty(t, cite.Items[0].Prefix)
	require.NotEmpty(t, cite.Items[0].Suffix)
}

func TestBuildFrontMatter(t *testing.T) {
	doc, diags := build(t, "---\ntitle: Hello\ncount: 3\n---\n\nbody\n")
	require.False(t, diags.HasErrors())
	require.NotNil(t, doc.Metadata.Root)
	title, ok := doc.Metadata.Root.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Hello", title.Str)
	count, ok := doc.Metadata.Root.Get("count")
	require.True(t, ok)
	assert.Equal(t, float64(3), count.Num)
	require.NotNil(t, title.Source())
}

func TestBuildSubscriptVsStrikeout(t *testing.T) {
	doc, _ := build(t, "H~2~O and ~~gone~~\n")
	p := doc.Blocks[0].(*ast.Paragraph)
	var sawSub, sawStrike bool
	for _, in := range p.Inlines {
		switch in.(type) {
		case *ast.Subscript:
			sawSub = true
		case *ast.Strikeout:
			sawStrike = true
		}
	}
	assert.True(t, sawSub)
	assert.True(t, sawStrike)
}

func TestBuildHTMLCommentBlockPromotion(t *testing.T) {
	doc, _ := build(t, "<!-- a standalone comment -->\n")
	require.Len(t, doc.Blocks, 1)
	hc, ok := doc.Blocks[0].(*ast.HTMLCommentBlock)
	require.True(t, ok)
	assert.Contains(t, hc.Text, "a standalone comment")
}

func TestBuildTable(t *testing.T) {
	doc, _ := build(t, "| a | b |\n|---|--:|\n| 1 | 2 |\n")
	require.Len(t, doc.Blocks, 1)
	tbl, ok := doc.Blocks[0].(*ast.Table)
	require.True(t, ok)
	require.Len(t, tbl.Colspec, 2)
	assert.Equal(t, ast.AlignDefault, tbl.Colspec[0].Align)
	assert.Equal(t, ast.AlignRight, tbl.Colspec[1].Align)
	require.Len(t, tbl.Head.Cells, 2)
	require.Len(t, tbl.Bodies, 1)
	require.Len(t, tbl.Bodies[0].Rows, 1)
}
