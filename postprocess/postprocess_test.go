package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarto-dev/q2-sub015/ast"
	"github.com/quarto-dev/q2-sub015/astbuild"
	"github.com/quarto-dev/q2-sub015/diag"
	"github.com/quarto-dev/q2-sub015/sourcemap"
)

func process(t *testing.T, src string) (*ast.Document, *diag.Bag) {
	t.Helper()
	smap := sourcemap.NewMap()
	diags := &diag.Bag{}
	doc := astbuild.Build([]byte(src), "test.qmd", smap, diags)
	require.NotNil(t, doc)
	Run(doc, []byte(src), diags)
	return doc, diags
}

func firstLink(p *ast.Paragraph) *ast.Link {
	for _, in := range p.Inlines {
		if l, ok := in.(*ast.Link); ok {
			return l
		}
	}
	return nil
}

func TestResolveLinkReferenceFillsTarget(t *testing.T) {
	doc, diags := process(t, "see [foo][bar]\n\n[bar]: https://example.com \"Example\"\n")
	require.False(t, diags.HasErrors())
	p := doc.Blocks[0].(*ast.Paragraph)
	link := firstLink(p)
	require.NotNil(t, link)
	assert.Empty(t, link.RefLabel)
	assert.Equal(t, "https://example.com", link.Target.URL)
	assert.Equal(t, "Example", link.Target.Title)
}

func TestResolveLinkReferenceUnresolved(t *testing.T) {
	doc, diags := process(t, "see [foo][missing]\n")
	p := doc.Blocks[0].(*ast.Paragraph)
	link := firstLink(p)
	require.NotNil(t, link)
	assert.Equal(t, "missing", link.RefLabel)
	require.True(t, diags.HasErrors())
	found := false
	for _, d := range diags.All() {
		if d.Kind == diag.UnresolvedRef {
			found = true
		}
	}
	assert.True(t, found)
}

func TestResolveNoteReferenceUnresolved(t *testing.T) {
	_, diags := process(t, "see it[^missing]\n")
	require.True(t, diags.HasErrors())
	found := false
	for _, d := range diags.All() {
		if d.Kind == diag.UnresolvedRef {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTightBulletList(t *testing.T) {
	doc, _ := process(t, "- one\n- two\n")
	bl := doc.Blocks[0].(*ast.BulletList)
	assert.True(t, bl.Tight)
}

func TestLooseBulletListBetweenItems(t *testing.T) {
	doc, _ := process(t, "- one\n\n- two\n")
	bl := doc.Blocks[0].(*ast.BulletList)
	assert.False(t, bl.Tight)
}

func TestTightOrderedList(t *testing.T) {
	doc, _ := process(t, "1. one\n2. two\n")
	ol := doc.Blocks[0].(*ast.OrderedList)
	assert.True(t, ol.Tight)
}
