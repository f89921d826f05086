package qmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarto-dev/q2-sub015/ast"
	"github.com/quarto-dev/q2-sub015/astbuild"
	"github.com/quarto-dev/q2-sub015/diag"
	"github.com/quarto-dev/q2-sub015/sourcemap"
)

func TestClassifyNoSourceInfoIsUseAfter(t *testing.T) {
	p := &ast.Paragraph{}
	d, _, _ := classify(p, []byte("anything"))
	assert.Equal(t, UseAfter, d)
}

func TestClassifyNilOriginalIsUseAfter(t *testing.T) {
	smap := sourcemap.NewMap()
	file := smap.AddFile("t.qmd")
	src := smap.NewOriginal(file, sourcemap.Range{})
	p := &ast.Paragraph{}
	p.SrcInfo = smap.Offset(src, 0, 0)
	d, _, _ := classify(p, nil)
	assert.Equal(t, UseAfter, d)
}

func TestClassifySubstringIsKeepBefore(t *testing.T) {
	original := []byte("hello world\n")
	smap := sourcemap.NewMap()
	file := smap.AddFile("t.qmd")
	root := smap.NewOriginal(file, sourcemap.Range{
		End: sourcemap.Location{Offset: len(original)},
	})
	p := &ast.Paragraph{}
	p.SrcInfo = smap.Offset(root, 0, len(original))

	d, start, end := classify(p, original)
	assert.Equal(t, KeepBefore, d)
	assert.Equal(t, 0, start)
	assert.Equal(t, len(original), end)
}

func TestClassifySyntheticIsRewrite(t *testing.T) {
	smap := sourcemap.NewMap()
	src := smap.Synthetic(sourcemap.Range{})
	p := &ast.Paragraph{}
	p.SrcInfo = src
	d, _, _ := classify(p, []byte("x"))
	assert.Equal(t, Rewrite, d)
}

func TestWriteRoundTripsUnchangedSingleParagraph(t *testing.T) {
	src := "hello world\n"
	smap := sourcemap.NewMap()
	diags := &diag.Bag{}
	doc := astbuild.Build([]byte(src), "test.qmd", smap, diags)
	require.False(t, diags.HasErrors())
	require.Len(t, doc.Blocks, 1)

	out, err := Write(doc, []byte(src))
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

func TestWriteFromScratchWithNoOriginal(t *testing.T) {
	src := "hello world\n"
	smap := sourcemap.NewMap()
	diags := &diag.Bag{}
	doc := astbuild.Build([]byte(src), "test.qmd", smap, diags)

	out, err := Write(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", string(out))
}

func TestWriteBulletListFromScratch(t *testing.T) {
	doc := &ast.Document{
		Blocks: []ast.Block{
			&ast.BulletList{Items: [][]ast.Block{
				{&ast.Paragraph{Inlines: []ast.Inline{&ast.Str{Text: "one"}}}},
				{&ast.Paragraph{Inlines: []ast.Inline{&ast.Str{Text: "two"}}}},
			}},
		},
	}
	out, err := Write(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "- one\n- two\n", string(out))
}

func TestDebugDiffContainsChangedLines(t *testing.T) {
	before := []byte("a\nb\nc\n")
	after := []byte("a\nX\nc\n")
	out, err := DebugDiff(before, after)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "-b")
	assert.Contains(t, s, "+X")
}
