package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarto-dev/q2-sub015/astbuild"
	"github.com/quarto-dev/q2-sub015/diag"
	"github.com/quarto-dev/q2-sub015/postprocess"
	"github.com/quarto-dev/q2-sub015/sourcemap"
)

func TestWriteSimpleParagraph(t *testing.T) {
	src := "hello *world*\n"
	smap := sourcemap.NewMap()
	diags := &diag.Bag{}
	doc := astbuild.Build([]byte(src), "test.qmd", smap, diags)
	require.False(t, diags.HasErrors())

	out, err := Write(doc)
	require.NoError(t, err)
	assert.Equal(t, `Pandoc (Meta {unMeta = fromList []}) [Para [Str "hello",Space,Emph [Str "world"]]]`, out)
}

func TestWriteHeadingWithAttr(t *testing.T) {
	src := "# Title {#intro .unnumbered}\n"
	smap := sourcemap.NewMap()
	diags := &diag.Bag{}
	doc := astbuild.Build([]byte(src), "test.qmd", smap, diags)

	out, err := Write(doc)
	require.NoError(t, err)
	assert.Contains(t, out, `Header 1 ("intro",["unnumbered"],[]) [Str "Title"]`)
}

func TestWriteSplicesResolvedNoteReference(t *testing.T) {
	src := "see it[^1]\n\n[^1]: a note.\n"
	smap := sourcemap.NewMap()
	diags := &diag.Bag{}
	doc := astbuild.Build([]byte(src), "test.qmd", smap, diags)
	postprocess.Run(doc, []byte(src), diags)

	out, err := Write(doc)
	require.NoError(t, err)
	assert.Contains(t, out, `Note [Para [`)
	assert.Contains(t, out, "note.")
	assert.NotContains(t, out, "NoteReference")
}

func TestWriteUnresolvedNoteReferenceIsUnsupported(t *testing.T) {
	src := "see it[^missing]\n"
	smap := sourcemap.NewMap()
	diags := &diag.Bag{}
	doc := astbuild.Build([]byte(src), "test.qmd", smap, diags)
	postprocess.Run(doc, []byte(src), diags)

	_, err := Write(doc)
	require.Error(t, err)
	var ufe *UnsupportedFeatureError
	require.ErrorAs(t, err, &ufe)
	assert.Equal(t, "native", ufe.Writer)
	assert.Equal(t, "unresolved NoteReference", ufe.Feature)
}

func TestWriteBulletList(t *testing.T) {
	src := "- one\n- two\n"
	smap := sourcemap.NewMap()
	diags := &diag.Bag{}
	doc := astbuild.Build([]byte(src), "test.qmd", smap, diags)
	postprocess.Run(doc, []byte(src), diags)

	out, err := Write(doc)
	require.NoError(t, err)
	assert.Contains(t, out, `BulletList [[Para [Str "one"]],[Para [Str "two"]]]`)
}
