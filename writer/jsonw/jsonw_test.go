package jsonw

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarto-dev/q2-sub015/astbuild"
	"github.com/quarto-dev/q2-sub015/diag"
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

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))

	apiVersion, ok := decoded["pandoc-api-version"].([]any)
	require.True(t, ok)
	assert.Len(t, apiVersion, 3)

	blocks, ok := decoded["blocks"].([]any)
	require.True(t, ok)
	require.Len(t, blocks, 1)

	para := blocks[0].(map[string]any)
	assert.Equal(t, "Para", para["t"])
	inlines := para["c"].([]any)
	require.Len(t, inlines, 3)
	str := inlines[0].(map[string]any)
	assert.Equal(t, "Str", str["t"])
	assert.Equal(t, "hello", str["c"])
	require.NotNil(t, str["srcInfo"])

	ctx := decoded["astContext"].(map[string]any)
	filenames := ctx["filenames"].([]any)
	require.Len(t, filenames, 1)
	assert.Equal(t, "test.qmd", filenames[0])

	pool := ctx["sourceInfoPool"].([]any)
	assert.NotEmpty(t, pool)

	ref := str["srcInfo"].(map[string]any)
	refID := int(ref["$ref"].(float64))
	require.Less(t, refID, len(pool))
	entry := pool[refID].(map[string]any)
	assert.Equal(t, float64(refID), entry["id"])
}

func TestWriteHeadingWithAttr(t *testing.T) {
	src := "# Title {#intro .unnumbered}\n"
	smap := sourcemap.NewMap()
	diags := &diag.Bag{}
	doc := astbuild.Build([]byte(src), "test.qmd", smap, diags)

	out, err := Write(doc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	blocks := decoded["blocks"].([]any)
	h := blocks[0].(map[string]any)
	assert.Equal(t, "Header", h["t"])
	c := h["c"].([]any)
	assert.Equal(t, float64(1), c[0])
	attr := c[1].([]any)
	assert.Equal(t, "intro", attr[0])
	classes := attr[1].([]any)
	assert.Equal(t, "unnumbered", classes[0])
}
