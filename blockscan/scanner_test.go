package blockscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanText(t *testing.T, src string) *Node {
	t.Helper()
	root := New([]byte(src)).Scan()
	require.NotNil(t, root)
	require.Equal(t, NodeDocument, root.Kind)
	return root
}

func TestScanSimpleParagraph(t *testing.T) {
	root := scanText(t, "hello world\nsecond line\n")
	require.Len(t, root.Children, 1)
	assert.Equal(t, NodeParagraph, root.Children[0].Kind)
	assert.Len(t, root.Children[0].InlineSegments, 2)
}

func TestScanAtxHeading(t *testing.T) {
	src := "## A Heading ##\n\nbody\n"
	root := scanText(t, src)
	require.Len(t, root.Children, 2)
	h := root.Children[0]
	assert.Equal(t, NodeHeading, h.Kind)
	assert.Equal(t, 2, h.Level)
	seg := h.InlineSegments[0]
	assert.Equal(t, "A Heading", src[seg.Start:seg.End])
}

func TestScanThematicBreak(t *testing.T) {
	root := scanText(t, "para\n\n***\n\nmore\n")
	require.Len(t, root.Children, 3)
	assert.Equal(t, NodeThematicBreak, root.Children[1].Kind)
}

func TestScanFencedCodeBlock(t *testing.T) {
	root := scanText(t, "```go\nfmt.Println(1)\n```\n")
	require.Len(t, root.Children, 1)
	n := root.Children[0]
	assert.Equal(t, NodeFencedCode, n.Kind)
	assert.Equal(t, "go", n.InfoString)
	assert.Equal(t, byte('`'), n.FenceChar)
}

func TestScanBlockQuoteLazyContinuation(t *testing.T) {
	root := scanText(t, "> first line\nlazy continuation\n")
	require.Len(t, root.Children, 1)
	bq := root.Children[0]
	require.Equal(t, NodeBlockQuote, bq.Kind)
	require.Len(t, bq.Children, 1)
	assert.Equal(t, NodeParagraph, bq.Children[0].Kind)
	assert.Len(t, bq.Children[0].InlineSegments, 2)
}

func TestScanBulletList(t *testing.T) {
	root := scanText(t, "- one\n- two\n- three\n")
	require.Len(t, root.Children, 1)
	list := root.Children[0]
	require.Equal(t, NodeList, list.Kind)
	assert.Len(t, list.Children, 3)
	for _, item := range list.Children {
		assert.Equal(t, NodeListItem, item.Kind)
	}
}

func TestScanHTMLCommentHidesMarkers(t *testing.T) {
	root := scanText(t, "<!--\n- not a list\n# not a heading\n-->\n")
	require.Len(t, root.Children, 1)
	assert.Equal(t, NodeParagraph, root.Children[0].Kind)
}

func TestScanPipeTable(t *testing.T) {
	root := scanText(t, "a|b\n-|-\n1|2\n")
	require.Len(t, root.Children, 1)
	tbl := root.Children[0]
	require.Equal(t, NodePipeTable, tbl.Kind)
	require.NotNil(t, tbl.Table)
	assert.Len(t, tbl.Table.Header, 2)
	assert.Len(t, tbl.Table.Rows, 1)
}

func TestScanPipeTableCellPreservesCodeSpanPipe(t *testing.T) {
	src := "a|b\n-|-\n`x|y`|2\n"
	root := scanText(t, src)
	require.Len(t, root.Children, 1)
	tbl := root.Children[0]
	require.Equal(t, NodePipeTable, tbl.Kind)
	require.Len(t, tbl.Table.Rows, 1)
	row := tbl.Table.Rows[0]
	require.Len(t, row, 2)
	assert.Equal(t, "`x|y`", src[row[0].Start:row[0].End])
}

func TestScanFrontMatterGuardsBlankLineAsThematicBreak(t *testing.T) {
	root := scanText(t, "---\n\nnot front matter\n---\n")
	require.NotEmpty(t, root.Children)
	assert.Equal(t, NodeThematicBreak, root.Children[0].Kind)
}

func TestScanFencedDivWithNoteID(t *testing.T) {
	root := scanText(t, "::: {#fig-one ^note1}\ncontent\n:::\n")
	require.Len(t, root.Children, 1)
	div := root.Children[0]
	require.Equal(t, NodeFencedDiv, div.Kind)
	assert.Equal(t, "note1", div.NoteID)
	assert.Equal(t, "{#fig-one ^note1}", div.InfoString)
	require.Len(t, div.Children, 1)
}

func TestScanFrontMatter(t *testing.T) {
	root := scanText(t, "---\ntitle: Hi\n---\nbody\n")
	require.Len(t, root.Children, 2)
	assert.Equal(t, NodeFrontMatter, root.Children[0].Kind)
	assert.Equal(t, NodeParagraph, root.Children[1].Kind)
}

func TestScanFootnoteDefinition(t *testing.T) {
	root := scanText(t, "para\n\n[^1]: the note\n    continued\n")
	require.Len(t, root.Children, 2)
	fn := root.Children[1]
	require.Equal(t, NodeFootnoteDef, fn.Kind)
	assert.Equal(t, "1", fn.NoteID)
	assert.Len(t, fn.Children, 1)
}

func TestStateCanPushGuardTrips(t *testing.T) {
	s := NewState()
	for i := 0; i < 300 && s.CanPush(); i++ {
		s.Push(OpenBlock{Kind: KindBlockQuote})
	}
	assert.False(t, s.CanPush())
	data, err := s.Serialize()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(data), 1024)
}
