package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(offset int) Location { return Location{Offset: offset} }

func TestOffsetCollapsesSubstringOfSubstring(t *testing.T) {
	m := NewMap()
	file := m.AddFile("doc.qmd")
	root := m.NewOriginal(file, Range{Start: loc(0), End: loc(100)})

	a := m.Offset(root, 10, 20) // [10,30)
	b := m.Offset(a, 5, 5)      // relative to a -> absolute [15,20)

	assert.Equal(t, Substring, b.Kind)
	assert.Same(t, root, b.Parent)
	assert.Equal(t, 15, b.Offset)
	assert.Equal(t, 15, b.Range.Start.Offset)
	assert.Equal(t, 20, b.Range.End.Offset)
}

func TestMapToOriginalResolvesThroughSubstringChain(t *testing.T) {
	m := NewMap()
	file := m.AddFile("doc.qmd")
	root := m.NewOriginal(file, Range{Start: loc(0), End: loc(100)})
	block := m.Offset(root, 40, 10)

	pos, err := m.MapToOriginal(block, 3)
	require.NoError(t, err)
	assert.Equal(t, file, pos.File)
	assert.Equal(t, 43, pos.Loc.Offset)
}

func TestMapToOriginalOutOfRangeDoesNotPanic(t *testing.T) {
	m := NewMap()
	file := m.AddFile("doc.qmd")
	root := m.NewOriginal(file, Range{Start: loc(0), End: loc(10)})

	_, err := m.MapToOriginal(root, 999)
	require.Error(t, err)
	var oor *ErrOutOfRange
	assert.ErrorAs(t, err, &oor)
}

func TestConcatResolvesToCorrectPiece(t *testing.T) {
	m := NewMap()
	file := m.AddFile("doc.qmd")
	a := m.NewOriginal(file, Range{Start: loc(0), End: loc(5)})
	b := m.NewOriginal(file, Range{Start: loc(20), End: loc(25)})

	c := m.Concat([]ConcatPiece{
		{Source: a, Offset: 0, Length: 5},
		{Source: b, Offset: 5, Length: 5},
	}, Range{Start: loc(0), End: loc(10)})

	pos, err := m.MapToOriginal(c, 7)
	require.NoError(t, err)
	assert.Equal(t, 22, pos.Loc.Offset)
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	m := NewMap()
	file := m.AddFile("doc.qmd")
	root := m.NewOriginal(file, Range{Start: loc(0), End: loc(50)})
	sub := m.Offset(root, 10, 5)
	entries := m.Serialize()

	require.Len(t, entries, 2)
	for i, e := range entries {
		assert.Equal(t, i, e.ID)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Mapping.Substring != nil {
			assert.Less(t, entries[i].Mapping.Substring.ParentID, entries[i].ID)
		}
	}

	_, nodes, err := Deserialize(m.Filenames(), entries)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, sub.Offset, nodes[1].Offset)
	assert.Same(t, nodes[0], nodes[1].Parent)
	_ = root
}
