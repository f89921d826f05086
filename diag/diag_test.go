package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBagHasErrors(t *testing.T) {
	var b Bag
	b.Add(Diagnostic{Severity: Warning})
	assert.False(t, b.HasErrors())
	b.Add(Diagnostic{Severity: Error})
	assert.True(t, b.HasErrors())
	assert.Len(t, b.All(), 2)
}

func TestDiagnosticDetailAndHintCap(t *testing.T) {
	var d Diagnostic
	for i := 0; i < 10; i++ {
		d.AddDetail("x", nil)
		d.AddHint("y")
	}
	assert.Len(t, d.Details, 5)
	assert.Len(t, d.Hints, 5)
}

func TestEngineLookupHit(t *testing.T) {
	table := NewTable()
	table.Put("state-a", "token-b", Entry{Template: "unterminated fenced div", Hints: []string{"add a closing :::"}})
	eng := NewEngine(table)

	d := eng.Report("state-a", "token-b", nil, nil)
	assert.Equal(t, "unterminated fenced div", d.Title)
	require.Len(t, d.Hints, 1)
	assert.Equal(t, "add a closing :::", d.Hints[0].Message)
}

func TestEngineLookupMissFallsBackToGeneric(t *testing.T) {
	eng := NewEngine(NewTable())
	d := eng.Report("unseen-state", "unseen-token", []string{"BlockClose", "AtxHeadingMarker"}, nil)
	assert.Equal(t, "Q-s-000", d.Code)
	assert.Contains(t, d.Title, "unseen-token")
	require.Len(t, d.Hints, 1)
}

func TestGlobalEngineInitIsIdempotent(t *testing.T) {
	table1 := NewTable()
	table1.Put("s", "t", Entry{Template: "first"})
	InitGlobal(table1)

	table2 := NewTable()
	table2.Put("s", "t", Entry{Template: "second"})
	InitGlobal(table2) // no-op, first table wins

	d := Global().Report("s", "t", nil, nil)
	assert.Equal(t, "first", d.Title)
}
