package diag

import (
	"fmt"
	"sort"
	"sync"

	"github.com/quarto-dev/q2-sub015/sourcemap"
)

// Engine answers "what message for this parse error" at runtime by table
// lookup, per spec.md §4.7. It never contains grammar-specific logic; all
// it knows is how to combine a state signature and a token kind into a key.
type Engine struct {
	table *Table
}

// NewEngine wraps a precomputed table for runtime lookups.
func NewEngine(table *Table) *Engine {
	if table == nil {
		table = NewTable()
	}
	return &Engine{table: table}
}

var (
	globalOnce   sync.Once
	globalEngine *Engine
)

// InitGlobal initializes the process-wide Engine exactly once (spec.md §9
// "Global mutable state" / §5 "pre-load the diagnostic table once at
// startup"). Subsequent calls are no-ops; the table is immutable thereafter
// and safe to share across concurrently processed documents.
func InitGlobal(table *Table) {
	globalOnce.Do(func() {
		globalEngine = NewEngine(table)
	})
}

// Global returns the process-wide Engine, initializing it with an empty
// table (generic messages only) if InitGlobal was never called.
func Global() *Engine {
	globalOnce.Do(func() {
		globalEngine = NewEngine(NewTable())
	})
	return globalEngine
}

// Report builds a StructuralParse diagnostic for an ERROR-token emission at
// src, combining state and token per spec.md §4.7 steps 1-4: look the pair
// up in the table; if absent, synthesize a generic "unexpected token"
// message naming the lookahead and the highest-priority expected symbols.
func (e *Engine) Report(state StateSignature, token TokenKind, validSymbols []string, src *sourcemap.SourceInfo) Diagnostic {
	d := Diagnostic{
		Kind:     StructuralParse,
		Severity: Error,
		Source:   src,
	}

	if entry, ok := e.table.Lookup(state, token); ok {
		d.Code = fmt.Sprintf("Q-s-%d", stableHash(string(state)+"|"+string(token))%1000)
		d.Title = entry.Template
		for _, h := range entry.Hints {
			d.AddHint(h)
		}
		return d
	}

	d.Code = "Q-s-000"
	d.Title = genericMessage(token, validSymbols)
	d.Problem = fmt.Sprintf("unexpected %s", token)
	if len(validSymbols) > 0 {
		sorted := append([]string(nil), validSymbols...)
		sort.Strings(sorted)
		d.AddHint(fmt.Sprintf("expected one of: %s", joinTop(sorted, 5)))
	}
	return d
}

func genericMessage(token TokenKind, validSymbols []string) string {
	if len(validSymbols) == 0 {
		return fmt.Sprintf("unexpected token %q", token)
	}
	return fmt.Sprintf("unexpected token %q (expected %s)", token, joinTop(validSymbols, 1))
}

func joinTop(items []string, n int) string {
	if n > len(items) {
		n = len(items)
	}
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ", "
		}
		out += items[i]
	}
	return out
}

// stableHash is a tiny FNV-1a variant used only to derive a stable,
// human-scannable numeric suffix for generated diagnostic codes; it carries
// no cryptographic or collision-resistance requirement.
func stableHash(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
