package diag

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StateSignature is a small canonical digest of scanner-stack shape plus
// grammar state at the moment of an ERROR token emission (spec.md §4.7
// step 1). It is deliberately a plain string key rather than a struct so
// the corpus JSON and the runtime table share one representation.
type StateSignature string

// TokenKind is the kind of the offending lookahead token (spec.md §4.7
// step 2).
type TokenKind string

// key combines a StateSignature and TokenKind into the table's lookup key.
type key struct {
	State StateSignature
	Token TokenKind
}

// Entry is one precomputed (state, token) -> message association.
type Entry struct {
	Template string
	Hints    []string
}

// Table is the precomputed lookup table described in spec.md §4.7 and built
// offline by BuildTable from the corpus in spec.md §6.6.
type Table struct {
	entries map[key]Entry
}

// NewTable returns an empty table; used by tests and as the zero value
// consumed by Engine before a corpus-built table is loaded.
func NewTable() *Table {
	return &Table{entries: make(map[key]Entry)}
}

// Put registers one (state, token) -> message association.
func (t *Table) Put(state StateSignature, token TokenKind, entry Entry) {
	if t.entries == nil {
		t.entries = make(map[key]Entry)
	}
	t.entries[key{state, token}] = entry
}

// Lookup returns the authored entry for (state, token), if any.
func (t *Table) Lookup(state StateSignature, token TokenKind) (Entry, bool) {
	e, ok := t.entries[key{state, token}]
	return e, ok
}

// Len reports the number of entries in the table.
func (t *Table) Len() int { return len(t.entries) }

// corpusExample is the JSON sidecar schema for one `<name>.qmd` +
// `<name>.json` corpus pair (spec.md §6.6).
type corpusExample struct {
	State    StateSignature `json:"state"`
	Token    TokenKind      `json:"token"`
	Message  string         `json:"message"`
	Hints    []string       `json:"hints"`
}

// BuildTable drives the compiler (via run) over every `<name>.qmd` +
// `<name>.json` pair in corpusDir and assembles the runtime lookup table.
// run is injected so tests and the real build step can supply different
// "run the compiler and record the parse state" strategies without this
// package importing the scanner packages (which would create an import
// cycle back into diag).
func BuildTable(corpusDir string, run func(qmdPath string) (StateSignature, TokenKind, error)) (*Table, error) {
	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return nil, fmt.Errorf("diag: reading corpus dir %q: %w", corpusDir, err)
	}

	names := make([]string, 0)
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".qmd") {
			names = append(names, strings.TrimSuffix(e.Name(), ".qmd"))
		}
	}
	sort.Strings(names)

	table := NewTable()
	for _, name := range names {
		qmdPath := filepath.Join(corpusDir, name+".qmd")
		jsonPath := filepath.Join(corpusDir, name+".json")

		raw, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, fmt.Errorf("diag: reading expected-message file %q: %w", jsonPath, err)
		}
		var ex corpusExample
		if err := json.Unmarshal(raw, &ex); err != nil {
			return nil, fmt.Errorf("diag: parsing expected-message file %q: %w", jsonPath, err)
		}

		state, token := ex.State, ex.Token
		if run != nil {
			recordedState, recordedToken, err := run(qmdPath)
			if err != nil {
				return nil, fmt.Errorf("diag: running compiler over corpus example %q: %w", qmdPath, err)
			}
			state, token = recordedState, recordedToken
		}

		table.Put(state, token, Entry{Template: ex.Message, Hints: ex.Hints})
	}
	return table, nil
}

// WriteTable serializes table to a flat JSON resource consumed by Engine at
// process startup (spec.md §6.6 "writes the resulting table into a resource
// consumed at runtime").
func WriteTable(w *bufio.Writer, table *Table) error {
	type wireEntry struct {
		State   StateSignature `json:"state"`
		Token   TokenKind      `json:"token"`
		Message string         `json:"message"`
		Hints   []string       `json:"hints"`
	}
	wire := make([]wireEntry, 0, len(table.entries))
	for k, v := range table.entries {
		wire = append(wire, wireEntry{State: k.State, Token: k.Token, Message: v.Template, Hints: v.Hints})
	}
	sort.Slice(wire, func(i, j int) bool {
		if wire[i].State != wire[j].State {
			return wire[i].State < wire[j].State
		}
		return wire[i].Token < wire[j].Token
	})
	enc := json.NewEncoder(w)
	if err := enc.Encode(wire); err != nil {
		return err
	}
	return w.Flush()
}

// LoadTable deserializes a table resource written by WriteTable.
func LoadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("diag: loading table %q: %w", path, err)
	}
	type wireEntry struct {
		State   StateSignature `json:"state"`
		Token   TokenKind      `json:"token"`
		Message string         `json:"message"`
		Hints   []string       `json:"hints"`
	}
	var wire []wireEntry
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("diag: parsing table %q: %w", path, err)
	}
	table := NewTable()
	for _, e := range wire {
		table.Put(e.State, e.Token, Entry{Template: e.Message, Hints: e.Hints})
	}
	return table, nil
}
