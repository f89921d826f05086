// Package ast implements the Pandoc-compatible abstract syntax tree
// described in spec.md §3.1: a Document of Metadata plus an ordered
// sequence of Blocks, every node carrying a SourceInfo provenance handle.
//
// The tree is modeled the way the teacher's dependency (goldmark) models
// its own tree — tagged variants dispatched by type switch, not an open
// inheritance hierarchy — but the node shapes themselves follow Pandoc's
// Text.Pandoc.Definition, per spec.md §3.1, not goldmark's node set.
package ast

import "github.com/quarto-dev/q2-sub015/sourcemap"

// KV is a single key-value attribute pair. Order is insertion order;
// duplicate keys are rejected by whatever constructs an Attr (the attribute
// grammar in astbuild), never silently overwritten here.
type KV struct {
	Key   string
	Value string
}

// Attr is the Pandoc (id, classes, key-value) attribute triple. Classes
// preserve source order; so do key-value pairs.
type Attr struct {
	ID      string
	Classes []string
	KVs     []KV
}

// Get returns the value for key and whether it was present.
func (a Attr) Get(key string) (string, bool) {
	for _, kv := range a.KVs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// IsEmpty reports whether the attribute triple carries no information.
func (a Attr) IsEmpty() bool {
	return a.ID == "" && len(a.Classes) == 0 && len(a.KVs) == 0
}

// Node is implemented by every Block and Inline variant. It only exposes
// provenance; semantic dispatch happens via type switches in callers, as is
// idiomatic for a small, closed sum type in Go.
type Node interface {
	Source() *sourcemap.SourceInfo
}

// base is embedded by every concrete Block/Inline to provide SourceInfo
// storage without repeating the same field and method on every type.
type base struct {
	SrcInfo *sourcemap.SourceInfo
}

func (b base) Source() *sourcemap.SourceInfo { return b.SrcInfo }
