// Package jsonw implements the Pandoc-JSON writer (spec.md §4.8.2/§6.2):
// standard `pandoc-api-version`/`meta`/`blocks` keys, augmented with an
// `astContext` object carrying the SourceInfo pool every node's inline
// source info is replaced by a `{"$ref": N}` into. The pool holds one entry
// per node of the sourcemap.Map; equal spans are not merged.
package jsonw

import "github.com/quarto-dev/q2-sub015/sourcemap"

// location mirrors sourcemap.Location's wire shape (spec.md §6.2: "row,
// column, offset ... 0-based").
type location struct {
	Row    int `json:"row"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

type byteRange struct {
	Start location `json:"start"`
	End   location `json:"end"`
}

// poolEntry is one node of the serialized SourceInfo pool, matching the
// four mapping-kind schemas spec.md §6.2 lists verbatim.
type poolEntry struct {
	ID      int            `json:"id"`
	Range   byteRange      `json:"range"`
	Mapping map[string]any `json:"mapping"`
}

func toLocation(l sourcemap.Location) location {
	return location{Row: l.Row, Column: l.Column, Offset: l.Offset}
}

func toByteRange(r sourcemap.Range) byteRange {
	return byteRange{Start: toLocation(r.Start), End: toLocation(r.End)}
}

// astContext carries the file-name table and pool the $ref scheme resolves
// against. sourceInfoPool is omitted entirely when the document's map holds
// no nodes (e.g. a from-scratch document with no source provenance at all).
type astContext struct {
	Filenames      []string    `json:"filenames"`
	SourceInfoPool []poolEntry `json:"sourceInfoPool,omitempty"`
}

// buildAstContext walks smap.Nodes() -- already in creation order, which is
// a valid topological order since a node can only reference parents that
// exist before it (sourcemap.Map's own invariant) -- into the wire pool.
// Entry i's ID always equals i because Map.register assigns ids by
// append-position; buildAstContext relies on that rather than re-deriving
// it, keeping the "parent ids strictly less than child ids" invariant
// (spec.md §4.8.2) automatic.
func buildAstContext(smap *sourcemap.Map) astContext {
	ctx := astContext{Filenames: smap.Filenames()}
	for _, n := range smap.Nodes() {
		ctx.SourceInfoPool = append(ctx.SourceInfoPool, toPoolEntry(n))
	}
	return ctx
}

func toPoolEntry(n *sourcemap.SourceInfo) poolEntry {
	e := poolEntry{ID: n.ID(), Range: toByteRange(n.Range)}
	switch n.Kind {
	case sourcemap.Original:
		if n.Synthetic {
			e.Mapping = map[string]any{"Synthetic": map[string]any{}}
			return e
		}
		e.Mapping = map[string]any{"Original": map[string]any{"file_id": int(n.File)}}
	case sourcemap.Substring:
		e.Mapping = map[string]any{"Substring": map[string]any{
			"parent_id": n.Parent.ID(),
			"offset":    n.Offset,
		}}
	case sourcemap.Transformed:
		pieces := make([]map[string]any, len(n.Pieces))
		for i, p := range n.Pieces {
			pieces[i] = map[string]any{
				"src_start": p.SrcStart, "src_end": p.SrcEnd,
				"dst_start": p.DstStart, "dst_end": p.DstEnd,
			}
		}
		e.Mapping = map[string]any{"Transformed": map[string]any{
			"parent_id": n.Parent.ID(),
			"mapping":   pieces,
		}}
	case sourcemap.Concat:
		pieces := make([]map[string]any, len(n.Concat))
		for i, p := range n.Concat {
			pieces[i] = map[string]any{
				"source_info_id":   p.Source.ID(),
				"offset_in_concat": p.Offset,
				"length":           p.Length,
			}
		}
		e.Mapping = map[string]any{"Concat": map[string]any{"pieces": pieces}}
	}
	return e
}

// ref renders the `{"$ref": N}` a node's source info is replaced by, or nil
// (omitted from the emitted object, via omitempty on the field it fills)
// when the node carries no source info at all.
func ref(src *sourcemap.SourceInfo) map[string]int {
	if src == nil {
		return nil
	}
	return map[string]int{"$ref": src.ID()}
}
