// Package astbuild implements the ASTBuilder component (spec.md §4.4):
// it drives blockscan over a document, re-drives inlinescan over every
// block that carries inline content, and stitches both concrete forests
// into the Pandoc-shaped ast.Document, threading a sourcemap.Map provenance
// handle through every node it constructs. Postprocess (package
// postprocess) runs afterward; this package never resolves references,
// classifies list tightness, or desugars anything -- exactly the split
// spec.md draws between "ASTBuilder" and "Postprocess".
package astbuild

import (
	"github.com/quarto-dev/q2-sub015/ast"
	"github.com/quarto-dev/q2-sub015/blockscan"
	"github.com/quarto-dev/q2-sub015/diag"
	"github.com/quarto-dev/q2-sub015/sourcemap"
)

// Builder converts one document's concrete blockscan/inlinescan parse
// forests into an ast.Document. One Builder handles exactly one input file
// and is not meant to be reused across documents.
type Builder struct {
	src      []byte
	smap     *sourcemap.Map
	fileRoot *sourcemap.SourceInfo
	lines    lineIndex
	diags    *diag.Bag

	notes    map[string]*ast.NoteDefinition
	linkDefs map[string]ast.Target
}

// Build scans src's block grammar, re-scans every block's inline content,
// and returns the resulting ast.Document. diags accumulates every
// diagnostic raised by either scanner or by this package's own attribute
// and numeric-literal validation; smap accumulates every provenance node.
// The caller must still run postprocess.Run on the result before handing it
// to a writer.
func Build(src []byte, filename string, smap *sourcemap.Map, diags *diag.Bag) *ast.Document {
	file := smap.AddFile(filename)
	lines := newLineIndex(src)
	fileRoot := smap.NewOriginal(file, sourcemap.Range{
		Start: lines.locate(0),
		End:   lines.locate(len(src)),
	})
	b := &Builder{
		src:      src,
		smap:     smap,
		fileRoot: fileRoot,
		lines:    lines,
		diags:    diags,
		notes:    map[string]*ast.NoteDefinition{},
		linkDefs: map[string]ast.Target{},
	}

	scanner := blockscan.New(src)
	root := scanner.Scan()
	for _, d := range scanner.Diagnostics().All() {
		diags.Add(d)
	}

	doc := &ast.Document{SourceMap: smap}
	var blocks []ast.Block
	for _, child := range root.Children {
		if child.Kind == blockscan.NodeFrontMatter {
			doc.Metadata = b.buildFrontMatter(child)
			continue
		}
		blocks = append(blocks, b.buildBlock(child)...)
	}
	doc.Blocks = blocks
	doc.Notes = b.notes
	doc.LinkDefs = b.linkDefs
	return doc
}

// rangeSrc registers (or reuses, conceptually) a Substring provenance node
// covering the absolute byte range [start, end) of the document.
func (b *Builder) rangeSrc(start, end int) *sourcemap.SourceInfo {
	if end < start {
		end = start
	}
	return b.smap.Offset(b.fileRoot, start, end-start)
}

func (b *Builder) nodeSrc(n *blockscan.Node) *sourcemap.SourceInfo {
	return b.rangeSrc(n.Start, n.End)
}

// concatSegments joins a block's InlineSegments into the single byte string
// the inline grammar scans, recording a Concat provenance node exactly as
// sourcemap.Map.Concat is documented to be used for (spec.md §3.2, §4.4's
// "concatenate child inline strings with the exact byte boundaries"). A
// single-segment block collapses to a plain Substring instead, since a
// one-piece Concat is needless indirection. Between segments a synthetic
// newline is inserted, standing in for the original line terminator the
// block scanner stripped along with each line's container markers -- the
// inline grammar still needs to see a line boundary there to emit a
// SoftBreak.
func (b *Builder) concatSegments(segs []blockscan.Range) ([]byte, *sourcemap.SourceInfo) {
	if len(segs) == 1 {
		s := segs[0]
		return b.src[s.Start:s.End], b.rangeSrc(s.Start, s.End)
	}
	var buf []byte
	var pieces []sourcemap.ConcatPiece
	offset := 0
	for i, s := range segs {
		piece := b.rangeSrc(s.Start, s.End)
		chunk := b.src[s.Start:s.End]
		buf = append(buf, chunk...)
		pieces = append(pieces, sourcemap.ConcatPiece{Source: piece, Offset: offset, Length: len(chunk)})
		offset += len(chunk)
		if i < len(segs)-1 {
			nl := b.smap.Synthetic(sourcemap.Range{})
			buf = append(buf, '\n')
			pieces = append(pieces, sourcemap.ConcatPiece{Source: nl, Offset: offset, Length: 1})
			offset++
		}
	}
	rng := sourcemap.Range{Start: b.lines.locate(segs[0].Start), End: b.lines.locate(segs[len(segs)-1].End)}
	return buf, b.smap.Concat(pieces, rng)
}
