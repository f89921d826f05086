// Package sourcemap implements the provenance graph attached to every AST
// node produced by this module: a DAG of SourceInfo values that maps any
// byte range in a derived string back to the original file bytes it came
// from.
//
// SourceInfo values are immutable once constructed and are shared by
// reference among many AST nodes (see package ast). Construction only
// appends new nodes; existing nodes are never mutated, so a SourceMap can be
// safely shared across goroutines once built, even though a single Map
// is not safe for concurrent use while it is still being written to.
package sourcemap

import "fmt"

// FileID identifies one of the input files registered with a Map.
type FileID int

// Location is a 0-based position in some logical string: byte offset plus
// the row/column it falls on (tabs are not expanded here; callers that need
// tab-stop-aware columns compute them separately, see blockscan).
type Location struct {
	Row    int
	Column int
	Offset int
}

// Range is a half-open [Start, End) span over some logical string.
type Range struct {
	Start Location
	End   Location
}

// Len returns the byte length of the range.
func (r Range) Len() int { return r.End.Offset - r.Start.Offset }

// MappingKind discriminates the variants of SourceInfo.Mapping.
type MappingKind int

const (
	// Original means the range refers directly to an input file.
	Original MappingKind = iota
	// Substring means the range is a sub-slice of a parent SourceInfo.
	Substring
	// Transformed means the range corresponds to a parent modulated by a
	// piecewise offset mapping (escapes, normalization).
	Transformed
	// Concat means the range is the concatenation of several upstream
	// pieces, each contributing a known length at a known offset.
	Concat
)

func (k MappingKind) String() string {
	switch k {
	case Original:
		return "Original"
	case Substring:
		return "Substring"
	case Transformed:
		return "Transformed"
	case Concat:
		return "Concat"
	default:
		return "Unknown"
	}
}

// PieceMapping is one entry of a Transformed node's piecewise offset table:
// bytes [SrcStart, SrcEnd) of the parent correspond to [DstStart, DstEnd) of
// the transformed string.
type PieceMapping struct {
	SrcStart, SrcEnd int
	DstStart, DstEnd int
}

// ConcatPiece is one contributor to a Concat node.
type ConcatPiece struct {
	Source *SourceInfo
	Offset int // offset in the concatenated string
	Length int
}

// SourceInfo is a single node of the provenance DAG. Use the zero value only
// via Map's NewOriginal/Offset/Transform/Concat/Synthetic; the struct fields
// are not meant to be populated directly by callers outside this package.
type SourceInfo struct {
	id        int
	Range     Range
	Kind      MappingKind
	File      FileID        // valid when Kind == Original
	Parent    *SourceInfo   // valid when Kind == Substring or Transformed
	Offset    int           // valid when Kind == Substring: byte offset into Parent
	Pieces    []PieceMapping // valid when Kind == Transformed
	Concat    []ConcatPiece  // valid when Kind == Concat
	Synthetic bool
}

// ID returns a process-local identity for this node, stable for the
// lifetime of the Document it belongs to. It is used only to give pool
// serialization a deterministic topological order; it carries no meaning
// across documents.
func (s *SourceInfo) ID() int { return s.id }

// Map is the provenance DAG under construction for one document. Nodes are
// append-only; Map.register assigns ids in creation order, which is also a
// valid topological order because a node can only reference parents that
// already exist.
type Map struct {
	filenames []string
	nodes     []*SourceInfo
}

// NewMap creates an empty provenance graph.
func NewMap() *Map {
	return &Map{}
}

// AddFile registers an input file and returns its FileID. Call once per
// file, in the order files are first read.
func (m *Map) AddFile(name string) FileID {
	m.filenames = append(m.filenames, name)
	return FileID(len(m.filenames) - 1)
}

// Filenames returns the registered file names in FileID order.
func (m *Map) Filenames() []string { return m.filenames }

func (m *Map) register(s *SourceInfo) *SourceInfo {
	s.id = len(m.nodes)
	m.nodes = append(m.nodes, s)
	return s
}

// NewOriginal creates a root node referring directly to file bytes.
func (m *Map) NewOriginal(file FileID, r Range) *SourceInfo {
	return m.register(&SourceInfo{Range: r, Kind: Original, File: file})
}

// Offset restricts parent to the sub-slice [byteOffset, byteOffset+length)
// relative to parent's own string, returning a new Substring node. If
// parent is itself a Substring of some grandparent, the result collapses to
// a Substring of that grandparent directly (an optimization, not a
// requirement of the data model).
func (m *Map) Offset(parent *SourceInfo, byteOffset, length int) *SourceInfo {
	grandparent := parent
	offset := byteOffset
	if parent.Kind == Substring {
		grandparent = parent.Parent
		offset = parent.Offset + byteOffset
	}
	start := grandparent.Range.Start
	start.Offset += offset
	end := start
	end.Offset += length
	return m.register(&SourceInfo{
		Range:  Range{Start: start, End: end},
		Kind:   Substring,
		Parent: grandparent,
		Offset: offset,
	})
}

// Transform creates a node whose range is parent's range reinterpreted
// through a piecewise byte offset mapping, used when escape processing or
// normalization shifts byte positions relative to the source.
func (m *Map) Transform(parent *SourceInfo, dstRange Range, pieces []PieceMapping) *SourceInfo {
	return m.register(&SourceInfo{
		Range:  dstRange,
		Kind:   Transformed,
		Parent: parent,
		Pieces: pieces,
	})
}

// Concat builds a node whose range is the concatenation of pieces, each
// occupying [Offset, Offset+Length) of the resulting logical string. The
// node's Range is rng exactly as the caller passes it.
func (m *Map) Concat(pieces []ConcatPiece, rng Range) *SourceInfo {
	cp := make([]ConcatPiece, len(pieces))
	copy(cp, pieces)
	return m.register(&SourceInfo{Range: rng, Kind: Concat, Concat: cp})
}

// Synthetic marks a node as not mapping to real input bytes (e.g. a Space
// inserted by Postprocess at a table boundary). Synthetic nodes are exempt
// from the source-info coverage invariant (spec.md §3.1).
func (m *Map) Synthetic(rng Range) *SourceInfo {
	return m.register(&SourceInfo{Range: rng, Kind: Original, Synthetic: true})
}

// ResolvedPosition is the result of walking a SourceInfo's mapping chain
// down to an Original node.
type ResolvedPosition struct {
	File FileID
	Loc  Location
}

// ErrOutOfRange is returned by MapToOriginal when byteOffset falls outside
// the node's range.
type ErrOutOfRange struct {
	Offset, Len int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("sourcemap: offset %d out of range [0, %d)", e.Offset, e.Len)
}

// MapToOriginal walks the mapping chain of s to resolve byteOffset (relative
// to s's own range) down to a position in an original input file. It never
// panics: an invalid offset yields ErrOutOfRange, which callers should treat
// as a synthetic-node condition rather than a fatal error.
func (m *Map) MapToOriginal(s *SourceInfo, byteOffset int) (ResolvedPosition, error) {
	if byteOffset < 0 || byteOffset > s.Range.Len() {
		return ResolvedPosition{}, &ErrOutOfRange{Offset: byteOffset, Len: s.Range.Len()}
	}
	cur := s
	offset := byteOffset
	for {
		switch cur.Kind {
		case Original:
			loc := cur.Range.Start
			loc.Offset += offset
			return ResolvedPosition{File: cur.File, Loc: loc}, nil
		case Substring:
			offset += cur.Offset
			cur = cur.Parent
		case Transformed:
			offset = mapThroughPieces(cur.Pieces, offset)
			cur = cur.Parent
		case Concat:
			piece, rel, err := findConcatPiece(cur.Concat, offset)
			if err != nil {
				return ResolvedPosition{}, err
			}
			return m.MapToOriginal(piece.Source, rel)
		default:
			return ResolvedPosition{}, fmt.Errorf("sourcemap: unknown mapping kind %v", cur.Kind)
		}
	}
}

func mapThroughPieces(pieces []PieceMapping, dstOffset int) int {
	for _, p := range pieces {
		if dstOffset >= p.DstStart && dstOffset < p.DstEnd {
			return p.SrcStart + (dstOffset - p.DstStart)
		}
	}
	// No piece covers this offset exactly (identity region); fall through
	// unchanged so unmapped spans still resolve approximately.
	return dstOffset
}

func findConcatPiece(pieces []ConcatPiece, offset int) (ConcatPiece, int, error) {
	for _, p := range pieces {
		if offset >= p.Offset && offset < p.Offset+p.Length {
			return p, offset - p.Offset, nil
		}
	}
	return ConcatPiece{}, 0, &ErrOutOfRange{Offset: offset, Len: -1}
}

// Nodes returns all registered nodes in creation (topological) order. Used
// by writer/jsonw to build the pool. Nodes are not deduplicated: every
// Offset call registers a new node, so equal spans can appear more than once.
func (m *Map) Nodes() []*SourceInfo { return m.nodes }
