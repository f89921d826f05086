package sourcemap

// PoolEntry is the wire form of one SourceInfo node, matching the
// astContext.sourceInfoPool schema from spec.md §6.2. Parent ids are always
// strictly less than an entry's own id (the topological invariant tested in
// spec.md §8.1).
type PoolEntry struct {
	ID      int           `json:"id"`
	Range   PoolRange     `json:"range"`
	Mapping PoolMapping   `json:"mapping"`
}

// PoolRange mirrors spec.md §6.2's {row, column, offset} location pairs.
type PoolRange struct {
	Start PoolLocation `json:"start"`
	End   PoolLocation `json:"end"`
}

// PoolLocation is a single 0-based {row, column, offset} triple.
type PoolLocation struct {
	Row    int `json:"row"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// PoolMapping carries exactly one of the four mapping-kind sub-objects,
// named per spec.md §6.2.
type PoolMapping struct {
	Original    *PoolOriginal    `json:"Original,omitempty"`
	Substring   *PoolSubstring   `json:"Substring,omitempty"`
	Concat      *PoolConcat      `json:"Concat,omitempty"`
	Transformed *PoolTransformed `json:"Transformed,omitempty"`
}

type PoolOriginal struct {
	FileID int `json:"file_id"`
}

type PoolSubstring struct {
	ParentID int `json:"parent_id"`
	Offset   int `json:"offset"`
}

type PoolConcatPiece struct {
	SourceInfoID    int `json:"source_info_id"`
	OffsetInConcat  int `json:"offset_in_concat"`
	Length          int `json:"length"`
}

type PoolConcat struct {
	Pieces []PoolConcatPiece `json:"pieces"`
}

type PoolTransformedPiece struct {
	SrcStart int `json:"src_start"`
	SrcEnd   int `json:"src_end"`
	DstStart int `json:"dst_start"`
	DstEnd   int `json:"dst_end"`
}

type PoolTransformed struct {
	ParentID int                    `json:"parent_id"`
	Mapping  []PoolTransformedPiece `json:"mapping"`
}

func toPoolLocation(l Location) PoolLocation {
	return PoolLocation{Row: l.Row, Column: l.Column, Offset: l.Offset}
}

func toPoolRange(r Range) PoolRange {
	return PoolRange{Start: toPoolLocation(r.Start), End: toPoolLocation(r.End)}
}

// Serialize flattens every node in m into the topologically ordered pool
// schema used by the JSON writer. Entries are not deduplicated: every
// Offset call registers its own node, so equal spans can appear more than
// once. Synthetic nodes are written like any other Original-kind node and
// their Synthetic flag is not part of the entry; writer/jsonw's own pool
// builder marks them with a "Synthetic" mapping and gives them a $ref like
// any other node.
func (m *Map) Serialize() []PoolEntry {
	entries := make([]PoolEntry, 0, len(m.nodes))
	for _, n := range m.nodes {
		e := PoolEntry{ID: n.id, Range: toPoolRange(n.Range)}
		switch n.Kind {
		case Original:
			e.Mapping.Original = &PoolOriginal{FileID: int(n.File)}
		case Substring:
			e.Mapping.Substring = &PoolSubstring{ParentID: n.Parent.id, Offset: n.Offset}
		case Transformed:
			pieces := make([]PoolTransformedPiece, len(n.Pieces))
			for i, p := range n.Pieces {
				pieces[i] = PoolTransformedPiece{SrcStart: p.SrcStart, SrcEnd: p.SrcEnd, DstStart: p.DstStart, DstEnd: p.DstEnd}
			}
			e.Mapping.Transformed = &PoolTransformed{ParentID: n.Parent.id, Mapping: pieces}
		case Concat:
			pieces := make([]PoolConcatPiece, len(n.Concat))
			for i, p := range n.Concat {
				pieces[i] = PoolConcatPiece{SourceInfoID: p.Source.id, OffsetInConcat: p.Offset, Length: p.Length}
			}
			e.Mapping.Concat = &PoolConcat{Pieces: pieces}
		}
		entries = append(entries, e)
	}
	return entries
}

// Deserialize rebuilds a Map and a slice of *SourceInfo indexed by pool id
// from a pool previously produced by Serialize. Entries must already be in
// topological order (parents before children); Deserialize does not sort.
func Deserialize(filenames []string, entries []PoolEntry) (*Map, []*SourceInfo, error) {
	m := &Map{}
	for _, f := range filenames {
		m.AddFile(f)
	}
	nodes := make([]*SourceInfo, len(entries))
	for _, e := range entries {
		rng := Range{
			Start: Location{Row: e.Range.Start.Row, Column: e.Range.Start.Column, Offset: e.Range.Start.Offset},
			End:   Location{Row: e.Range.End.Row, Column: e.Range.End.Column, Offset: e.Range.End.Offset},
		}
		var s *SourceInfo
		switch {
		case e.Mapping.Original != nil:
			s = &SourceInfo{id: e.ID, Range: rng, Kind: Original, File: FileID(e.Mapping.Original.FileID)}
		case e.Mapping.Substring != nil:
			s = &SourceInfo{id: e.ID, Range: rng, Kind: Substring, Parent: nodes[e.Mapping.Substring.ParentID], Offset: e.Mapping.Substring.Offset}
		case e.Mapping.Transformed != nil:
			pieces := make([]PieceMapping, len(e.Mapping.Transformed.Mapping))
			for i, p := range e.Mapping.Transformed.Mapping {
				pieces[i] = PieceMapping{SrcStart: p.SrcStart, SrcEnd: p.SrcEnd, DstStart: p.DstStart, DstEnd: p.DstEnd}
			}
			s = &SourceInfo{id: e.ID, Range: rng, Kind: Transformed, Parent: nodes[e.Mapping.Transformed.ParentID], Pieces: pieces}
		case e.Mapping.Concat != nil:
			pieces := make([]ConcatPiece, len(e.Mapping.Concat.Pieces))
			for i, p := range e.Mapping.Concat.Pieces {
				pieces[i] = ConcatPiece{Source: nodes[p.SourceInfoID], Offset: p.OffsetInConcat, Length: p.Length}
			}
			s = &SourceInfo{id: e.ID, Range: rng, Kind: Concat, Concat: pieces}
		default:
			s = &SourceInfo{id: e.ID, Range: rng, Kind: Original, Synthetic: true}
		}
		nodes[e.ID] = s
	}
	m.nodes = nodes
	return m, nodes, nil
}
