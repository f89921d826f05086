package blockscan

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/quarto-dev/q2-sub015/diag"
)

// Serialize encodes the scanner state compactly, honoring the ≤1024-byte
// ABI limit (spec.md §3.3). The wire format is deliberately simple (fixed
// scalar header + one record per stack entry) since it only needs to be
// compact, not forward-compatible across versions.
func (s *State) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	flags := byte(0)
	if s.Mode == Matching {
		flags |= 1
	}
	if s.WasSoftLineBreak {
		flags |= 2
	}
	if s.CloseBlock {
		flags |= 4
	}
	buf.WriteByte(flags)
	writeVarint(&buf, s.MatchedCount)
	writeVarint(&buf, s.PendingIndent)
	writeVarint(&buf, s.Column)
	writeVarint(&buf, s.FenceDelimLen)
	writeVarint(&buf, s.CodeSpanDelimLen)
	writeVarint(&buf, s.LatexSpanDelimLen)
	writeVarint(&buf, len(s.Stack))
	for _, ob := range s.Stack {
		buf.WriteByte(byte(ob.Kind))
		writeVarint(&buf, ob.Indent)
		writeVarint(&buf, ob.FenceLen)
		buf.WriteByte(ob.FenceChar)
	}
	if buf.Len() > maxStateBytes {
		return nil, fmt.Errorf("blockscan: serialized state %d bytes exceeds ABI limit %d", buf.Len(), maxStateBytes)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a State previously produced by Serialize.
func Deserialize(data []byte) (*State, error) {
	r := bytes.NewReader(data)
	flags, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("blockscan: reading flags: %w", err)
	}
	s := &State{}
	if flags&1 != 0 {
		s.Mode = Matching
	} else {
		s.Mode = Normal
	}
	s.WasSoftLineBreak = flags&2 != 0
	s.CloseBlock = flags&4 != 0

	s.MatchedCount, err = readVarint(r)
	if err != nil {
		return nil, err
	}
	s.PendingIndent, err = readVarint(r)
	if err != nil {
		return nil, err
	}
	s.Column, err = readVarint(r)
	if err != nil {
		return nil, err
	}
	s.FenceDelimLen, err = readVarint(r)
	if err != nil {
		return nil, err
	}
	s.CodeSpanDelimLen, err = readVarint(r)
	if err != nil {
		return nil, err
	}
	s.LatexSpanDelimLen, err = readVarint(r)
	if err != nil {
		return nil, err
	}
	n, err := readVarint(r)
	if err != nil {
		return nil, err
	}
	s.Stack = make([]OpenBlock, 0, n)
	for i := 0; i < n; i++ {
		kindByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		indent, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		fenceLen, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		fenceChar, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		s.Stack = append(s.Stack, OpenBlock{
			Kind:      BlockKind(kindByte),
			Indent:    indent,
			FenceLen:  fenceLen,
			FenceChar: fenceChar,
		})
	}
	return s, nil
}

func writeVarint(buf *bytes.Buffer, v int) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(v))
	buf.Write(tmp[:n])
}

func readVarint(r *bytes.Reader) (int, error) {
	v, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, fmt.Errorf("blockscan: reading varint: %w", err)
	}
	return int(v), nil
}

// Signature produces a canonical digest of the scanner stack shape
// (spec.md §4.7 step 1: "captures the current parse-state signature"). Two
// states with structurally identical stacks (same Kind sequence; scalar
// indentation/fence details are not in scope of the signature, so a
// diagnostic authored against one numbered-indent variant of a construct
// applies to all) produce the same signature.
func (s *State) Signature() diag.StateSignature {
	var buf bytes.Buffer
	if s.Mode == Matching {
		buf.WriteString("M")
	} else {
		buf.WriteString("N")
	}
	if s.WasSoftLineBreak {
		buf.WriteString("s")
	}
	for _, ob := range s.Stack {
		buf.WriteString("/")
		buf.WriteString(ob.Kind.String())
	}
	return diag.StateSignature(buf.String())
}
