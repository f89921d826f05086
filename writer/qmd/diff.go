package qmd

import (
	"bytes"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// DebugDiff renders a unified diff between a before and an after QMD
// serialization (SPEC_FULL.md §4.8). Write has no debug mode and nothing in
// this module calls DebugDiff. It is diagnostic output only and takes no part in the KeepBefore/
// UseAfter/Rewrite decision itself, which remains the pure source-range
// algorithm Write implements.
//
// Grounded on jinterlante1206-AleutianLocal's patch-validation use of
// sourcegraph/go-diff: the hunk body is a plain line-prefixed
// (" "/"-"/"+") byte blob computed here with a minimal common-prefix/
// common-suffix reduction (not a full Myers diff -- out of scope for a
// debug aid), and go-diff's own PrintFileDiff does the unified-diff
// header/hunk-marker formatting around it.
func DebugDiff(before, after []byte) ([]byte, error) {
	hunk := buildHunk(before, after)
	fd := &godiff.FileDiff{
		OrigName: "before.qmd",
		NewName:  "after.qmd",
		Hunks:    []*godiff.Hunk{hunk},
	}
	return godiff.PrintFileDiff(fd)
}

func splitLinesKeepEnd(b []byte) [][]byte {
	if len(b) == 0 {
		return nil
	}
	var lines [][]byte
	for len(b) > 0 {
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			lines = append(lines, b)
			break
		}
		lines = append(lines, b[:i+1])
		b = b[i+1:]
	}
	return lines
}

func commonPrefixLen(a, b [][]byte) int {
	n := 0
	for n < len(a) && n < len(b) && bytes.Equal(a[n], b[n]) {
		n++
	}
	return n
}

func commonSuffixLen(a, b [][]byte) int {
	n := 0
	for n < len(a) && n < len(b) && bytes.Equal(a[len(a)-1-n], b[len(b)-1-n]) {
		n++
	}
	return n
}

func buildHunk(before, after []byte) *godiff.Hunk {
	oldLines := splitLinesKeepEnd(before)
	newLines := splitLinesKeepEnd(after)

	prefix := commonPrefixLen(oldLines, newLines)
	suffix := commonSuffixLen(oldLines[prefix:], newLines[prefix:])

	var body bytes.Buffer
	for _, l := range oldLines[:prefix] {
		body.WriteString(" ")
		body.Write(l)
	}
	for _, l := range oldLines[prefix : len(oldLines)-suffix] {
		body.WriteString("-")
		body.Write(l)
	}
	for _, l := range newLines[prefix : len(newLines)-suffix] {
		body.WriteString("+")
		body.Write(l)
	}
	for _, l := range oldLines[len(oldLines)-suffix:] {
		body.WriteString(" ")
		body.Write(l)
	}

	return &godiff.Hunk{
		OrigStartLine: 1,
		OrigLines:     int32(len(oldLines)),
		NewStartLine:  1,
		NewLines:      int32(len(newLines)),
		Body:          body.Bytes(),
	}
}
