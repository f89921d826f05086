package astbuild

import (
	"sort"

	"github.com/quarto-dev/q2-sub015/sourcemap"
)

// lineIndex maps an absolute byte offset in a document to a 0-based
// (row, column) pair. Columns are raw byte offsets from the start of their
// line; tabs are not expanded here, matching sourcemap.Location's
// documented contract (tab-stop-aware columns are a blockscan concern).
type lineIndex struct {
	starts []int
}

func newLineIndex(src []byte) lineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts}
}

func (li lineIndex) locate(offset int) sourcemap.Location {
	row := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	if row < 0 {
		row = 0
	}
	return sourcemap.Location{Row: row, Column: offset - li.starts[row], Offset: offset}
}
