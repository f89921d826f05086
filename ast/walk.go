package ast

// WalkStatus controls traversal continuation, mirroring the goldmark
// ast.Walk idiom the teacher (catmd) drives its own transforms with.
type WalkStatus int

const (
	WalkContinue WalkStatus = iota
	WalkSkipChildren
	WalkStop
)

// BlockVisitor is called for every block, both on entry and exit (entering
// distinguishes the two). Returning WalkStop aborts the whole traversal;
// WalkSkipChildren skips this node's children but continues the walk.
type BlockVisitor func(b Block, entering bool) (WalkStatus, error)

// InlineVisitor is the Inline equivalent of BlockVisitor.
type InlineVisitor func(in Inline, entering bool) (WalkStatus, error)

// WalkBlocks walks blocks and all of their descendant blocks and inlines,
// depth-first, calling blockFn on blocks and inlineFn on inlines. Either
// callback may be nil to skip that node kind.
func WalkBlocks(blocks []Block, blockFn BlockVisitor, inlineFn InlineVisitor) error {
	for _, b := range blocks {
		status, err := WalkBlock(b, blockFn, inlineFn)
		if err != nil {
			return err
		}
		if status == WalkStop {
			return nil
		}
	}
	return nil
}

var errStop = stopSentinel{}

type stopSentinel struct{}

func (stopSentinel) Error() string { return "ast: walk stopped" }

// WalkBlock walks a single block and its descendants. A sentinel error is
// used internally to unwind on WalkStop; callers of the exported WalkBlocks
// never see it (it is swallowed at the top level). WalkBlock itself is
// exported for callers that already have a single block in hand.
func WalkBlock(b Block, blockFn BlockVisitor, inlineFn InlineVisitor) (WalkStatus, error) {
	status := WalkContinue
	var err error
	if blockFn != nil {
		status, err = blockFn(b, true)
		if err != nil {
			if _, ok := err.(stopSentinel); ok {
				return WalkStop, nil
			}
			return WalkStop, err
		}
		if status == WalkStop {
			return WalkStop, nil
		}
	}

	if status != WalkSkipChildren {
		if err := walkBlockChildren(b, blockFn, inlineFn); err != nil {
			if _, ok := err.(stopSentinel); ok {
				return WalkStop, nil
			}
			return WalkStop, err
		}
	}

	if blockFn != nil {
		status, err = blockFn(b, false)
		if err != nil {
			return WalkStop, err
		}
		if status == WalkStop {
			return WalkStop, nil
		}
	}
	return WalkContinue, nil
}

func walkBlockChildren(b Block, blockFn BlockVisitor, inlineFn InlineVisitor) error {
	switch n := b.(type) {
	case *Paragraph:
		return WalkInlines(n.Inlines, inlineFn)
	case *Plain:
		return WalkInlines(n.Inlines, inlineFn)
	case *Heading:
		return WalkInlines(n.Inlines, inlineFn)
	case *BlockQuote:
		return walkBlocksInternal(n.Blocks, blockFn, inlineFn)
	case *BulletList:
		for _, item := range n.Items {
			if err := walkBlocksInternal(item, blockFn, inlineFn); err != nil {
				return err
			}
		}
	case *OrderedList:
		for _, item := range n.Items {
			if err := walkBlocksInternal(item, blockFn, inlineFn); err != nil {
				return err
			}
		}
	case *DefinitionList:
		for _, pair := range n.Items {
			if err := WalkInlines(pair.Term, inlineFn); err != nil {
				return err
			}
			for _, defn := range pair.Definitions {
				if err := walkBlocksInternal(defn, blockFn, inlineFn); err != nil {
					return err
				}
			}
		}
	case *LineBlock:
		for _, line := range n.Lines {
			if err := WalkInlines(line, inlineFn); err != nil {
				return err
			}
		}
	case *Table:
		if err := WalkInlines(n.Caption, inlineFn); err != nil {
			return err
		}
		rows := append([]TableRow{n.Head}, flattenBodies(n.Bodies)...)
		if n.Foot != nil {
			rows = append(rows, *n.Foot)
		}
		for _, row := range rows {
			for _, cell := range row.Cells {
				if err := walkBlocksInternal(cell.Blocks, blockFn, inlineFn); err != nil {
					return err
				}
			}
		}
	case *Figure:
		if err := WalkInlines(n.Caption, inlineFn); err != nil {
			return err
		}
		return walkBlocksInternal(n.Blocks, blockFn, inlineFn)
	case *Div:
		return walkBlocksInternal(n.Blocks, blockFn, inlineFn)
	case *FencedDiv:
		return walkBlocksInternal(n.Blocks, blockFn, inlineFn)
	case *NoteDefinition:
		return walkBlocksInternal(n.Blocks, blockFn, inlineFn)
	}
	return nil
}

func flattenBodies(bodies []TableBody) []TableRow {
	var rows []TableRow
	for _, b := range bodies {
		rows = append(rows, b.Rows...)
	}
	return rows
}

func walkBlocksInternal(blocks []Block, blockFn BlockVisitor, inlineFn InlineVisitor) error {
	for _, b := range blocks {
		st, err := WalkBlock(b, blockFn, inlineFn)
		if err != nil {
			return err
		}
		if st == WalkStop {
			return errStop
		}
	}
	return nil
}

// WalkInlines walks a flat inline sequence and all descendant inlines.
func WalkInlines(inlines []Inline, fn InlineVisitor) error {
	if fn == nil {
		return nil
	}
	for _, in := range inlines {
		st, err := walkInline(in, fn)
		if err != nil {
			return err
		}
		if st == WalkStop {
			return errStop
		}
	}
	return nil
}

func walkInline(in Inline, fn InlineVisitor) (WalkStatus, error) {
	status, err := fn(in, true)
	if err != nil {
		return WalkStop, err
	}
	if status == WalkStop {
		return WalkStop, nil
	}
	if status != WalkSkipChildren {
		if err := walkInlineChildren(in, fn); err != nil {
			if _, ok := err.(stopSentinel); ok {
				return WalkStop, nil
			}
			return WalkStop, err
		}
	}
	status, err = fn(in, false)
	if err != nil {
		return WalkStop, err
	}
	return status, nil
}

func walkInlineChildren(in Inline, fn InlineVisitor) error {
	children := func(xs []Inline) error {
		for _, c := range xs {
			st, err := walkInline(c, fn)
			if err != nil {
				return err
			}
			if st == WalkStop {
				return errStop
			}
		}
		return nil
	}
	switch n := in.(type) {
	case *Emph:
		return children(n.Inlines)
	case *Strong:
		return children(n.Inlines)
	case *Strikeout:
		return children(n.Inlines)
	case *Superscript:
		return children(n.Inlines)
	case *Subscript:
		return children(n.Inlines)
	case *SmallCaps:
		return children(n.Inlines)
	case *Underline:
		return children(n.Inlines)
	case *Quoted:
		return children(n.Inlines)
	case *Link:
		return children(n.Inlines)
	case *Image:
		return children(n.Inlines)
	case *Span:
		return children(n.Inlines)
	case *Highlight:
		return children(n.Inlines)
	case *Insert:
		return children(n.Inlines)
	case *Delete:
		return children(n.Inlines)
	case *EditComment:
		return children(n.Inlines)
	case *Note:
		return walkBlocksInternal(n.Blocks, nil, fn)
	}
	return nil
}
