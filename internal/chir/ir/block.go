package ir

// Block is an ordered list of expressions whose final element is a
// terminator once control flow is finalized (§3.3). Predecessor and
// successor edges are stored redundantly on both ends, mirroring
// go/ssa.BasicBlock.Preds/Succs (other_examples' ssa-func.go addEdge /
// replacePred / removePred) so mutation helpers can keep both directions
// consistent.
type Block struct {
	id    int
	Exprs []*Expr
	Preds []*Block

	group *BlockGroup

	// CatchTypes is non-empty when this block is a landing pad for
	// with-exception terminators: the set of exception class types it
	// catches (§3.3).
	CatchTypes []*Type

	Comment string // debug label, not semantically meaningful
}

// ID returns the block's stable identity within its function.
func (b *Block) ID() int { return b.id }

// Group returns the BlockGroup that owns this block.
func (b *Block) Group() *BlockGroup { return b.group }

// Terminator returns the block's terminator expression, or nil if the
// block is not yet (or no longer) terminated — allowed only for dead
// code per the well-formedness checker (§3.3 invariant).
func (b *Block) Terminator() *Expr {
	if len(b.Exprs) == 0 {
		return nil
	}
	last := b.Exprs[len(b.Exprs)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

// addEdge records a control-flow edge from `from` to `to`.
func addEdge(from, to *Block) {
	to.Preds = append(to.Preds, from)
}

// removeEdge removes one occurrence of a from->to control-flow edge.
func removeEdge(from, to *Block) {
	for i, p := range to.Preds {
		if p == from {
			to.Preds = append(to.Preds[:i], to.Preds[i+1:]...)
			return
		}
	}
}

// replacePred replaces all occurrences of p in b's predecessor list with
// q (grounded on go/ssa.BasicBlock.replacePred).
func (b *Block) replacePred(p, q *Block) {
	for i, pred := range b.Preds {
		if pred == p {
			b.Preds[i] = q
		}
	}
}

// append adds expr to the end of the block and sets its owning block.
func (b *Block) append(e *Expr) {
	e.block = b
	b.Exprs = append(b.Exprs, e)
}

// indexOf returns the position of e within b.Exprs, or -1.
func (b *Block) indexOf(e *Expr) int {
	for i, x := range b.Exprs {
		if x == e {
			return i
		}
	}
	return -1
}

// BlockGroup is an ordered set of blocks with a designated entry block
// (§3.3). It is owned either by a function (as its body) or by a
// structured-control expression (If/Loop/ForIn branch bodies); every
// block group belongs to exactly one top-level function.
type BlockGroup struct {
	Entry  *Block
	Blocks []*Block

	// OwnerFunc is the enclosing top-level function (never nil once the
	// group is attached).
	OwnerFunc *Func
	// OwnerExpr is the structured-control expression that owns this
	// group, or nil when OwnerFunc owns it directly as its body.
	OwnerExpr *Expr
}

// AddBlock appends a freshly built block to the group.
func (g *BlockGroup) AddBlock(b *Block) {
	b.group = g
	g.Blocks = append(g.Blocks, b)
	if g.Entry == nil {
		g.Entry = b
	}
}

// RemoveBlock detaches b from the group's block list (does not touch its
// edges; callers must have already unlinked those).
func (g *BlockGroup) RemoveBlock(b *Block) {
	for i, x := range g.Blocks {
		if x == b {
			g.Blocks = append(g.Blocks[:i], g.Blocks[i+1:]...)
			break
		}
	}
	if g.Entry == b {
		if len(g.Blocks) > 0 {
			g.Entry = g.Blocks[0]
		} else {
			g.Entry = nil
		}
	}
}

// ReversePostOrder returns the group's blocks in reverse post-order from
// Entry, the iteration order required by the dataflow engine (§4.6) and
// by maybe-init/maybe-uninit worklists.
func (g *BlockGroup) ReversePostOrder() []*Block {
	if g.Entry == nil {
		return nil
	}
	visited := make(map[*Block]bool, len(g.Blocks))
	var order []*Block
	var visit func(b *Block)
	visit = func(b *Block) {
		if visited[b] {
			return
		}
		visited[b] = true
		if t := b.Terminator(); t != nil {
			for _, s := range t.Successors() {
				visit(s)
			}
		}
		order = append(order, b)
	}
	visit(g.Entry)
	// order is post-order; reverse in place for RPO.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
