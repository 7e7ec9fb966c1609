package ir

// ReplaceOperand swaps an operand in place, updating both values' user
// sets. Idempotent when old == new (§4.2).
func (e *Expr) ReplaceOperand(old, new Value) {
	if old == new {
		return
	}
	replaced := false
	for i, op := range e.Operands {
		if op == old {
			e.Operands[i] = new
			replaced = true
		}
	}
	if !replaced {
		return
	}
	if !operandStillPresent(e.Operands, old) {
		old.removeUser(e)
	}
	new.addUser(e)
}

func operandStillPresent(ops []Value, v Value) bool {
	for _, op := range ops {
		if op == v {
			return true
		}
	}
	return false
}

// ReplaceWith redirects all uses of e's result to newExpr's result,
// unlinks e's own operands, and substitutes newExpr for e in e's parent
// block in place (§4.2). For terminators, newExpr must also be a
// terminator, and predecessor edges to successors are transferred.
func (e *Expr) ReplaceWith(newExpr *Expr) {
	if e.result != nil && newExpr.result != nil {
		for user := range e.result.Users() {
			user.ReplaceOperand(e.result, newExpr.result)
		}
	}

	for _, op := range e.Operands {
		op.removeUser(e)
	}

	if e.IsTerminator() {
		for _, old := range e.Successors() {
			if old == nil {
				continue
			}
			removeEdge(e.block, old)
		}
		for _, nw := range newExpr.Successors() {
			if nw == nil {
				continue
			}
			addEdge(e.block, nw)
		}
	}

	b := e.block
	idx := b.indexOf(e)
	if idx >= 0 {
		newExpr.block = b
		b.Exprs[idx] = newExpr
	}
	e.block = nil
}

// MoveBefore detaches e and re-inserts it immediately before other,
// within other's block.
func (e *Expr) MoveBefore(other *Expr) {
	e.detachFromBlock()
	dst := other.block
	idx := dst.indexOf(other)
	dst.Exprs = append(dst.Exprs, nil)
	copy(dst.Exprs[idx+1:], dst.Exprs[idx:])
	dst.Exprs[idx] = e
	e.block = dst
}

// MoveAfter detaches e and re-inserts it immediately after other, within
// other's block.
func (e *Expr) MoveAfter(other *Expr) {
	e.detachFromBlock()
	dst := other.block
	idx := dst.indexOf(other)
	dst.Exprs = append(dst.Exprs, nil)
	copy(dst.Exprs[idx+2:], dst.Exprs[idx+1:])
	dst.Exprs[idx+1] = e
	e.block = dst
}

// MoveTo detaches e and appends it to the end of dst. Terminators moved
// out of their original block drop their successor edges.
func (e *Expr) MoveTo(dst *Block) {
	e.detachFromBlock()
	dst.append(e)
}

// detachFromBlock removes e from its current block's expression list
// without touching operand use-def or predecessor edges (used by the
// Move* family, which re-homes e immediately afterward).
func (e *Expr) detachFromBlock() {
	if e.block == nil {
		return
	}
	src := e.block
	if idx := src.indexOf(e); idx >= 0 {
		src.Exprs = append(src.Exprs[:idx], src.Exprs[idx+1:]...)
	}
	if e.IsTerminator() {
		for _, s := range e.Successors() {
			if s != nil {
				removeEdge(src, s)
			}
		}
	}
	e.block = nil
}

// RemoveSelfFromBlock detaches e and erases its operand-use edges; for
// terminators, also removes predecessor edges from its successors
// (§3.6: passes never free nodes, they unlink them and leave reclamation
// to the builder's destructor).
func (e *Expr) RemoveSelfFromBlock() {
	if e.IsTerminator() {
		for _, s := range e.Successors() {
			if s != nil && e.block != nil {
				removeEdge(e.block, s)
			}
		}
	}
	if e.block != nil {
		if idx := e.block.indexOf(e); idx >= 0 {
			e.block.Exprs = append(e.block.Exprs[:idx], e.block.Exprs[idx+1:]...)
		}
		e.block = nil
	}
	for _, op := range e.Operands {
		op.removeUser(e)
	}
}
