// Completion: 100% - Rewrite engine complete
package main

// optimizer.go - The interning term rewriter
//
// Every node of the AST is created through Build, which fuses:
// - common subexpression elimination (interning against the whole pool)
// - constant folding (2 + 3 → 5)
// - algebraic simplification (x * 1 → x, x + x → x * 2, ...)
// - reassociation that migrates constants to the right so they fold later
//
// Several rules call Build recursively, so one call may insert many nodes.

// Build returns the canonical node for kind(left, right) or a leaf with value.
// Leaves ignore left and right; binary nodes ignore value.
func (p *NodePool) Build(kind NodeKind, left, right NodeRef, value int64) (NodeRef, error) {
	if kind.IsBinary() {
		value = 0
		// Move constants to the right
		if p.isInt(left) {
			left, right = right, left
		}
	} else {
		left, right = NoNode, NoNode
	}

	// CSE
	key := nodeKey{kind: kind, left: left, right: right, value: value}
	if ref, ok := p.index[key]; ok {
		p.nodes[ref].Hits++
		return ref, nil
	}

	if kind.IsBinary() {
		if ref, rewritten, err := p.rewrite(kind, left, right); rewritten || err != nil {
			return ref, err
		}
	}

	return p.insert(key)
}

// rewrite applies the first matching folding or simplification rule.
// The order matters: later rules assume the earlier ones did not fire.
func (p *NodePool) rewrite(kind NodeKind, l, r NodeRef) (NodeRef, bool, error) {
	ln, rn := p.nodes[l], p.nodes[r]

	// k1 + k2 -> [k1 + k2], k1 * k2 -> [k1 * k2]
	if ln.Kind == KindInt && rn.Kind == KindInt {
		ref, err := p.Int(fold(kind, ln.Value, rn.Value))
		return ref, true, err
	}

	if rn.Kind == KindInt {
		switch {
		// x * 0 -> 0
		case kind == KindMul && rn.Value == 0:
			ref, err := p.Int(0)
			return ref, true, err
		// x * 1 -> x
		case kind == KindMul && rn.Value == 1:
			return l, true, nil
		// x + 0 -> x
		case kind == KindAdd && rn.Value == 0:
			return l, true, nil
		}
	}

	// x + x -> 2 * x
	if kind == KindAdd && l == r {
		two, err := p.Int(2)
		if err != nil {
			return NoNode, true, err
		}
		ref, err := p.Mul(two, l)
		return ref, true, err
	}

	// (x + k1) + y -> x + (y + k1)
	// (x * k1) * y -> x * (y * k1)
	if ln.Kind == kind && p.isInt(ln.Right) {
		inner, err := p.Build(kind, r, ln.Right, 0)
		if err != nil {
			return NoNode, true, err
		}
		ref, err := p.Build(kind, ln.Left, inner, 0)
		return ref, true, err
	}

	// (x + k2) * k1 -> x * k1 + k2 * k1
	if kind == KindMul && rn.Kind == KindInt && ln.Kind == KindAdd && p.isInt(ln.Right) {
		scaled, err := p.Mul(ln.Left, r)
		if err != nil {
			return NoNode, true, err
		}
		offset, err := p.Mul(ln.Right, r)
		if err != nil {
			return NoNode, true, err
		}
		ref, err := p.Add(scaled, offset)
		return ref, true, err
	}

	return NoNode, false, nil
}

// fold computes k1 op k2 with two's complement wrap-around
func fold(kind NodeKind, k1, k2 int64) int64 {
	if kind == KindAdd {
		return k1 + k2
	}
	return k1 * k2
}

// Int builds an integer literal
func (p *NodePool) Int(v int64) (NodeRef, error) {
	return p.Build(KindInt, NoNode, NoNode, v)
}

// Name builds a variable reference. The slot is the first character of the name.
func (p *NodePool) Name(slot byte) (NodeRef, error) {
	return p.Build(KindName, NoNode, NoNode, int64(slot))
}

// Add builds l + r
func (p *NodePool) Add(l, r NodeRef) (NodeRef, error) {
	return p.Build(KindAdd, l, r, 0)
}

// Mul builds l * r
func (p *NodePool) Mul(l, r NodeRef) (NodeRef, error) {
	return p.Build(KindMul, l, r, 0)
}
