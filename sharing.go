// Completion: 100% - Sharing analysis complete
package main

// Share counts are recomputed after parsing from the edges that are reachable
// from the root. Counting intern hits while building would also count nodes
// that a later rewrite discarded, and mark them shared without cause.

// MarkShared sets Shares on every node: the number of edges of the final AST
// that reference it, plus one for the root. Unreachable nodes get zero.
func (p *NodePool) MarkShared(root NodeRef) {
	for i := range p.nodes {
		p.nodes[i].Shares = 0
	}
	if root == NoNode {
		return
	}

	p.nodes[root].Shares = 1
	visited := make([]bool, len(p.nodes))
	var walk func(ref NodeRef)
	walk = func(ref NodeRef) {
		if visited[ref] {
			return
		}
		visited[ref] = true
		n := p.nodes[ref]
		if !n.Kind.IsBinary() {
			return
		}
		p.nodes[n.Left].Shares++
		p.nodes[n.Right].Shares++
		walk(n.Right)
		walk(n.Left)
	}
	walk(root)
}

// Reachable returns the nodes reachable from root in post order, each once
func (p *NodePool) Reachable(root NodeRef) []NodeRef {
	if root == NoNode {
		return nil
	}
	var order []NodeRef
	visited := make([]bool, len(p.nodes))
	var walk func(ref NodeRef)
	walk = func(ref NodeRef) {
		if visited[ref] {
			return
		}
		visited[ref] = true
		n := p.nodes[ref]
		if n.Kind.IsBinary() {
			walk(n.Right)
			walk(n.Left)
		}
		order = append(order, ref)
	}
	walk(root)
	return order
}

// SharedBinaries counts the reachable Add/Mul nodes that are shared
func (p *NodePool) SharedBinaries(root NodeRef) int {
	count := 0
	for _, ref := range p.Reachable(root) {
		n := p.nodes[ref]
		if n.Kind.IsBinary() && n.IsShared() {
			count++
		}
	}
	return count
}
