// Completion: 100% - AST node pool complete
package main

import (
	"fmt"
	"io"
)

// NodeKind tags a node of the expression DAG
type NodeKind uint8

const (
	KindInt NodeKind = iota
	KindName
	KindAdd
	KindMul
)

func (k NodeKind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindName:
		return "Name"
	case KindAdd:
		return "Add"
	case KindMul:
		return "Mul"
	default:
		return "unknown"
	}
}

// IsBinary returns true for Add and Mul
func (k NodeKind) IsBinary() bool {
	return k == KindAdd || k == KindMul
}

// Op returns the infix operator of a binary kind
func (k NodeKind) Op() string {
	switch k {
	case KindAdd:
		return "+"
	case KindMul:
		return "*"
	default:
		return ""
	}
}

// NodeRef is an index into a NodePool. It stays valid for the whole compilation.
type NodeRef int32

// NoNode is the child reference of leaves
const NoNode NodeRef = -1

// Node is one entry of the intern pool
type Node struct {
	Kind  NodeKind
	Left  NodeRef
	Right NodeRef
	Value int64 // literal for Int, environment slot for Name

	Hits   int // intern lookups that returned this node while building
	Shares int // edges of the final AST that reference this node (root counts as one)
}

// IsShared returns true when more than one edge of the final AST references the node
func (n Node) IsShared() bool {
	return n.Shares >= 2
}

type nodeKey struct {
	kind  NodeKind
	left  NodeRef
	right NodeRef
	value int64
}

// NodePool is the append-only arena that owns every node of one compilation.
// Nodes are never removed; structurally identical nodes are interned.
type NodePool struct {
	nodes []Node
	index map[nodeKey]NodeRef
	limit int
	trace io.Writer // nil unless verbose
}

// NewNodePool creates a pool that holds at most limit nodes
func NewNodePool(limit int) *NodePool {
	return &NodePool{
		nodes: make([]Node, 0, 64),
		index: make(map[nodeKey]NodeRef),
		limit: limit,
	}
}

// SetTrace makes the pool log every insertion to w
func (p *NodePool) SetTrace(w io.Writer) {
	p.trace = w
}

// Len returns the number of nodes in the pool, reachable or not
func (p *NodePool) Len() int {
	return len(p.nodes)
}

// Limit returns the pool capacity
func (p *NodePool) Limit() int {
	return p.limit
}

// At returns a copy of the node at ref
func (p *NodePool) At(ref NodeRef) Node {
	return p.nodes[ref]
}

// Nodes returns the pool contents in insertion order. The slice must not be modified.
func (p *NodePool) Nodes() []Node {
	return p.nodes
}

func (p *NodePool) isInt(ref NodeRef) bool {
	return p.nodes[ref].Kind == KindInt
}

// insert appends a node that is known not to be in the pool yet
func (p *NodePool) insert(key nodeKey) (NodeRef, error) {
	if len(p.nodes) >= p.limit {
		return NoNode, CapacityError("node pool", p.limit)
	}
	ref := NodeRef(len(p.nodes))
	p.nodes = append(p.nodes, Node{
		Kind:  key.kind,
		Left:  key.left,
		Right: key.right,
		Value: key.value,
	})
	p.index[key] = ref
	if p.trace != nil {
		fmt.Fprintf(p.trace, "pool: #%d = %s\n", ref, p.describe(ref))
	}
	return ref, nil
}

// describe renders one node without recursing, for traces and dumps
func (p *NodePool) describe(ref NodeRef) string {
	n := p.nodes[ref]
	switch n.Kind {
	case KindInt:
		return fmt.Sprintf("Int(%d)", n.Value)
	case KindName:
		return fmt.Sprintf("Name(%c)", rune(n.Value))
	default:
		return fmt.Sprintf("%s(#%d, #%d)", n.Kind, n.Left, n.Right)
	}
}
