// Completion: 100% - Unparser complete
package main

import (
	"strconv"
	"strings"
)

// SharedMarker is printed right after the opening parenthesis of a shared node
const SharedMarker = '!'

// Unparse renders the AST rooted at root in infix form with every binary
// node parenthesized. Call MarkShared first for the sharing markers.
func (p *NodePool) Unparse(root NodeRef) string {
	var sb strings.Builder
	p.unparse(&sb, root)
	return sb.String()
}

func (p *NodePool) unparse(sb *strings.Builder, ref NodeRef) {
	n := p.nodes[ref]
	switch n.Kind {
	case KindInt:
		sb.WriteString(strconv.FormatInt(n.Value, 10))
	case KindName:
		sb.WriteByte(byte(n.Value))
	default:
		sb.WriteByte('(')
		if n.IsShared() {
			sb.WriteByte(SharedMarker)
		}
		p.unparse(sb, n.Left)
		sb.WriteString(n.Kind.Op())
		p.unparse(sb, n.Right)
		sb.WriteByte(')')
	}
}
