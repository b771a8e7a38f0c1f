// Completion: 100% - Reference evaluator complete
package main

// Evaluate walks the AST and computes its value directly. It is the reference
// the generated code is checked against.
func (p *NodePool) Evaluate(root NodeRef, env *Environment) int64 {
	memo := make(map[NodeRef]int64)
	var eval func(ref NodeRef) int64
	eval = func(ref NodeRef) int64 {
		if v, ok := memo[ref]; ok {
			return v
		}
		n := p.nodes[ref]
		var v int64
		switch n.Kind {
		case KindInt:
			v = n.Value
		case KindName:
			v = env[n.Value]
		default:
			v = fold(n.Kind, eval(n.Left), eval(n.Right))
		}
		memo[ref] = v
		return v
	}
	return eval(root)
}
