package passes

import "github.com/vk/fusiongo/internal/ir"

// Operator types the cleanup passes recognize.
const (
	opCast       = "Cast"
	opIdentity   = "Identity"
	opReshape    = "Reshape"
	opQuantize   = "QuantizeLinear"
	opDequantize = "DequantizeLinear"
)

const attrCastTo = "to"

// spliceOut removes a pass-through node whose output carries the same value
// as its input, preserving boundary tensor identities.
//
// When the node's output is a declared graph output its name is fixed, so
// the surviving upstream tensor is renamed to it instead of being spliced.
// When the input is additionally a declared graph input, both names are
// fixed boundary identities that cannot be merged, and the node stays.
func spliceOut(g *ir.Graph, n *ir.Node) bool {
	in, out := n.Inputs[0], n.Outputs[0]
	if g.IsGraphOutput(out) {
		if g.IsGraphInput(in) {
			return false
		}
		g.RemoveNode(n)
		g.ReplaceOutputOfAllNodes(in, out)
		g.ReplaceInputOfAllNodes(in, out)
		return true
	}
	g.ReplaceInputOfAllNodes(out, in)
	g.RemoveNode(n)
	return true
}
