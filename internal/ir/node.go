package ir

import "github.com/zclconf/go-cty/cty"

// Node is a single operator in the graph. Inputs and Outputs are ordered
// tensor names; an empty input slot stands for an omitted optional operand.
// Attrs holds heterogeneous configuration values keyed by name.
type Node struct {
	Name    string
	OpType  string
	Domain  string
	Inputs  []string
	Outputs []string
	Attrs   map[string]cty.Value
}

// NewNode constructs a node with the given operator type, unique name, and
// ordered input/output tensor names.
func NewNode(opType, name string, inputs, outputs []string) *Node {
	return &Node{
		Name:    name,
		OpType:  opType,
		Inputs:  inputs,
		Outputs: outputs,
		Attrs:   make(map[string]cty.Value),
	}
}

// Attr returns the named attribute value, reporting whether it is present.
func (n *Node) Attr(name string) (cty.Value, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// SetAttr stores an attribute value on the node.
func (n *Node) SetAttr(name string, v cty.Value) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]cty.Value)
	}
	n.Attrs[name] = v
}

// Input returns the input name at position i, or "" when the slot is out of
// range or empty.
func (n *Node) Input(i int) string {
	if i < 0 || i >= len(n.Inputs) {
		return ""
	}
	return n.Inputs[i]
}

// Output returns the output name at position i, or "" when out of range.
func (n *Node) Output(i int) string {
	if i < 0 || i >= len(n.Outputs) {
		return ""
	}
	return n.Outputs[i]
}
