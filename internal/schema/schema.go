// Package schema declares the HCL surface of a model file. These structs are
// decode targets only; the hcl package translates them into the ir model.
package schema

import "github.com/hashicorp/hcl/v2"

// AttributesBlock captures the raw body of a node's 'attributes' block so
// its values can be evaluated into dynamically typed attribute values.
type AttributesBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Value declares the name and optional static type/shape of a tensor edge.
// It backs the `input`, `output`, and `tensor` blocks.
type Value struct {
	Name  string  `hcl:"name,label"`
	DType string  `hcl:"dtype,optional"`
	Shape []int64 `hcl:"shape,optional"`
}

// Initializer declares a graph-level constant tensor. Data is kept as an
// expression so scalars and element lists decode uniformly; external marks
// constants whose payload is stored outside the model file.
type Initializer struct {
	Name     string         `hcl:"name,label"`
	DType    string         `hcl:"dtype"`
	Shape    []int64        `hcl:"shape,optional"`
	Data     hcl.Expression `hcl:"data,optional"`
	External bool           `hcl:"external,optional"`
}

// Node is one operator in the model: an op type, ordered input and output
// tensor names (an empty string marks an omitted optional input), and an
// optional attributes block.
type Node struct {
	Name       string           `hcl:"name,label"`
	Op         string           `hcl:"op"`
	Domain     string           `hcl:"domain,optional"`
	Inputs     []string         `hcl:"inputs"`
	Outputs    []string         `hcl:"outputs"`
	Attributes *AttributesBlock `hcl:"attributes,block"`
}

// Model is the top-level `model` block: one dataflow graph.
type Model struct {
	Name         string         `hcl:"name,label"`
	Inputs       []*Value       `hcl:"input,block"`
	Outputs      []*Value       `hcl:"output,block"`
	Initializers []*Initializer `hcl:"initializer,block"`
	Values       []*Value       `hcl:"tensor,block"`
	Nodes        []*Node        `hcl:"node,block"`
}
