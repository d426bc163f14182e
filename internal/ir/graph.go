package ir

import (
	"fmt"

	"github.com/google/uuid"
)

// ValueInfo declares the statically known element type and shape of a tensor
// edge. Shape is nil when not declared.
type ValueInfo struct {
	Name  string
	DType DataType
	Shape []int64
}

// Graph owns an ordered sequence of operator nodes connected by named tensor
// edges, plus the graph-level inputs, outputs, and constants. Producer and
// consumer indexes are rebuilt lazily after mutations rather than maintained
// as live references, so removing nodes can never leave a dangling pointer
// behind.
type Graph struct {
	Name string

	nodes   []*Node
	inputs  []*ValueInfo
	outputs []*ValueInfo
	values  map[string]*ValueInfo
	inits   map[string]*Tensor

	producers map[string]*Node
	consumers map[string][]*Node
	stale     bool

	nameSeq map[string]int
}

// NewGraph creates an empty graph with the given name.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:    name,
		values:  make(map[string]*ValueInfo),
		inits:   make(map[string]*Tensor),
		nameSeq: make(map[string]int),
		stale:   true,
	}
}

// Nodes returns a snapshot of the node sequence in graph order. Scans iterate
// over the snapshot, so staged mutations committed later cannot invalidate an
// in-progress pass.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NodeCount returns the number of nodes currently in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Node looks a node up by its unique name.
func (g *Graph) Node(name string) (*Node, bool) {
	for _, n := range g.nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// AddInput declares a graph-level input edge.
func (g *Graph) AddInput(vi *ValueInfo) {
	g.inputs = append(g.inputs, vi)
}

// AddOutput declares a graph-level output edge.
func (g *Graph) AddOutput(vi *ValueInfo) {
	g.outputs = append(g.outputs, vi)
}

// AddValueInfo records declared type/shape information for an intermediate
// edge.
func (g *Graph) AddValueInfo(vi *ValueInfo) {
	g.values[vi.Name] = vi
}

// AddInitializer registers a named constant tensor.
func (g *Graph) AddInitializer(t *Tensor) {
	g.inits[t.Name] = t
}

// AddNode appends a node to the graph. It rejects duplicate node names and
// outputs that already have a producer, since either would corrupt the
// name-indexed structure.
func (g *Graph) AddNode(n *Node) error {
	if n.Name != "" {
		if _, exists := g.Node(n.Name); exists {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}
	}
	g.ensureIndexes()
	for _, out := range n.Outputs {
		if prev, ok := g.producers[out]; ok {
			return fmt.Errorf("output %q already produced by node %q", out, prev.Name)
		}
	}
	g.nodes = append(g.nodes, n)
	g.stale = true
	return nil
}

// RemoveNode detaches a node from the graph and invalidates the edge indexes.
func (g *Graph) RemoveNode(n *Node) {
	for i, cur := range g.nodes {
		if cur == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			g.stale = true
			return
		}
	}
}

// RemoveNodes detaches every node in the given slice.
func (g *Graph) RemoveNodes(nodes []*Node) {
	for _, n := range nodes {
		g.RemoveNode(n)
	}
}

// InputNames returns the declared graph input names in order.
func (g *Graph) InputNames() []string {
	names := make([]string, len(g.inputs))
	for i, vi := range g.inputs {
		names[i] = vi.Name
	}
	return names
}

// OutputNames returns the declared graph output names in order.
func (g *Graph) OutputNames() []string {
	names := make([]string, len(g.outputs))
	for i, vi := range g.outputs {
		names[i] = vi.Name
	}
	return names
}

// IsGraphInput reports whether name is a declared graph input.
func (g *Graph) IsGraphInput(name string) bool {
	for _, vi := range g.inputs {
		if vi.Name == name {
			return true
		}
	}
	return false
}

// IsGraphOutput reports whether name is a declared graph output.
func (g *Graph) IsGraphOutput(name string) bool {
	for _, vi := range g.outputs {
		if vi.Name == name {
			return true
		}
	}
	return false
}

// GraphInput returns the ValueInfo of a declared graph input.
func (g *Graph) GraphInput(name string) (*ValueInfo, bool) {
	for _, vi := range g.inputs {
		if vi.Name == name {
			return vi, true
		}
	}
	return nil, false
}

// Initializer resolves a tensor name to its constant value, distinguishing
// learned weights from runtime tensors.
func (g *Graph) Initializer(name string) (*Tensor, bool) {
	t, ok := g.inits[name]
	return t, ok
}

// Initializers returns all constant tensors keyed by name.
func (g *Graph) Initializers() map[string]*Tensor {
	return g.inits
}

// FindConstantInput scans a node's inputs in order and returns the index and
// value of the first one backed by a constant tensor. Rules use this to find
// weight or bias operands without assuming their position.
func (g *Graph) FindConstantInput(n *Node) (int, *Tensor, bool) {
	for i, name := range n.Inputs {
		if name == "" {
			continue
		}
		if t, ok := g.inits[name]; ok {
			return i, t, true
		}
	}
	return -1, nil, false
}

// ValueInfoFor resolves declared type/shape information for any edge: a
// graph input or output, an intermediate declaration, or an initializer.
func (g *Graph) ValueInfoFor(name string) (*ValueInfo, bool) {
	if vi, ok := g.values[name]; ok {
		return vi, true
	}
	for _, vi := range g.inputs {
		if vi.Name == name {
			return vi, true
		}
	}
	for _, vi := range g.outputs {
		if vi.Name == name {
			return vi, true
		}
	}
	if t, ok := g.inits[name]; ok {
		return &ValueInfo{Name: name, DType: t.DType, Shape: t.Dims}, true
	}
	return nil, false
}

// ValueInfos returns the declared intermediate-edge type information keyed
// by tensor name.
func (g *Graph) ValueInfos() map[string]*ValueInfo {
	return g.values
}

// ensureIndexes rebuilds the producer and consumer indexes when a mutation
// has invalidated them.
func (g *Graph) ensureIndexes() {
	if !g.stale {
		return
	}
	g.producers = make(map[string]*Node)
	g.consumers = make(map[string][]*Node)
	for _, n := range g.nodes {
		for _, out := range n.Outputs {
			if out != "" {
				g.producers[out] = n
			}
		}
		seen := make(map[string]bool, len(n.Inputs))
		for _, in := range n.Inputs {
			if in == "" || seen[in] {
				continue
			}
			seen[in] = true
			g.consumers[in] = append(g.consumers[in], n)
		}
	}
	g.stale = false
}

// Producer returns the node producing the named tensor, if any. Graph inputs
// and constants have no producer.
func (g *Graph) Producer(name string) (*Node, bool) {
	g.ensureIndexes()
	n, ok := g.producers[name]
	return n, ok
}

// Parent returns the producer of a node's input at position i.
func (g *Graph) Parent(n *Node, i int) (*Node, bool) {
	name := n.Input(i)
	if name == "" {
		return nil, false
	}
	return g.Producer(name)
}

// Consumers returns the nodes reading the named tensor. Each consumer is
// listed once, even when it reads the tensor through several input slots.
func (g *Graph) Consumers(name string) []*Node {
	g.ensureIndexes()
	return g.consumers[name]
}

// RewireInput points a single input slot of a node at a different tensor and
// invalidates the edge indexes. Cleanup passes use this for targeted
// splices; node inputs must never be mutated around the graph's back.
func (g *Graph) RewireInput(n *Node, i int, name string) {
	if i >= 0 && i < len(n.Inputs) {
		n.Inputs[i] = name
		g.stale = true
	}
}

// ReplaceInputOfAllNodes rewires every input slot reading old to read new.
func (g *Graph) ReplaceInputOfAllNodes(old, new string) {
	for _, n := range g.nodes {
		for i, in := range n.Inputs {
			if in == old {
				n.Inputs[i] = new
			}
		}
	}
	g.stale = true
}

// ReplaceOutputOfAllNodes rewires every output slot producing old to produce
// new.
func (g *Graph) ReplaceOutputOfAllNodes(old, new string) {
	for _, n := range g.nodes {
		for i, out := range n.Outputs {
			if out == old {
				n.Outputs[i] = new
			}
		}
	}
	g.stale = true
}

// IsSafeToRemove reports whether the candidate node set can be removed
// without changing externally observable behavior. Every tensor produced
// inside the set, other than those named in keepOutputs, must be consumed
// exclusively by other nodes within the set and must not be a graph output.
func (g *Graph) IsSafeToRemove(candidates []*Node, keepOutputs []string) bool {
	inSet := make(map[*Node]bool, len(candidates))
	for _, n := range candidates {
		inSet[n] = true
	}
	keep := make(map[string]bool, len(keepOutputs))
	for _, name := range keepOutputs {
		keep[name] = true
	}
	for _, n := range candidates {
		for _, out := range n.Outputs {
			if out == "" || keep[out] {
				continue
			}
			if g.IsGraphOutput(out) {
				return false
			}
			for _, consumer := range g.Consumers(out) {
				if !inSet[consumer] {
					return false
				}
			}
		}
	}
	return true
}

// Prune removes nodes with no path to any graph output and returns the
// number removed.
func (g *Graph) Prune() int {
	g.ensureIndexes()

	reachable := make(map[*Node]bool)
	frontier := g.OutputNames()
	for len(frontier) > 0 {
		name := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		producer, ok := g.producers[name]
		if !ok || reachable[producer] {
			continue
		}
		reachable[producer] = true
		for _, in := range producer.Inputs {
			if in != "" {
				frontier = append(frontier, in)
			}
		}
	}

	kept := g.nodes[:0]
	removed := 0
	for _, n := range g.nodes {
		if reachable[n] {
			kept = append(kept, n)
		} else {
			removed++
		}
	}
	g.nodes = kept
	if removed > 0 {
		g.stale = true
	}
	return removed
}

// NewNodeName generates a node name unique within the graph, using a
// per-prefix counter with a random suffix as collision fallback.
func (g *Graph) NewNodeName(prefix string) string {
	for {
		g.nameSeq[prefix]++
		name := fmt.Sprintf("%s_%d", prefix, g.nameSeq[prefix])
		if _, exists := g.Node(name); !exists {
			return name
		}
		// The model already contained a node with the counter name; fall back
		// to an entropy suffix rather than scanning the whole counter space.
		name = fmt.Sprintf("%s_%s", prefix, uuid.NewString()[:8])
		if _, exists := g.Node(name); !exists {
			return name
		}
	}
}

// Validate checks the structural invariants every committed mutation must
// preserve: unique node names, a single producer per edge, and no node input
// referencing a tensor that is neither a graph input, a constant, nor some
// node's output.
func (g *Graph) Validate() error {
	names := make(map[string]bool, len(g.nodes))
	produced := make(map[string]string)
	for _, n := range g.nodes {
		if n.Name == "" {
			return fmt.Errorf("node of type %q has no name", n.OpType)
		}
		if names[n.Name] {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}
		names[n.Name] = true
		for _, out := range n.Outputs {
			if out == "" {
				continue
			}
			if prev, ok := produced[out]; ok {
				return fmt.Errorf("tensor %q produced by both %q and %q", out, prev, n.Name)
			}
			produced[out] = n.Name
		}
	}
	for _, n := range g.nodes {
		for _, in := range n.Inputs {
			if in == "" {
				continue
			}
			if _, ok := produced[in]; ok {
				continue
			}
			if _, ok := g.inits[in]; ok {
				continue
			}
			if g.IsGraphInput(in) {
				continue
			}
			return fmt.Errorf("node %q input %q has no producer, graph input, or constant", n.Name, in)
		}
	}
	return nil
}
