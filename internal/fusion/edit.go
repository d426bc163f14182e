package fusion

import "github.com/vk/fusiongo/internal/ir"

// Edit is the batch of staged graph mutations accumulated during one rule
// scan. Nothing touches the graph until Commit applies the whole batch, so
// an in-progress scan can never observe a half-rewritten graph.
type Edit struct {
	removals []*ir.Node
	staged   map[string]bool
	adds     []*ir.Node
	subgraph map[string]string
}

// NewEdit creates an empty staging batch.
func NewEdit() *Edit {
	return &Edit{
		staged:   make(map[string]bool),
		subgraph: make(map[string]string),
	}
}

// StageRemoval marks nodes for removal at commit time.
func (e *Edit) StageRemoval(nodes ...*ir.Node) {
	for _, n := range nodes {
		if e.staged[n.Name] {
			continue
		}
		e.staged[n.Name] = true
		e.removals = append(e.removals, n)
	}
}

// StageAdd queues a new node for insertion at commit time, recording the
// subgraph scope it was built under.
func (e *Edit) StageAdd(n *ir.Node, subgraph string) {
	e.adds = append(e.adds, n)
	e.subgraph[n.Name] = subgraph
}

// Staged reports whether a node is already marked for removal. The rule
// driver and the pattern matcher use this so a node can never be matched
// twice within one pass.
func (e *Edit) Staged(n *ir.Node) bool {
	return e.staged[n.Name]
}

// Empty reports whether nothing has been staged.
func (e *Edit) Empty() bool {
	return len(e.removals) == 0 && len(e.adds) == 0
}

// Subgraph returns the scope a staged insertion was built under.
func (e *Edit) Subgraph(name string) (string, bool) {
	s, ok := e.subgraph[name]
	return s, ok
}
