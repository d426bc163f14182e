// Package match implements backward pattern matching over the IR graph: the
// core traversal primitive every fusion rule builds on.
package match

import (
	"github.com/vk/fusiongo/internal/ir"
)

// Step is one hop of a backward walk: follow the current node's input at
// InputIndex and require its producer to have the given operator type.
type Step struct {
	OpType     string
	InputIndex int
}

// Options adjust how a walk treats candidate producers.
type Options struct {
	// RequireSingleConsumer rejects a producer whose output feeds more than
	// one node, so that fusing it cannot steal a value another consumer
	// still needs.
	RequireSingleConsumer bool

	// Exclude rejects producers for which it returns true. The rule driver
	// uses it to skip nodes already staged for removal in the same pass.
	Exclude func(*ir.Node) bool
}

// ParentPath walks backward from start through producer edges, one Step at a
// time. It returns the matched producers in walk order and true on a full
// match. Any break in the chain yields false: a missing producer (the edge
// is a graph input or constant), a producer of the wrong operator type, an
// excluded producer, or a multi-consumer edge when uniqueness is required.
// The walk is read-only; it never mutates the graph.
func ParentPath(g *ir.Graph, start *ir.Node, steps []Step, opts Options) ([]*ir.Node, bool) {
	matched := make([]*ir.Node, 0, len(steps))
	current := start
	for _, step := range steps {
		edge := current.Input(step.InputIndex)
		if edge == "" {
			return nil, false
		}
		producer, ok := g.Producer(edge)
		if !ok {
			return nil, false
		}
		if producer.OpType != step.OpType {
			return nil, false
		}
		if opts.Exclude != nil && opts.Exclude(producer) {
			return nil, false
		}
		if opts.RequireSingleConsumer && len(g.Consumers(edge)) > 1 {
			return nil, false
		}
		matched = append(matched, producer)
		current = producer
	}
	return matched, true
}

// Parent matches a single backward hop, a convenience for one-step patterns.
func Parent(g *ir.Graph, start *ir.Node, opType string, inputIndex int, opts Options) (*ir.Node, bool) {
	matched, ok := ParentPath(g, start, []Step{{OpType: opType, InputIndex: inputIndex}}, opts)
	if !ok {
		return nil, false
	}
	return matched[0], true
}
