package passes

import (
	"context"

	"github.com/vk/fusiongo/internal/ctxlog"
	"github.com/vk/fusiongo/internal/ir"
)

// RemoveIdentityNodes removes Identity pass-throughs, except those producing
// a declared graph output, rewiring all consumers of each removed node's
// output to read its input directly. Returns the number removed.
func RemoveIdentityNodes(ctx context.Context, g *ir.Graph) int {
	logger := ctxlog.FromContext(ctx)

	var toRemove []*ir.Node
	for _, n := range g.Nodes() {
		if n.OpType != opIdentity {
			continue
		}
		if g.IsGraphOutput(n.Outputs[0]) {
			continue
		}
		g.ReplaceInputOfAllNodes(n.Outputs[0], n.Inputs[0])
		toRemove = append(toRemove, n)
	}
	g.RemoveNodes(toRemove)

	if len(toRemove) > 0 {
		logger.Info("Removed Identity nodes.", "removed", len(toRemove))
	}
	return len(toRemove)
}
