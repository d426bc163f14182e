package passes

import (
	"context"

	"github.com/vk/fusiongo/internal/ctxlog"
	"github.com/vk/fusiongo/internal/ir"
)

// QDQEligibleForFusion reports whether a QuantizeLinear or DequantizeLinear
// node is a valid candidate for fusion:
//
//  1. it quantizes per tensor, not per channel (scale and zero point must be
//     scalar),
//  2. its scale operand is a compile-time constant, and
//  3. its zero point, when present, is a constant equal to exactly 0. An
//     absent zero point is implicitly 0 per format convention and eligible.
func QDQEligibleForFusion(ctx context.Context, g *ir.Graph, n *ir.Node) bool {
	logger := ctxlog.FromContext(ctx)

	if n.OpType != opQuantize && n.OpType != opDequantize {
		logger.Debug("Node is not a Q/DQ node.", "op_type", n.OpType, "node", n.Name)
		return false
	}

	scale, ok := g.Initializer(n.Input(1))
	if !ok || !scale.IsScalar() {
		return false
	}

	// No zero-point operand means it is 0.
	if len(n.Inputs) != 3 {
		return true
	}

	zeroPoint, ok := g.Initializer(n.Inputs[2])
	if !ok || !zeroPoint.IsScalar() {
		return false
	}
	value, ok := zeroPoint.ScalarInt()
	return ok && value == 0
}
