package passes

import (
	"context"

	"github.com/vk/fusiongo/internal/ctxlog"
	"github.com/vk/fusiongo/internal/ir"
	"github.com/vk/fusiongo/internal/shapeinfer"
)

// RemoveRedundantReshapes removes Reshape nodes whose inferred input shape
// equals their inferred output shape, extent by extent. Boundary handling is
// the same as for redundant casts. The pass skips entirely when shape
// inference is unavailable. Returns the number of reshapes removed.
func RemoveRedundantReshapes(ctx context.Context, g *ir.Graph, oracle shapeinfer.Oracle) int {
	logger := ctxlog.FromContext(ctx)

	result, err := oracle.Infer(ctx, g)
	if err != nil {
		logger.Warn("Skipping redundant Reshape removal, shape inference unavailable.", "error", err)
		return 0
	}

	var candidates []*ir.Node
	for _, n := range g.Nodes() {
		if n.OpType != opReshape {
			continue
		}
		inShape, inOK := result.EdgeShape(n.Inputs[0])
		outShape, outOK := result.EdgeShape(n.Outputs[0])
		if inOK && outOK && shapesEqual(inShape, outShape) {
			logger.Debug("Reshape input shape equals output shape.", "node", n.Name, "shape", inShape)
			candidates = append(candidates, n)
		}
	}

	removed := 0
	for _, n := range candidates {
		if spliceOut(g, n) {
			removed++
		}
	}
	if removed > 0 {
		logger.Info("Removed Reshape nodes with output shape same as input.", "removed", removed)
	}
	return removed
}

// shapesEqual compares two fully known shapes extent by extent.
func shapesEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
