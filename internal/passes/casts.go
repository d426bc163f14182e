package passes

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/fusiongo/internal/ctxlog"
	"github.com/vk/fusiongo/internal/ir"
	"github.com/vk/fusiongo/internal/shapeinfer"
)

// CollapseCascadedCasts rewrites every Cast node fed by another Cast node to
// read the upstream cast's input directly, keeping only the final target
// type. The bypassed casts are left for pruning.
//
// This is explicitly lossy when the bypassed cast narrows precision (for
// example float32 to float16 and back), so it is a maintenance pass for
// post-processing mixed-precision conversion, not safe to run
// unconditionally. Returns the number of casts collapsed.
func CollapseCascadedCasts(ctx context.Context, g *ir.Graph) int {
	logger := ctxlog.FromContext(ctx)

	collapsed := 0
	for _, n := range g.Nodes() {
		if n.OpType != opCast {
			continue
		}
		parent, ok := g.Parent(n, 0)
		if ok && parent.OpType == opCast {
			g.RewireInput(n, 0, parent.Inputs[0])
			collapsed++
		}
	}

	if collapsed > 0 {
		pruned := g.Prune()
		logger.Info("Collapsed cascaded Cast nodes.", "collapsed", collapsed, "pruned", pruned)
	}
	return collapsed
}

// RemoveRedundantCasts removes Cast nodes whose inferred input type equals
// their inferred output type. It requests fresh inference first; when
// inference is unavailable the pass skips entirely and leaves the graph
// unchanged. Returns the number of casts removed.
func RemoveRedundantCasts(ctx context.Context, g *ir.Graph, oracle shapeinfer.Oracle) int {
	logger := ctxlog.FromContext(ctx)

	result, err := oracle.Infer(ctx, g)
	if err != nil {
		logger.Warn("Skipping redundant Cast removal, shape inference unavailable.", "error", err)
		return 0
	}

	var candidates []*ir.Node
	for _, n := range g.Nodes() {
		if n.OpType != opCast {
			continue
		}
		inType, inOK := result.EdgeDType(n.Inputs[0])
		outType, outOK := result.EdgeDType(n.Outputs[0])
		if inOK && outOK && inType == outType {
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
		logger.Info("Removed Cast nodes with output type same as input.", "removed", removed)
	}
	return removed
}

// CastGraphInputToInt32 inserts a Cast to int32 after the named graph input
// unless the input already has that element type. It reports whether a cast
// was inserted and the tensor name downstream consumers should read.
func CastGraphInputToInt32(ctx context.Context, g *ir.Graph, inputName string) (bool, string, error) {
	logger := ctxlog.FromContext(ctx)

	graphInput, ok := g.GraphInput(inputName)
	if !ok || graphInput.DType == ir.DTypeInt32 {
		logger.Debug("Did not cast graph input to int32.", "input", inputName, "found", ok)
		return false, inputName, nil
	}

	castOutput, _, err := CastInputToInt32(ctx, g, inputName)
	if err != nil {
		return false, inputName, err
	}
	logger.Debug("Casted graph input to int32.", "input", inputName)
	return true, castOutput, nil
}

// CastInputToInt32 adds a Cast-to-int32 node reading the named tensor. When
// the tensor is itself produced by a Cast node, the new cast reads that
// cast's own input instead, avoiding back-to-back conversions.
func CastInputToInt32(ctx context.Context, g *ir.Graph, inputName string) (string, *ir.Node, error) {
	castOutput := inputName + "_int32"

	inputs := []string{inputName}
	if parent, ok := g.Producer(inputName); ok && parent.OpType == opCast {
		inputs = []string{parent.Inputs[0]}
	}

	castNode := ir.NewNode(opCast, g.NewNodeName(opCast), inputs, []string{castOutput})
	castNode.SetAttr(attrCastTo, cty.NumberIntVal(int64(ir.DTypeInt32)))
	if err := g.AddNode(castNode); err != nil {
		return "", nil, err
	}
	return castOutput, castNode, nil
}

// RemoveCastInt32 removes every Cast-to-int32 node consuming the named
// tensor, rewiring the casts' consumers to read the tensor directly.
func RemoveCastInt32(ctx context.Context, g *ir.Graph, inputName string) int {
	consumers := append([]*ir.Node(nil), g.Consumers(inputName)...)

	removed := 0
	for _, n := range consumers {
		if n.OpType != opCast {
			continue
		}
		if !ir.AttrEquals(n, attrCastTo, cty.NumberIntVal(int64(ir.DTypeInt32)), cty.NilVal) {
			continue
		}
		output := n.Outputs[0]
		g.RemoveNode(n)
		g.ReplaceInputOfAllNodes(output, inputName)
		removed++
	}
	return removed
}
