package fusion

import (
	"context"

	"github.com/vk/fusiongo/internal/ctxlog"
	"github.com/vk/fusiongo/internal/ir"
	"github.com/vk/fusiongo/internal/match"
)

// FusedGemmFastGeluDomain is the operator-set domain the fused node is
// registered under.
const FusedGemmFastGeluDomain = "com.microsoft"

// GemmFastGelu fuses a MatMul followed by a FastGelu activation into a
// single GemmFastGelu node. The FastGelu may carry an optional bias as a
// second input. The fused node takes [data, weight] or [data, weight, bias]
// and aliases the activation's output name, so downstream consumers need no
// rewiring.
type GemmFastGelu struct{}

// Name implements Rule.
func (GemmFastGelu) Name() string { return "GemmFastGelu" }

// Triggers implements Rule.
func (GemmFastGelu) Triggers() []string { return []string{"FastGelu"} }

// Fuse implements Rule.
func (f GemmFastGelu) Fuse(ctx context.Context, g *ir.Graph, edit *Edit, node *ir.Node) {
	logger := ctxlog.FromContext(ctx)

	hasBias := len(node.Inputs) == 2

	matmul, ok := match.Parent(g, node, "MatMul", 0, match.Options{Exclude: edit.Staged})
	if !ok {
		return
	}

	// The MatMul weight must be a rank-2 constant; its position is not fixed.
	weightIndex, weight, ok := g.FindConstantInput(matmul)
	if !ok || weight.Rank() != 2 {
		return
	}

	biasIndex := -1
	if hasBias {
		// The bias must be a rank-1 constant.
		i, bias, ok := g.FindConstantInput(node)
		if !ok || bias.Rank() != 1 {
			return
		}
		biasIndex = i
	}

	subgraph := []*ir.Node{node, matmul}
	if !g.IsSafeToRemove(subgraph, []string{node.Outputs[0]}) {
		logger.Debug("Fusion unsafe, skipping.", "rule", f.Name(), "node", node.Name)
		return
	}
	edit.StageRemoval(subgraph...)

	inputs := []string{matmul.Inputs[1-weightIndex], matmul.Inputs[weightIndex]}
	if hasBias {
		inputs = append(inputs, node.Inputs[biasIndex])
	}

	fused := ir.NewNode("GemmFastGelu", g.NewNodeName("GemmFastGelu"), inputs, []string{node.Outputs[0]})
	fused.Domain = FusedGemmFastGeluDomain
	edit.StageAdd(fused, g.Name)
}
