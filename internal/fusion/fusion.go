// Package fusion contains the rewrite rule set and the batch mutation
// committer. Each rule recognizes one operator sequence and stages a
// semantically equivalent fused replacement; a driver scans the whole graph
// once per rule and commits all staged edits atomically afterwards.
package fusion

import (
	"context"
	"fmt"

	"github.com/vk/fusiongo/internal/ctxlog"
	"github.com/vk/fusiongo/internal/ir"
)

// Rule is a single fusion pattern. Fuse inspects one trigger node and either
// stages a rewrite on the edit batch or abstains by returning without
// staging anything. Abstaining is the expected outcome for most nodes.
type Rule interface {
	// Name identifies the rule in logs and registries.
	Name() string

	// Triggers lists the operator types the driver invokes the rule on.
	Triggers() []string

	// Fuse attempts the rewrite rooted at node. It must not mutate the
	// graph; all changes go through the edit batch.
	Fuse(ctx context.Context, g *ir.Graph, edit *Edit, node *ir.Node)
}

// Stats reports what one committed pass did to the graph.
type Stats struct {
	Removed int
	Added   int
	Pruned  int
}

// Run performs one full pass of a rule over the graph: scan every node,
// invoke the rule on trigger-typed nodes not already staged for removal,
// then commit the accumulated edits in one step.
func Run(ctx context.Context, g *ir.Graph, rule Rule) (Stats, error) {
	logger := ctxlog.FromContext(ctx)
	edit := NewEdit()

	triggers := make(map[string]bool)
	for _, op := range rule.Triggers() {
		triggers[op] = true
	}

	for _, node := range g.Nodes() {
		if !triggers[node.OpType] || edit.Staged(node) {
			continue
		}
		rule.Fuse(ctx, g, edit, node)
	}

	stats, err := Commit(ctx, g, edit)
	if err != nil {
		return stats, fmt.Errorf("rule %s: %w", rule.Name(), err)
	}
	if stats.Removed > 0 || stats.Added > 0 {
		logger.Info("Fusion rule applied.",
			"rule", rule.Name(),
			"removed", stats.Removed,
			"added", stats.Added,
			"pruned", stats.Pruned,
		)
	}
	return stats, nil
}

// Commit applies a staged edit batch atomically: all removals, then all
// insertions, then a prune of nodes left without a path to a graph output.
// The committed graph is re-validated; a violation here means a rule staged
// an inconsistent rewrite, and the caller must halt rather than run further
// passes over a corrupt graph.
func Commit(ctx context.Context, g *ir.Graph, edit *Edit) (Stats, error) {
	var stats Stats
	if edit.Empty() {
		return stats, nil
	}

	for _, n := range edit.removals {
		g.RemoveNode(n)
		stats.Removed++
	}
	for _, n := range edit.adds {
		if err := g.AddNode(n); err != nil {
			return stats, fmt.Errorf("committing staged node %q: %w", n.Name, err)
		}
		stats.Added++
	}
	stats.Pruned = g.Prune()

	if err := g.Validate(); err != nil {
		return stats, fmt.Errorf("graph invariant violated after commit: %w", err)
	}
	return stats, nil
}
