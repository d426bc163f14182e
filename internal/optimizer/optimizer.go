// Package optimizer drives the full rewrite pipeline: every registered
// fusion rule gets one whole-graph pass with a single atomic commit, then
// the cleanup passes run in a fixed order over the committed result. Later
// passes always observe the fully committed state of earlier ones.
package optimizer

import (
	"context"
	"fmt"

	"github.com/vk/fusiongo/internal/ctxlog"
	"github.com/vk/fusiongo/internal/fusion"
	"github.com/vk/fusiongo/internal/ir"
	"github.com/vk/fusiongo/internal/passes"
	"github.com/vk/fusiongo/internal/registry"
	"github.com/vk/fusiongo/internal/shapeinfer"
)

// Options configure a pipeline run.
type Options struct {
	// Oracle supplies shape/type inference to the passes that need it.
	// Defaults to the declared-info oracle.
	Oracle shapeinfer.Oracle

	// CollapseCascadedCasts enables the lossy cascaded-cast maintenance
	// pass, which is excluded from the default pipeline.
	CollapseCascadedCasts bool
}

// PassStat records what one pass did, for the caller's logging.
type PassStat struct {
	Name    string
	Removed int
	Added   int
}

// Optimizer runs a fixed sequence of rewrite and cleanup passes over a graph.
type Optimizer struct {
	registry *registry.Registry
	oracle   shapeinfer.Oracle
	collapse bool
}

// New builds an optimizer around a validated rule registry.
func New(reg *registry.Registry, opts Options) *Optimizer {
	oracle := opts.Oracle
	if oracle == nil {
		oracle = shapeinfer.NewDeclared()
	}
	return &Optimizer{
		registry: reg,
		oracle:   oracle,
		collapse: opts.CollapseCascadedCasts,
	}
}

// DefaultRegistry returns a registry populated with the built-in rule set.
func DefaultRegistry() (*registry.Registry, error) {
	reg := registry.New()
	if err := reg.Register(fusion.GemmFastGelu{}); err != nil {
		return nil, err
	}
	return reg, nil
}

// Run executes the pipeline on the graph and returns per-pass statistics.
// A fatal invariant violation after any committed mutation halts the
// pipeline with an error; later passes assume a well-formed graph.
func (o *Optimizer) Run(ctx context.Context, g *ir.Graph) ([]PassStat, error) {
	logger := ctxlog.FromContext(ctx)
	var stats []PassStat

	for _, rule := range o.registry.Rules() {
		s, err := fusion.Run(ctx, g, rule)
		if err != nil {
			return stats, err
		}
		stats = append(stats, PassStat{
			Name:    "fuse:" + rule.Name(),
			Removed: s.Removed + s.Pruned,
			Added:   s.Added,
		})
	}

	if o.collapse {
		n := passes.CollapseCascadedCasts(ctx, g)
		stats = append(stats, PassStat{Name: "collapse_cascaded_casts", Removed: n})
	}

	n := passes.RemoveIdentityNodes(ctx, g)
	stats = append(stats, PassStat{Name: "remove_identity", Removed: n})

	n = passes.RemoveRedundantCasts(ctx, g, o.oracle)
	stats = append(stats, PassStat{Name: "remove_redundant_casts", Removed: n})

	n = passes.RemoveRedundantReshapes(ctx, g, o.oracle)
	stats = append(stats, PassStat{Name: "remove_redundant_reshapes", Removed: n})

	if err := g.Validate(); err != nil {
		return stats, fmt.Errorf("graph invariant violated after cleanup passes: %w", err)
	}

	logger.Debug("Optimizer pipeline finished.", "passes", len(stats), "nodes", g.NodeCount())
	return stats, nil
}
