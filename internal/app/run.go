package app

import (
	"context"
	"fmt"

	"github.com/vk/fusiongo/internal/ctxlog"
	"github.com/vk/fusiongo/internal/optimizer"
)

// Run executes the optimizer pipeline on the loaded model.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	before := a.graph.NodeCount()
	opt := optimizer.New(a.registry, optimizer.Options{
		CollapseCascadedCasts: a.config.CollapseCascadedCasts,
	})

	stats, err := opt.Run(ctx, a.graph)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	for _, s := range stats {
		a.logger.Info("Pass finished.", "pass", s.Name, "removed", s.Removed, "added", s.Added)
	}
	fmt.Fprintf(a.outW, "%s: %d nodes before, %d after (%d passes)\n",
		a.graph.Name, before, a.graph.NodeCount(), len(stats))

	if a.config.OutPath != "" {
		if err := a.saver.Save(a.graph, a.config.OutPath); err != nil {
			return fmt.Errorf("failed to save optimized model: %w", err)
		}
		a.logger.Info("Optimized model written.", "path", a.config.OutPath)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
