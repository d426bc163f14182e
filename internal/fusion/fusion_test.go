package fusion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fusiongo/internal/ir"
)

func TestEditStaging(t *testing.T) {
	edit := NewEdit()
	assert.True(t, edit.Empty())

	n := ir.NewNode("Relu", "a", []string{"x"}, []string{"y"})
	edit.StageRemoval(n)
	edit.StageRemoval(n)
	assert.True(t, edit.Staged(n))
	assert.False(t, edit.Empty())
	assert.Len(t, edit.removals, 1, "staging the same node twice must not duplicate it")

	fused := ir.NewNode("Fused", "f", []string{"x"}, []string{"y"})
	edit.StageAdd(fused, "main")
	scope, ok := edit.Subgraph("f")
	require.True(t, ok)
	assert.Equal(t, "main", scope)
}

func TestCommit(t *testing.T) {
	build := func() *ir.Graph {
		g := ir.NewGraph("m")
		g.AddInput(&ir.ValueInfo{Name: "x", DType: ir.DTypeFloat})
		g.AddOutput(&ir.ValueInfo{Name: "y", DType: ir.DTypeFloat})
		require.NoError(t, g.AddNode(ir.NewNode("Relu", "a", []string{"x"}, []string{"t"})))
		require.NoError(t, g.AddNode(ir.NewNode("Neg", "b", []string{"t"}, []string{"y"})))
		return g
	}

	t.Run("empty edit is a no-op", func(t *testing.T) {
		g := build()
		stats, err := Commit(context.Background(), g, NewEdit())
		require.NoError(t, err)
		assert.Zero(t, stats.Removed)
		assert.Equal(t, 2, g.NodeCount())
	})

	t.Run("removal then insertion then prune", func(t *testing.T) {
		g := build()
		a, _ := g.Node("a")
		b, _ := g.Node("b")

		edit := NewEdit()
		edit.StageRemoval(a, b)
		edit.StageAdd(ir.NewNode("Fused", "f", []string{"x"}, []string{"y"}), g.Name)

		stats, err := Commit(context.Background(), g, edit)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Removed)
		assert.Equal(t, 1, stats.Added)
		assert.Equal(t, 1, g.NodeCount())
		assert.NoError(t, g.Validate())
	})

	t.Run("removal leaving a dangling edge fails validation", func(t *testing.T) {
		g := build()
		a, _ := g.Node("a")

		// Removing the producer of t without replacing it orphans node b.
		edit := NewEdit()
		edit.StageRemoval(a)

		_, err := Commit(context.Background(), g, edit)
		assert.ErrorContains(t, err, "graph invariant violated")
	})

	t.Run("output collision is rejected", func(t *testing.T) {
		g := build()
		edit := NewEdit()
		edit.StageAdd(ir.NewNode("Dup", "dup", []string{"x"}, []string{"y"}), g.Name)

		_, err := Commit(context.Background(), g, edit)
		assert.ErrorContains(t, err, "committing staged node")
	})
}
