package passes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fusiongo/internal/ir"
	"github.com/vk/fusiongo/internal/shapeinfer"
)

// reshapeGraph builds x -> Reshape(shp) -> t -> Relu -> y with declared
// shapes on both sides of the Reshape.
func reshapeGraph(t *testing.T, inShape, outShape []int64) *ir.Graph {
	t.Helper()
	g := ir.NewGraph("m")
	g.AddInput(&ir.ValueInfo{Name: "x", DType: ir.DTypeFloat, Shape: inShape})
	g.AddOutput(&ir.ValueInfo{Name: "y", DType: ir.DTypeFloat})
	g.AddValueInfo(&ir.ValueInfo{Name: "t", DType: ir.DTypeFloat, Shape: outShape})
	g.AddInitializer(ir.NewInt64Tensor("shp", []int64{int64(len(outShape))}, outShape))

	require.NoError(t, g.AddNode(ir.NewNode("Reshape", "rs", []string{"x", "shp"}, []string{"t"})))
	require.NoError(t, g.AddNode(ir.NewNode("Relu", "r", []string{"t"}, []string{"y"})))
	return g
}

func TestRemoveRedundantReshapes(t *testing.T) {
	oracle := shapeinfer.NewDeclared()

	t.Run("identical shapes are spliced", func(t *testing.T) {
		g := reshapeGraph(t, []int64{2, 4}, []int64{2, 4})

		removed := RemoveRedundantReshapes(context.Background(), g, oracle)
		assert.Equal(t, 1, removed)

		r, ok := g.Node("r")
		require.True(t, ok)
		assert.Equal(t, []string{"x"}, r.Inputs)
		assert.NoError(t, g.Validate())
	})

	t.Run("differing shapes are kept", func(t *testing.T) {
		g := reshapeGraph(t, []int64{2, 4}, []int64{4, 2})
		assert.Zero(t, RemoveRedundantReshapes(context.Background(), g, oracle))
		assert.Equal(t, 2, g.NodeCount())
	})

	t.Run("same elements different rank are kept", func(t *testing.T) {
		g := reshapeGraph(t, []int64{8}, []int64{2, 4})
		assert.Zero(t, RemoveRedundantReshapes(context.Background(), g, oracle))
	})

	t.Run("unknown output shape is kept", func(t *testing.T) {
		g := ir.NewGraph("m")
		g.AddInput(&ir.ValueInfo{Name: "x", DType: ir.DTypeFloat, Shape: []int64{2, 4}})
		g.AddOutput(&ir.ValueInfo{Name: "y", DType: ir.DTypeFloat})
		g.AddInitializer(ir.NewInt64Tensor("shp", []int64{2}, []int64{2, 4}))
		require.NoError(t, g.AddNode(ir.NewNode("Reshape", "rs", []string{"x", "shp"}, []string{"t"})))
		require.NoError(t, g.AddNode(ir.NewNode("Relu", "r", []string{"t"}, []string{"y"})))

		assert.Zero(t, RemoveRedundantReshapes(context.Background(), g, oracle))
	})
}

func TestShapesEqual(t *testing.T) {
	assert.True(t, shapesEqual([]int64{2, 4}, []int64{2, 4}))
	assert.True(t, shapesEqual(nil, nil))
	assert.False(t, shapesEqual([]int64{2, 4}, []int64{4, 2}))
	assert.False(t, shapesEqual([]int64{8}, []int64{2, 4}))
}
