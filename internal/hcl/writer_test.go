package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fusiongo/internal/ir"
)

func TestWriterRoundTrip(t *testing.T) {
	ctx := context.Background()
	original, err := NewLoader().Parse(ctx, "encoder.hcl", []byte(encoderModel))
	require.NoError(t, err)

	src, err := NewWriter().Bytes(original)
	require.NoError(t, err)

	reloaded, err := NewLoader().Parse(ctx, "rendered.hcl", src)
	require.NoError(t, err)

	t.Run("structure survives", func(t *testing.T) {
		assert.Equal(t, original.Name, reloaded.Name)
		assert.Empty(t, cmp.Diff(original.InputNames(), reloaded.InputNames()))
		assert.Empty(t, cmp.Diff(original.OutputNames(), reloaded.OutputNames()))
		require.Equal(t, original.NodeCount(), reloaded.NodeCount())

		for i, want := range original.Nodes() {
			got := reloaded.Nodes()[i]
			assert.Equal(t, want.Name, got.Name)
			assert.Equal(t, want.OpType, got.OpType)
			assert.Equal(t, want.Domain, got.Domain)
			assert.Empty(t, cmp.Diff(want.Inputs, got.Inputs))
			assert.Empty(t, cmp.Diff(want.Outputs, got.Outputs))
		}
	})

	t.Run("initializer data survives", func(t *testing.T) {
		w, ok := reloaded.Initializer("w")
		require.True(t, ok)
		assert.Empty(t, cmp.Diff([]int64{4, 4}, w.Dims))

		want, _ := original.Initializer("w")
		assert.Equal(t, want.Raw, w.Raw)

		scale, ok := reloaded.Initializer("scale")
		require.True(t, ok)
		v, ok := scale.ScalarFloat()
		require.True(t, ok)
		assert.Equal(t, 0.5, v)
	})

	t.Run("external flag survives", func(t *testing.T) {
		big, ok := reloaded.Initializer("big")
		require.True(t, ok)
		assert.True(t, big.External)
		assert.Empty(t, cmp.Diff([]int64{768, 768}, big.Dims))
	})

	t.Run("attributes survive", func(t *testing.T) {
		act, ok := reloaded.Node("act")
		require.True(t, ok)
		want, _ := original.Node("act")
		for name, value := range want.Attrs {
			got, present := act.Attr(name)
			require.True(t, present, name)
			assert.True(t, ir.ValuesEqual(value, got), name)
		}
	})
}

func TestWriterFusedNode(t *testing.T) {
	g := ir.NewGraph("optimized")
	g.AddInput(&ir.ValueInfo{Name: "x", DType: ir.DTypeFloat, Shape: []int64{2, 4}})
	g.AddOutput(&ir.ValueInfo{Name: "y", DType: ir.DTypeFloat})
	g.AddInitializer(ir.NewFloatTensor("w", []int64{4, 4}, make([]float32, 16)))
	fused := ir.NewNode("GemmFastGelu", "GemmFastGelu_1", []string{"x", "w"}, []string{"y"})
	fused.Domain = "com.microsoft"
	require.NoError(t, g.AddNode(fused))

	src, err := NewWriter().Bytes(g)
	require.NoError(t, err)

	reloaded, err := NewLoader().Parse(context.Background(), "out.hcl", src)
	require.NoError(t, err)
	got, ok := reloaded.Node("GemmFastGelu_1")
	require.True(t, ok)
	assert.Equal(t, "com.microsoft", got.Domain)
	assert.Equal(t, []string{"x", "w"}, got.Inputs)
}

func TestWriterSave(t *testing.T) {
	g := ir.NewGraph("saved")
	g.AddInput(&ir.ValueInfo{Name: "x", DType: ir.DTypeFloat})
	g.AddOutput(&ir.ValueInfo{Name: "y", DType: ir.DTypeFloat})
	require.NoError(t, g.AddNode(ir.NewNode("Relu", "r", []string{"x"}, []string{"y"})))

	path := filepath.Join(t.TempDir(), "out.hcl")
	require.NoError(t, NewWriter().Save(g, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `model "saved"`)
	assert.Contains(t, string(data), `node "r"`)
}

func TestWriterUnrenderableInitializer(t *testing.T) {
	g := ir.NewGraph("m")
	g.AddInput(&ir.ValueInfo{Name: "x", DType: ir.DTypeFloat})
	g.AddOutput(&ir.ValueInfo{Name: "y", DType: ir.DTypeFloat})
	g.AddInitializer(&ir.Tensor{Name: "s", DType: ir.DTypeString, Dims: []int64{1}})
	require.NoError(t, g.AddNode(ir.NewNode("Relu", "r", []string{"x"}, []string{"y"})))

	_, err := NewWriter().Bytes(g)
	assert.ErrorContains(t, err, "data cannot be rendered")
}

func TestWriterEmptyInputSlot(t *testing.T) {
	g := ir.NewGraph("m")
	g.AddInput(&ir.ValueInfo{Name: "x", DType: ir.DTypeFloat})
	g.AddOutput(&ir.ValueInfo{Name: "y", DType: ir.DTypeFloat})
	require.NoError(t, g.AddNode(ir.NewNode("Clip", "c", []string{"x", ""}, []string{"y"})))

	src, err := NewWriter().Bytes(g)
	require.NoError(t, err)

	reloaded, err := NewLoader().Parse(context.Background(), "out.hcl", src)
	require.NoError(t, err)
	c, ok := reloaded.Node("c")
	require.True(t, ok)
	assert.Equal(t, []string{"x", ""}, c.Inputs)
}
