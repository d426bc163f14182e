package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestAttrEquals(t *testing.T) {
	n := NewNode("Cast", "c", []string{"x"}, []string{"y"})
	n.SetAttr("to", cty.NumberIntVal(6))
	n.SetAttr("axes", cty.TupleVal([]cty.Value{cty.NumberIntVal(0), cty.NumberIntVal(2)}))

	t.Run("present attribute", func(t *testing.T) {
		assert.True(t, AttrEquals(n, "to", cty.NumberIntVal(6), cty.NilVal))
		assert.False(t, AttrEquals(n, "to", cty.NumberIntVal(7), cty.NilVal))
	})

	t.Run("absent attribute uses default", func(t *testing.T) {
		assert.True(t, AttrEquals(n, "transpose", cty.NumberIntVal(0), cty.NumberIntVal(0)))
		assert.False(t, AttrEquals(n, "transpose", cty.NumberIntVal(1), cty.NumberIntVal(0)))
	})

	t.Run("absent attribute without default matches nothing", func(t *testing.T) {
		assert.False(t, AttrEquals(n, "missing", cty.NumberIntVal(0), cty.NilVal))
	})

	t.Run("list attribute compares element-wise", func(t *testing.T) {
		want := cty.ListVal([]cty.Value{cty.NumberIntVal(0), cty.NumberIntVal(2)})
		assert.True(t, AttrEquals(n, "axes", want, cty.NilVal))
		short := cty.ListVal([]cty.Value{cty.NumberIntVal(0)})
		assert.False(t, AttrEquals(n, "axes", short, cty.NilVal))
	})
}

func TestValuesEqual(t *testing.T) {
	t.Run("int and float compare numerically", func(t *testing.T) {
		assert.True(t, ValuesEqual(cty.NumberIntVal(1), cty.NumberFloatVal(1.0)))
	})

	t.Run("list against scalar", func(t *testing.T) {
		list := cty.TupleVal([]cty.Value{cty.NumberIntVal(1)})
		assert.False(t, ValuesEqual(list, cty.NumberIntVal(1)))
	})

	t.Run("strings and bools", func(t *testing.T) {
		assert.True(t, ValuesEqual(cty.StringVal("relu"), cty.StringVal("relu")))
		assert.False(t, ValuesEqual(cty.True, cty.False))
	})
}

func TestConstantInputEquals(t *testing.T) {
	g := NewGraph("m")
	g.AddInput(&ValueInfo{Name: "x"})
	g.AddInitializer(&Tensor{Name: "zp", DType: DTypeUint8, Dims: nil, Raw: []byte{0}})
	g.AddInitializer(NewFloatTensor("scale", nil, []float32{0.5}))
	g.AddInitializer(NewFloatTensor("vec", []int64{2}, []float32{1, 2}))
	g.AddInitializer(NewFloatTensor("nan", nil, []float32{float32(math.NaN())}))

	n := NewNode("Op", "n", []string{"x", "zp", "scale", "vec", "nan"}, []string{"y"})

	t.Run("scalar constant", func(t *testing.T) {
		assert.True(t, g.ConstantInputEquals(n, 1, cty.NumberIntVal(0)))
		assert.True(t, g.ConstantInputEquals(n, 2, cty.NumberFloatVal(0.5)))
		assert.False(t, g.ConstantInputEquals(n, 2, cty.NumberFloatVal(0.25)))
	})

	t.Run("rank-1 constant compares as list", func(t *testing.T) {
		want := cty.TupleVal([]cty.Value{cty.NumberFloatVal(1), cty.NumberFloatVal(2)})
		assert.True(t, g.ConstantInputEquals(n, 3, want))
	})

	t.Run("non-constant input", func(t *testing.T) {
		assert.False(t, g.ConstantInputEquals(n, 0, cty.NumberIntVal(0)))
	})

	t.Run("NaN constant never matches", func(t *testing.T) {
		assert.False(t, g.ConstantInputEquals(n, 4, cty.NumberIntVal(0)))
	})
}

func TestTensorValues(t *testing.T) {
	t.Run("scalar decodes to a number", func(t *testing.T) {
		v, ok := NewInt32Tensor("s", nil, []int32{-3}).Values()
		require.True(t, ok)
		assert.True(t, ValuesEqual(v, cty.NumberIntVal(-3)))
	})

	t.Run("rank-1 decodes to a tuple", func(t *testing.T) {
		v, ok := NewInt64Tensor("v", []int64{3}, []int64{1, 2, 3}).Values()
		require.True(t, ok)
		require.True(t, v.Type().IsTupleType())
		assert.Equal(t, 3, v.LengthInt())
	})

	t.Run("external tensor decodes to zeros", func(t *testing.T) {
		v, ok := NewExternalTensor("w", DTypeFloat, []int64{2}).Values()
		require.True(t, ok)
		want := cty.TupleVal([]cty.Value{cty.NumberFloatVal(0), cty.NumberFloatVal(0)})
		assert.True(t, ValuesEqual(v, want))
	})

	t.Run("truncated data fails", func(t *testing.T) {
		broken := &Tensor{Name: "b", DType: DTypeFloat, Dims: []int64{4}, Raw: []byte{0, 0}}
		_, ok := broken.Values()
		assert.False(t, ok)
	})
}
