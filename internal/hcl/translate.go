// This file translates the HCL schema structs into the ir graph model.

package hcl

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/fusiongo/internal/ir"
	"github.com/vk/fusiongo/internal/schema"
)

func (l *Loader) translateModel(ctx context.Context, m *schema.Model) (*ir.Graph, error) {
	g := ir.NewGraph(m.Name)

	for _, v := range m.Inputs {
		vi, err := translateValue(v)
		if err != nil {
			return nil, fmt.Errorf("model %q, input %q: %w", m.Name, v.Name, err)
		}
		g.AddInput(vi)
	}
	for _, v := range m.Outputs {
		vi, err := translateValue(v)
		if err != nil {
			return nil, fmt.Errorf("model %q, output %q: %w", m.Name, v.Name, err)
		}
		g.AddOutput(vi)
	}
	for _, v := range m.Values {
		vi, err := translateValue(v)
		if err != nil {
			return nil, fmt.Errorf("model %q, tensor %q: %w", m.Name, v.Name, err)
		}
		g.AddValueInfo(vi)
	}
	for _, init := range m.Initializers {
		t, err := translateInitializer(init)
		if err != nil {
			return nil, fmt.Errorf("model %q, initializer %q: %w", m.Name, init.Name, err)
		}
		g.AddInitializer(t)
	}
	for _, n := range m.Nodes {
		node := ir.NewNode(n.Op, n.Name, append([]string(nil), n.Inputs...), append([]string(nil), n.Outputs...))
		node.Domain = n.Domain
		attrs, err := extractAttributes(n.Attributes)
		if err != nil {
			return nil, fmt.Errorf("model %q, node %q: %w", m.Name, n.Name, err)
		}
		for name, value := range attrs {
			node.SetAttr(name, value)
		}
		if err := g.AddNode(node); err != nil {
			return nil, fmt.Errorf("model %q: %w", m.Name, err)
		}
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("model %q is malformed: %w", m.Name, err)
	}
	return g, nil
}

func translateValue(v *schema.Value) (*ir.ValueInfo, error) {
	vi := &ir.ValueInfo{Name: v.Name}
	if v.DType != "" {
		dtype, err := ir.ParseDataType(v.DType)
		if err != nil {
			return nil, err
		}
		vi.DType = dtype
	}
	if v.Shape != nil {
		vi.Shape = append([]int64(nil), v.Shape...)
	}
	return vi, nil
}

func translateInitializer(init *schema.Initializer) (*ir.Tensor, error) {
	dtype, err := ir.ParseDataType(init.DType)
	if err != nil {
		return nil, err
	}

	if init.External {
		return ir.NewExternalTensor(init.Name, dtype, append([]int64(nil), init.Shape...)), nil
	}

	raw, count, err := dataBytes(dtype, init.Data)
	if err != nil {
		return nil, err
	}

	dims := append([]int64(nil), init.Shape...)
	if dims == nil && count > 1 {
		// No declared shape: lists default to rank 1, single values to rank 0.
		dims = []int64{int64(count)}
	}
	if dims == nil {
		dims = []int64{}
	}

	t := &ir.Tensor{Name: init.Name, DType: dtype, Dims: dims, Raw: raw}
	if expected := t.NumElements() * int64(dtype.Size()); dtype.Size() > 0 && int64(len(raw)) != expected {
		return nil, fmt.Errorf("declared shape %v requires %d bytes of data, got %d", dims, expected, len(raw))
	}
	return t, nil
}

// dataBytes evaluates a data expression into packed little-endian element
// bytes, accepting a single number or a flat list of numbers.
func dataBytes(dtype ir.DataType, expr hcl.Expression) ([]byte, int, error) {
	if expr == nil {
		return nil, 0, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, 0, fmt.Errorf("evaluating data: %w", diags)
	}
	if val.IsNull() {
		return nil, 0, nil
	}

	var elems []cty.Value
	if val.Type().IsListType() || val.Type().IsTupleType() {
		it := val.ElementIterator()
		for it.Next() {
			_, v := it.Element()
			elems = append(elems, v)
		}
	} else {
		elems = []cty.Value{val}
	}

	width := dtype.Size()
	if width == 0 {
		return nil, 0, fmt.Errorf("initializer data not supported for type %s", dtype)
	}

	raw := make([]byte, 0, len(elems)*width)
	for _, elem := range elems {
		chunk, err := encodeElement(dtype, elem)
		if err != nil {
			return nil, 0, err
		}
		raw = append(raw, chunk...)
	}
	return raw, len(elems), nil
}

func encodeElement(dtype ir.DataType, elem cty.Value) ([]byte, error) {
	if dtype == ir.DTypeBool {
		if elem.Type() != cty.Bool {
			return nil, fmt.Errorf("bool initializer requires bool elements, got %s", elem.Type().FriendlyName())
		}
		if elem.True() {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	}

	if elem.Type() != cty.Number {
		return nil, fmt.Errorf("initializer elements must be numbers, got %s", elem.Type().FriendlyName())
	}
	bf := elem.AsBigFloat()

	switch dtype {
	case ir.DTypeFloat:
		f, _ := bf.Float32()
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, math.Float32bits(f))
		return out, nil
	case ir.DTypeDouble:
		f, _ := bf.Float64()
		out := make([]byte, 8)
		binary.LittleEndian.PutUint64(out, math.Float64bits(f))
		return out, nil
	case ir.DTypeInt8, ir.DTypeUint8:
		i, _ := bf.Int64()
		return []byte{byte(i)}, nil
	case ir.DTypeInt16, ir.DTypeUint16:
		i, _ := bf.Int64()
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, uint16(i))
		return out, nil
	case ir.DTypeInt32, ir.DTypeUint32:
		i, _ := bf.Int64()
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, uint32(i))
		return out, nil
	case ir.DTypeInt64, ir.DTypeUint64:
		i, _ := bf.Int64()
		out := make([]byte, 8)
		binary.LittleEndian.PutUint64(out, uint64(i))
		return out, nil
	default:
		return nil, fmt.Errorf("initializer data not supported for type %s", dtype)
	}
}

// extractAttributes evaluates every attribute in a node's attributes block
// into a dynamically typed value.
func extractAttributes(block *schema.AttributesBlock) (map[string]cty.Value, error) {
	if block == nil || block.Body == nil {
		return nil, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading attributes: %w", diags)
	}
	out := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating attribute %q: %w", name, diags)
		}
		out[name] = val
	}
	return out, nil
}
