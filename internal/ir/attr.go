package ir

import (
	"encoding/binary"
	"math"

	"github.com/zclconf/go-cty/cty"
)

// AttrEquals reports whether a node's attribute matches the expected value,
// falling back to def when the attribute is absent. Pass cty.NilVal as def
// when there is no meaningful default; an absent attribute then only matches
// an expected cty.NilVal.
func AttrEquals(n *Node, name string, expected, def cty.Value) bool {
	value := def
	if v, ok := n.Attr(name); ok {
		value = v
	}
	return ValuesEqual(value, expected)
}

// ValuesEqual compares two attribute values, dispatching on the value kind.
// Lists and tuples are compared element-wise. Numbers compare by exact
// numeric value; NaN is never equal to anything, including itself.
func ValuesEqual(a, b cty.Value) bool {
	if a == cty.NilVal || b == cty.NilVal {
		return a == b
	}
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull() && a.Type().Equals(b.Type())
	}

	at, bt := a.Type(), b.Type()
	aList := at.IsListType() || at.IsTupleType()
	bList := bt.IsListType() || bt.IsTupleType()
	switch {
	case aList != bList:
		return false
	case aList:
		if a.LengthInt() != b.LengthInt() {
			return false
		}
		ai, bi := a.ElementIterator(), b.ElementIterator()
		for ai.Next() && bi.Next() {
			_, av := ai.Element()
			_, bv := bi.Element()
			if !ValuesEqual(av, bv) {
				return false
			}
		}
		return true
	case at == cty.Number && bt == cty.Number:
		// cty numbers are arbitrary-precision and cannot represent NaN, so
		// exact comparison is well-defined here.
		return a.RawEquals(b)
	default:
		return a.RawEquals(b)
	}
}

// ConstantInputEquals reports whether a node's input at the given index is a
// constant tensor whose decoded value equals expected. Scalars compare as a
// single number; higher-rank constants compare element-wise against an
// expected list.
func (g *Graph) ConstantInputEquals(n *Node, index int, expected cty.Value) bool {
	name := n.Input(index)
	if name == "" {
		return false
	}
	t, ok := g.Initializer(name)
	if !ok {
		return false
	}
	value, ok := tensorValue(t)
	if !ok {
		return false
	}
	return ValuesEqual(value, expected)
}

// Values decodes the tensor into an attribute value, a number for scalars
// and a tuple of numbers otherwise, reporting false when the data cannot be
// represented. The serializer uses this to write constants back out.
func (t *Tensor) Values() (cty.Value, bool) {
	return tensorValue(t)
}

// tensorValue decodes a constant tensor into an attribute value: a number
// for scalars, a tuple of numbers otherwise. Elements that cannot be
// represented (NaN, unsupported types) make the decode fail, which callers
// treat as "never equal".
func tensorValue(t *Tensor) (cty.Value, bool) {
	raw, err := t.Materialize()
	if err != nil {
		return cty.NilVal, false
	}
	width := t.DType.Size()
	if width == 0 || int64(len(raw)) < t.NumElements()*int64(width) {
		return cty.NilVal, false
	}

	elems := make([]cty.Value, 0, t.NumElements())
	for i := int64(0); i < t.NumElements(); i++ {
		chunk := raw[i*int64(width):]
		v, ok := elementValue(t.DType, chunk)
		if !ok {
			return cty.NilVal, false
		}
		elems = append(elems, v)
	}
	if t.Rank() == 0 {
		return elems[0], true
	}
	return cty.TupleVal(elems), true
}

func elementValue(dtype DataType, raw []byte) (cty.Value, bool) {
	switch dtype {
	case DTypeFloat:
		f := float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))
		if math.IsNaN(f) {
			return cty.NilVal, false
		}
		return cty.NumberFloatVal(f), true
	case DTypeDouble:
		f := math.Float64frombits(binary.LittleEndian.Uint64(raw))
		if math.IsNaN(f) {
			return cty.NilVal, false
		}
		return cty.NumberFloatVal(f), true
	case DTypeInt8:
		return cty.NumberIntVal(int64(int8(raw[0]))), true
	case DTypeUint8:
		return cty.NumberIntVal(int64(raw[0])), true
	case DTypeInt16:
		return cty.NumberIntVal(int64(int16(binary.LittleEndian.Uint16(raw)))), true
	case DTypeUint16:
		return cty.NumberIntVal(int64(binary.LittleEndian.Uint16(raw))), true
	case DTypeInt32:
		return cty.NumberIntVal(int64(int32(binary.LittleEndian.Uint32(raw)))), true
	case DTypeUint32:
		return cty.NumberIntVal(int64(binary.LittleEndian.Uint32(raw))), true
	case DTypeInt64:
		return cty.NumberIntVal(int64(binary.LittleEndian.Uint64(raw))), true
	case DTypeBool:
		return cty.BoolVal(raw[0] != 0), true
	default:
		return cty.NilVal, false
	}
}
