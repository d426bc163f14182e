package ir

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tensor is a named compile-time constant. Raw holds the element data packed
// little-endian in row-major order. When External is set the data lives
// outside the model and was not loaded; Materialize can still produce a
// zero-filled placeholder of the declared shape for dry-run validation.
type Tensor struct {
	Name     string
	DType    DataType
	Dims     []int64
	Raw      []byte
	External bool
}

// Rank returns the tensor's dimensionality.
func (t *Tensor) Rank() int {
	return len(t.Dims)
}

// NumElements returns the total element count implied by Dims. A rank-0
// tensor holds exactly one element.
func (t *Tensor) NumElements() int64 {
	n := int64(1)
	for _, d := range t.Dims {
		n *= d
	}
	return n
}

// IsScalar reports whether the tensor holds a single element. Per-tensor
// quantization parameters must satisfy this; per-channel ones do not.
func (t *Tensor) IsScalar() bool {
	return t.NumElements() == 1
}

// Materialize returns the element data. External tensors yield a zero-filled
// placeholder of the declared shape and type so that structural checks can
// run without the real weights present.
func (t *Tensor) Materialize() ([]byte, error) {
	if !t.External {
		return t.Raw, nil
	}
	width := t.DType.Size()
	if width == 0 {
		return nil, fmt.Errorf("tensor %q: cannot materialize placeholder for type %s", t.Name, t.DType)
	}
	return make([]byte, t.NumElements()*int64(width)), nil
}

// ScalarInt returns the tensor's single element as an integer. It reports
// false for non-scalar tensors, non-integer types, or missing data.
func (t *Tensor) ScalarInt() (int64, bool) {
	if !t.IsScalar() {
		return 0, false
	}
	raw, err := t.Materialize()
	if err != nil || len(raw) < t.DType.Size() {
		return 0, false
	}
	switch t.DType {
	case DTypeInt8:
		return int64(int8(raw[0])), true
	case DTypeUint8, DTypeBool:
		return int64(raw[0]), true
	case DTypeInt16:
		return int64(int16(binary.LittleEndian.Uint16(raw))), true
	case DTypeUint16:
		return int64(binary.LittleEndian.Uint16(raw)), true
	case DTypeInt32:
		return int64(int32(binary.LittleEndian.Uint32(raw))), true
	case DTypeUint32:
		return int64(binary.LittleEndian.Uint32(raw)), true
	case DTypeInt64:
		return int64(binary.LittleEndian.Uint64(raw)), true
	case DTypeUint64:
		return int64(binary.LittleEndian.Uint64(raw)), true
	default:
		return 0, false
	}
}

// ScalarFloat returns the tensor's single element as a float. It reports
// false for non-scalar tensors or non-float types.
func (t *Tensor) ScalarFloat() (float64, bool) {
	if !t.IsScalar() {
		return 0, false
	}
	raw, err := t.Materialize()
	if err != nil || len(raw) < t.DType.Size() {
		return 0, false
	}
	switch t.DType {
	case DTypeFloat:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(raw))), true
	case DTypeDouble:
		return math.Float64frombits(binary.LittleEndian.Uint64(raw)), true
	default:
		return 0, false
	}
}

// NewFloatTensor builds a float32 constant from the given values.
func NewFloatTensor(name string, dims []int64, values []float32) *Tensor {
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return &Tensor{Name: name, DType: DTypeFloat, Dims: dims, Raw: raw}
}

// NewInt32Tensor builds an int32 constant from the given values.
func NewInt32Tensor(name string, dims []int64, values []int32) *Tensor {
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(v))
	}
	return &Tensor{Name: name, DType: DTypeInt32, Dims: dims, Raw: raw}
}

// NewInt64Tensor builds an int64 constant from the given values.
func NewInt64Tensor(name string, dims []int64, values []int64) *Tensor {
	raw := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[i*8:], uint64(v))
	}
	return &Tensor{Name: name, DType: DTypeInt64, Dims: dims, Raw: raw}
}

// NewInt8Tensor builds an int8 constant from the given values.
func NewInt8Tensor(name string, dims []int64, values []int8) *Tensor {
	raw := make([]byte, len(values))
	for i, v := range values {
		raw[i] = byte(v)
	}
	return &Tensor{Name: name, DType: DTypeInt8, Dims: dims, Raw: raw}
}

// NewExternalTensor declares a constant whose data is stored externally and
// has not been loaded.
func NewExternalTensor(name string, dtype DataType, dims []int64) *Tensor {
	return &Tensor{Name: name, DType: dtype, Dims: dims, External: true}
}
