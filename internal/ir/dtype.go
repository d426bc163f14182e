package ir

import "fmt"

// DataType identifies the element type of a tensor edge. The numeric values
// follow the ONNX TensorProto.DataType enumeration so that attribute payloads
// such as Cast's "to" round-trip without translation tables.
type DataType int

const (
	DTypeUndefined DataType = 0
	DTypeFloat     DataType = 1
	DTypeUint8     DataType = 2
	DTypeInt8      DataType = 3
	DTypeUint16    DataType = 4
	DTypeInt16     DataType = 5
	DTypeInt32     DataType = 6
	DTypeInt64     DataType = 7
	DTypeString    DataType = 8
	DTypeBool      DataType = 9
	DTypeFloat16   DataType = 10
	DTypeDouble    DataType = 11
	DTypeUint32    DataType = 12
	DTypeUint64    DataType = 13
)

var dtypeNames = map[DataType]string{
	DTypeUndefined: "undefined",
	DTypeFloat:     "float",
	DTypeUint8:     "uint8",
	DTypeInt8:      "int8",
	DTypeUint16:    "uint16",
	DTypeInt16:     "int16",
	DTypeInt32:     "int32",
	DTypeInt64:     "int64",
	DTypeString:    "string",
	DTypeBool:      "bool",
	DTypeFloat16:   "float16",
	DTypeDouble:    "double",
	DTypeUint32:    "uint32",
	DTypeUint64:    "uint64",
}

// String returns the lower-case name used in model files.
func (d DataType) String() string {
	if name, ok := dtypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("datatype(%d)", int(d))
}

// Size returns the element width in bytes, or 0 for variable-width or
// unknown types.
func (d DataType) Size() int {
	switch d {
	case DTypeUint8, DTypeInt8, DTypeBool:
		return 1
	case DTypeUint16, DTypeInt16, DTypeFloat16:
		return 2
	case DTypeFloat, DTypeInt32, DTypeUint32:
		return 4
	case DTypeDouble, DTypeInt64, DTypeUint64:
		return 8
	default:
		return 0
	}
}

// ParseDataType resolves a model-file type name into a DataType.
func ParseDataType(name string) (DataType, error) {
	for d, n := range dtypeNames {
		if n == name {
			return d, nil
		}
	}
	return DTypeUndefined, fmt.Errorf("unknown data type %q", name)
}
