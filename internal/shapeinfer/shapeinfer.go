// Package shapeinfer defines the shape/type inference oracle the cleanup
// passes consume. The inference algorithm itself is an external collaborator;
// this package only specifies its interface and provides an implementation
// backed by the type and shape declarations the model file already carries.
package shapeinfer

import (
	"context"
	"errors"

	"github.com/vk/fusiongo/internal/ir"
)

// Result exposes per-edge inference results. Lookups report false when the
// edge's type or shape is not statically determinable.
type Result interface {
	EdgeDType(name string) (ir.DataType, bool)
	EdgeShape(name string) ([]int64, bool)
}

// Oracle produces inference results for a graph. Infer returns an error when
// inference is unavailable for the graph; inference-dependent passes then
// skip entirely and leave the graph unchanged.
type Oracle interface {
	Infer(ctx context.Context, g *ir.Graph) (Result, error)
}

// ErrNoDeclarations is returned when a graph carries no usable value-info.
var ErrNoDeclarations = errors.New("shapeinfer: graph declares no value info")

// Declared is an Oracle that reads the value-info declared in the model
// itself: graph inputs, outputs, intermediate tensor declarations, and
// initializer shapes. It performs no propagation of its own.
type Declared struct{}

// NewDeclared creates a declared-info oracle.
func NewDeclared() *Declared {
	return &Declared{}
}

// Infer implements Oracle by snapshotting the graph's declarations.
func (d *Declared) Infer(ctx context.Context, g *ir.Graph) (Result, error) {
	res := &declaredResult{
		dtypes: make(map[string]ir.DataType),
		shapes: make(map[string][]int64),
	}

	record := func(vi *ir.ValueInfo) {
		if vi.DType != ir.DTypeUndefined {
			res.dtypes[vi.Name] = vi.DType
		}
		if vi.Shape != nil {
			res.shapes[vi.Name] = append([]int64(nil), vi.Shape...)
		}
	}

	for _, n := range g.Nodes() {
		for _, name := range append(append([]string{}, n.Inputs...), n.Outputs...) {
			if name == "" {
				continue
			}
			if vi, ok := g.ValueInfoFor(name); ok {
				record(vi)
			}
		}
	}
	for _, name := range g.InputNames() {
		if vi, ok := g.ValueInfoFor(name); ok {
			record(vi)
		}
	}
	for _, name := range g.OutputNames() {
		if vi, ok := g.ValueInfoFor(name); ok {
			record(vi)
		}
	}

	if len(res.dtypes) == 0 && len(res.shapes) == 0 {
		return nil, ErrNoDeclarations
	}
	return res, nil
}

type declaredResult struct {
	dtypes map[string]ir.DataType
	shapes map[string][]int64
}

func (r *declaredResult) EdgeDType(name string) (ir.DataType, bool) {
	d, ok := r.dtypes[name]
	return d, ok
}

func (r *declaredResult) EdgeShape(name string) ([]int64, bool) {
	s, ok := r.shapes[name]
	return s, ok
}
