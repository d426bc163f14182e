package hcl

import (
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/fusiongo/internal/ir"
)

// Writer serializes a graph back into the HCL model format, so an optimized
// model can be written out for inspection or re-loading.
type Writer struct{}

// NewWriter creates a new HCL model writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes renders the graph as model-file source.
func (w *Writer) Bytes(g *ir.Graph) ([]byte, error) {
	file := hclwrite.NewEmptyFile()
	model := file.Body().AppendNewBlock("model", []string{g.Name}).Body()

	writeValue := func(blockType string, vi *ir.ValueInfo) {
		body := model.AppendNewBlock(blockType, []string{vi.Name}).Body()
		if vi.DType != ir.DTypeUndefined {
			body.SetAttributeValue("dtype", cty.StringVal(vi.DType.String()))
		}
		if vi.Shape != nil {
			body.SetAttributeValue("shape", shapeValue(vi.Shape))
		}
	}

	for _, name := range g.InputNames() {
		if vi, ok := g.GraphInput(name); ok {
			writeValue("input", vi)
		}
	}
	for _, name := range g.OutputNames() {
		if vi, ok := g.ValueInfoFor(name); ok {
			writeValue("output", vi)
		}
	}

	inits := g.Initializers()
	initNames := make([]string, 0, len(inits))
	for name := range inits {
		initNames = append(initNames, name)
	}
	sort.Strings(initNames)
	for _, name := range initNames {
		if err := writeInitializer(model, inits[name]); err != nil {
			return nil, err
		}
	}

	values := g.ValueInfos()
	valueNames := make([]string, 0, len(values))
	for name := range values {
		valueNames = append(valueNames, name)
	}
	sort.Strings(valueNames)
	for _, name := range valueNames {
		writeValue("tensor", values[name])
	}

	for _, n := range g.Nodes() {
		writeNode(model, n)
	}

	return hclwrite.Format(file.Bytes()), nil
}

// Save renders the graph and writes it to path.
func (w *Writer) Save(g *ir.Graph, path string) error {
	src, err := w.Bytes(g)
	if err != nil {
		return fmt.Errorf("rendering model %q: %w", g.Name, err)
	}
	return os.WriteFile(path, src, 0o644)
}

func writeInitializer(model *hclwrite.Body, t *ir.Tensor) error {
	body := model.AppendNewBlock("initializer", []string{t.Name}).Body()
	body.SetAttributeValue("dtype", cty.StringVal(t.DType.String()))
	body.SetAttributeValue("shape", shapeValue(t.Dims))
	if t.External {
		body.SetAttributeValue("external", cty.True)
		return nil
	}
	data, ok := t.Values()
	if !ok {
		return fmt.Errorf("initializer %q: data cannot be rendered", t.Name)
	}
	body.SetAttributeValue("data", data)
	return nil
}

func writeNode(model *hclwrite.Body, n *ir.Node) {
	body := model.AppendNewBlock("node", []string{n.Name}).Body()
	body.SetAttributeValue("op", cty.StringVal(n.OpType))
	if n.Domain != "" {
		body.SetAttributeValue("domain", cty.StringVal(n.Domain))
	}
	body.SetAttributeValue("inputs", stringsValue(n.Inputs))
	body.SetAttributeValue("outputs", stringsValue(n.Outputs))

	if len(n.Attrs) > 0 {
		names := make([]string, 0, len(n.Attrs))
		for name := range n.Attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		attrs := body.AppendNewBlock("attributes", nil).Body()
		for _, name := range names {
			attrs.SetAttributeValue(name, n.Attrs[name])
		}
	}
}

func shapeValue(dims []int64) cty.Value {
	if len(dims) == 0 {
		return cty.ListValEmpty(cty.Number)
	}
	elems := make([]cty.Value, len(dims))
	for i, d := range dims {
		elems[i] = cty.NumberIntVal(d)
	}
	return cty.ListVal(elems)
}

func stringsValue(names []string) cty.Value {
	if len(names) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	elems := make([]cty.Value, len(names))
	for i, name := range names {
		elems[i] = cty.StringVal(name)
	}
	return cty.ListVal(elems)
}
