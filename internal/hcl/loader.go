package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/fusiongo/internal/ctxlog"
	"github.com/vk/fusiongo/internal/fsutil"
	"github.com/vk/fusiongo/internal/ir"
	"github.com/vk/fusiongo/internal/schema"
)

// ModelFileExtension is the suffix model files are discovered by.
const ModelFileExtension = ".hcl"

// Loader reads HCL model files and translates them into the ir graph model.
type Loader struct{}

// NewLoader creates a new HCL model loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes the top-level blocks of any model file.
type fileRoot struct {
	Models []*schema.Model `hcl:"model,block"`
	Remain hcl.Body        `hcl:",remain"`
}

// Load discovers model files under the given paths, parses them, and
// translates the single model they declare into a graph. Exactly one model
// block must be present across all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*ir.Graph, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ModelFileExtension)
		if err != nil {
			return nil, fmt.Errorf("discovering model files under %s: %w", path, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s model files found under %v", ModelFileExtension, paths)
	}
	logger.Debug("Discovered model files.", "count", len(files))

	parser := hclparse.NewParser()
	var models []*schema.Model
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse model file %s: %w", file, diags)
		}
		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode model file %s: %w", file, diags)
		}
		models = append(models, root.Models...)
	}

	return l.single(ctx, models)
}

// Parse translates model source held in memory, primarily for tests.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*ir.Graph, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}
	return l.single(ctx, root.Models)
}

func (l *Loader) single(ctx context.Context, models []*schema.Model) (*ir.Graph, error) {
	logger := ctxlog.FromContext(ctx)

	switch len(models) {
	case 0:
		return nil, fmt.Errorf("no model block found")
	case 1:
	default:
		return nil, fmt.Errorf("found %d model blocks, expected exactly one", len(models))
	}

	g, err := l.translateModel(ctx, models[0])
	if err != nil {
		return nil, err
	}
	logger.Debug("Model loaded and translated.",
		"model", g.Name,
		"nodes", g.NodeCount(),
		"inputs", len(g.InputNames()),
		"outputs", len(g.OutputNames()),
	)
	return g, nil
}
