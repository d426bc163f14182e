package app_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fusiongo/internal/app"
	"github.com/vk/fusiongo/internal/testutil"
)

const fusableModel = `
model "tiny" {
  input "x" {
    dtype = "float"
    shape = [2, 4]
  }

  output "y" {
    dtype = "float"
  }

  initializer "w" {
    dtype = "float"
    shape = [4, 4]
    data = [
      1, 0, 0, 0,
      0, 1, 0, 0,
      0, 0, 1, 0,
      0, 0, 0, 1,
    ]
  }

  node "mm" {
    op      = "MatMul"
    inputs  = ["x", "w"]
    outputs = ["mm_out"]
  }

  node "act" {
    op      = "FastGelu"
    inputs  = ["mm_out"]
    outputs = ["y"]
  }
}
`

func TestAppOptimizesModel(t *testing.T) {
	result := testutil.RunOptimizerTest(t, map[string]string{
		"tiny.hcl": fusableModel,
	}, app.Config{})

	require.NoError(t, result.Err)
	require.NotNil(t, result.App)

	g := result.App.Graph()
	require.Equal(t, 1, g.NodeCount())
	assert.Equal(t, "GemmFastGelu", g.Nodes()[0].OpType)

	assert.Contains(t, result.LogOutput, "tiny: 2 nodes before, 1 after")
	assert.Contains(t, result.LogOutput, "Pass finished.")
}

func TestAppWritesOptimizedModel(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "optimized.hcl")
	result := testutil.RunOptimizerTest(t, map[string]string{
		"tiny.hcl": fusableModel,
	}, app.Config{OutPath: outPath})

	require.NoError(t, result.Err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `model "tiny"`)
	assert.Contains(t, string(data), "GemmFastGelu")

	reloaded := testutil.MustParse(t, string(data))
	assert.Equal(t, 1, reloaded.NodeCount())
}

func TestAppMalformedModel(t *testing.T) {
	result := testutil.RunOptimizerTest(t, map[string]string{
		"broken.hcl": `model "broken" {`,
	}, app.Config{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "failed to load model")
}

func TestAppEmptyDirectory(t *testing.T) {
	result := testutil.RunOptimizerTest(t, nil, app.Config{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
}

func TestAppJSONLogging(t *testing.T) {
	result := testutil.RunOptimizerTest(t, map[string]string{
		"tiny.hcl": fusableModel,
	}, app.Config{LogFormat: "json", LogLevel: "debug"})

	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, `"msg":"Model loaded."`)
}
