// Package testutil provides shared helpers for optimizer tests: a full-app
// harness over temp-dir model files and a thread-safe log capture buffer.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/fusiongo/internal/app"
	"github.com/vk/fusiongo/internal/hcl"
	"github.com/vk/fusiongo/internal/ir"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an optimizer run under test.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunOptimizerTest writes the given model files into a temporary directory,
// runs the full application against it, and captures the log output.
func RunOptimizerTest(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0600))
	}

	cfg.ModelPath = tmpDir
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	var buf SafeBuffer
	result := &HarnessResult{}
	func() {
		// Startup failures surface as panics; fold them into the result so
		// tests can assert on them like ordinary errors.
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("application startup panicked: %v", r)
			}
		}()
		a := app.NewApp(&buf, appConfig, hcl.NewLoader(), hcl.NewWriter())
		result.App = a
		result.Err = a.Run(context.Background())
	}()
	result.LogOutput = buf.String()
	return result
}

// MustParse translates in-memory model source into a graph, failing the test
// on any parse or validation error.
func MustParse(t *testing.T, src string) *ir.Graph {
	t.Helper()
	g, err := hcl.NewLoader().Parse(context.Background(), "test.hcl", []byte(src))
	require.NoError(t, err)
	return g
}
