// Package testutil provides an end-to-end harness that writes HCL model
// files to a temporary directory, runs them through the full app and
// decodes the written results.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/phydrago/internal/app"
	"github.com/vk/phydrago/internal/hcl_adapter"
	"github.com/vk/phydrago/internal/output"
	"github.com/vk/phydrago/internal/registry"
)

// HarnessResult holds the outcomes of an end-to-end model run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	// Document is the decoded result file; nil when the run failed.
	Document *output.Document
}

// RunModelTest runs the model files through the app using a background
// context. Without modules the app's built-in modules are used.
func RunModelTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunModelTestWithContext(context.Background(), t, files, modules...)
}

// RunModelTestWithContext is RunModelTest with a caller-provided context.
func RunModelTestWithContext(ctx context.Context, t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	modelDir := filepath.Join(tmpDir, "model")
	require.NoError(t, os.Mkdir(modelDir, 0o755))

	// Relative paths like "npz/zoo.hcl" create subdirectories of the model dir.
	for name, content := range files {
		filePath := filepath.Join(modelDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	resultPath := filepath.Join(tmpDir, "result.json")
	cfg := &app.Config{
		ModelPath:    modelDir,
		OutputPath:   resultPath,
		OutputFormat: "json",
		LogLevel:     "debug",
		LogFormat:    "text",
	}

	logBuffer := &app.SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, io.Discard, cfg, hcl_adapter.NewLoader(), modules...)
	}()

	if os.Getenv("PHYDRAGO_TEST_LOGS") == "true" {
		t.Cleanup(func() { t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String()) })
	}

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	result := &HarnessResult{App: testApp}
	result.Err = testApp.Run(ctx)
	result.LogOutput = logBuffer.String()
	if result.Err != nil {
		return result
	}

	data, err := os.ReadFile(resultPath)
	require.NoError(t, err, "run succeeded but wrote no result file")
	result.Document = &output.Document{}
	require.NoError(t, json.Unmarshal(data, result.Document))
	return result
}
