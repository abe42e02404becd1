package integrationtests

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/avery/internal/app"
	"github.com/vk/avery/internal/testutil"
	"github.com/vk/avery/registry"
)

// harnessResult holds the outcomes of an integration test run.
type harnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// runCheck writes files into a temporary root, then runs the check
// operation over root/models and root/records with the given modules.
func runCheck(t *testing.T, files map[string]string, modules ...registry.Module) *harnessResult {
	t.Helper()
	return run(t, files, func(a *app.App) error { return a.Check() }, modules...)
}

// runDescribe is runCheck for the describe operation.
func runDescribe(t *testing.T, files map[string]string, modules ...registry.Module) *harnessResult {
	t.Helper()
	return run(t, files, func(a *app.App) error { return a.Describe() }, modules...)
}

func run(t *testing.T, files map[string]string, op func(*app.App) error, modules ...registry.Module) *harnessResult {
	t.Helper()

	root := testutil.WriteFiles(t, files)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "records"), 0o755))

	cfg, err := app.NewConfig(app.Config{
		ModelsPath:  filepath.Join(root, "models"),
		RecordsPath: filepath.Join(root, "records"),
		LogFormat:   "text",
		LogLevel:    "debug",
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(context.Background(), out, logs, cfg, registry.New(modules...))
	}()
	if panicErr != nil {
		return &harnessResult{
			LogOutput: logs.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := op(testApp)

	if os.Getenv("AVERY_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}

	return &harnessResult{
		Output:    out.String(),
		LogOutput: logs.String(),
		Err:       runErr,
		App:       testApp,
	}
}
