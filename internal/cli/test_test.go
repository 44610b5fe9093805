package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../harness/testdata/scenarios"

func TestTestCommand_PassesAgainstCheckedInGoldens(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), scenariosDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ offline_checkout_drains_on_reconnect")
	assert.Contains(t, out, "3 passed, 0 failed, 3 total")
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	golden := t.TempDir()

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), scenariosDir, "--golden", golden, "--update")
	require.NoError(t, err, out)
	assert.Contains(t, out, "(golden updated)")

	files, err := filepath.Glob(filepath.Join(golden, "*.golden"))
	require.NoError(t, err)
	assert.Len(t, files, 3)

	out, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), scenariosDir, "--golden", golden)
	require.NoError(t, err, out)
	assert.NotContains(t, out, "(golden updated)")

	target := filepath.Join(golden, "remote_changes_and_staff_updates.golden")
	require.NoError(t, os.WriteFile(target, []byte("stale\n"), 0644))

	out, err = execute(t, NewTestCommand(&RootOptions{Format: "json"}), scenariosDir, "--golden", golden)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result TestResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 1, result.Failed)
	for _, s := range result.Scenarios {
		if s.Name == "remote_changes_and_staff_updates" {
			assert.Contains(t, s.Errors, "trace does not match golden file (run with --update to regenerate)")
		}
	}
}

func TestTestCommand_Filter(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), scenariosDir, "--filter", "offline_*")
	require.NoError(t, err)

	var result TestResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "offline_checkout_drains_on_reconnect", result.Scenarios[0].Name)
}

func TestTestCommand_MissingDirectory(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")

	out, err = execute(t, NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)
	var result TestResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, result.Scenarios)
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml", "notes.txt", "sub/c.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("name: x\n"), 0644))
	}

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = findScenarioFiles(dir, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yml")}, files)

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)
}
