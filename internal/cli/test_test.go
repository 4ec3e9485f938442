package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../../testdata/scenarios"

func executeTest(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeScenario writes a counter scenario into dir with an absolute tree
// path, so the file can live outside testdata.
func writeScenario(t *testing.T, dir, name, expect string) string {
	t.Helper()
	tree, err := filepath.Abs(counterTree)
	require.NoError(t, err)
	src := fmt.Sprintf(`name: %s
description: one click on the counter
tree: %s
steps:
  - flush: true
  - dispatch: {target: "#inc", event: click}
  - flush: true
assertions:
  - type: host_text
    target: "#count"
    expect: %q
`, name, tree, expect)
	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := executeTest(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, err := executeTest(t, &RootOptions{Format: "text"}, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios path not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := executeTest(t, &RootOptions{Format: "text"}, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandRunsScenarios(t *testing.T) {
	out, err := executeTest(t, &RootOptions{Format: "text", Color: "never"}, scenariosDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ counter_increments")
	assert.Contains(t, out, "✓ host_failure")
	assert.Contains(t, out, "0 failed")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := executeTest(t, &RootOptions{Format: "json"}, scenariosDir, "--filter", "toggle_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "toggle_open_close", resp.Data.Scenarios[0].Name)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Commits)
}

func TestTestCommandBadFilter(t *testing.T) {
	_, err := executeTest(t, &RootOptions{Format: "text"}, scenariosDir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandFailure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong_count", "Count: 7")

	out, err := executeTest(t, &RootOptions{Format: "text", Color: "never"}, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_count")
	assert.Contains(t, out, "Count: 7")
}

func TestTestCommandGolden(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "counter", "Count: 1")

	out, err := executeTest(t, &RootOptions{Format: "text", Color: "never"}, dir, "--update")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ counter (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "counter.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), "commit pass=2 units=13")

	_, err = executeTest(t, &RootOptions{Format: "text"}, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "counter.golden"), []byte("stale\n"), 0644))
	out, err = executeTest(t, &RootOptions{Format: "text", Color: "never", Verbose: true}, dir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")
	assert.Contains(t, out, "- stale")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("testdata", "scenarios", "golden", "counter.golden"),
		goldenFilePath(filepath.Join("testdata", "scenarios", "counter.yaml")))
}
