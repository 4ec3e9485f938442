package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executePlay(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewPlayCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return buf.String(), err
}

func TestPlayCounterClicks(t *testing.T) {
	out, err := executePlay(t, &RootOptions{Format: "text", Color: "never"},
		counterTree, "--slice", "1ms", "--click", "#inc", "--click", "#inc")
	require.NoError(t, err)

	assert.Contains(t, out, "== frame 0: initial render ==\npass 1: 13 units, 12 placements, 0 updates, 0 deletions\n")
	assert.Contains(t, out, "== frame 1: #inc ==\npass 2: 13 units, 0 placements, 12 updates, 0 deletions\n")
	assert.Contains(t, out, "== frame 2: #inc ==\npass 3:")
	assert.Contains(t, out, `        "2"`)
}

func TestPlayDiff(t *testing.T) {
	out, err := executePlay(t, &RootOptions{Format: "text", Color: "never"},
		counterTree, "--slice", "1ms", "--click", "#dec", "--diff")
	require.NoError(t, err)

	assert.Contains(t, out, "-         \"0\"\n+         \"-1\"\n")
	// Unchanged lines are not repeated after the first frame.
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte(`"Counter"`)))
}

func TestPlayJSONWithMetrics(t *testing.T) {
	out, err := executePlay(t, &RootOptions{Format: "json"},
		"../../testdata/trees/toggle.cue", "--slice", "1ms",
		"--click", "#toggle", "--click", "#toggle",
		"--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   PlayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Frames, 3)
	assert.Empty(t, resp.Data.Frames[0].Target)
	assert.Equal(t, "#toggle", resp.Data.Frames[1].Target)
	assert.Contains(t, string(resp.Data.Frames[1].Tree), `{"text":"hello"}`)
	assert.NotContains(t, string(resp.Data.Frames[2].Tree), `"hello"`)
	assert.Positive(t, resp.Data.Slices)
	assert.Equal(t, float64(3), resp.Data.Metrics["weft_scheduler_commits_total"])
}

func TestPlayHandlerWithoutStateChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noop.cue")
	src := `tree: {tag: "button", props: {id: "b"}, on: {click: "noop"}, children: ["x"]}`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	out, err := executePlay(t, &RootOptions{Format: "text", Color: "never"},
		path, "--slice", "1ms", "--click", "#b")
	require.NoError(t, err)
	assert.Contains(t, out, "== frame 1: #b ==\nno pass scheduled\n")
}

func TestPlayUnknownTarget(t *testing.T) {
	out, err := executePlay(t, &RootOptions{Format: "text"},
		counterTree, "--slice", "1ms", "--click", "#missing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `no element matches "#missing"`)
}

func TestPlayRejectsZeroSlice(t *testing.T) {
	_, err := executePlay(t, &RootOptions{Format: "text"}, counterTree, "--slice", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestChangedLines(t *testing.T) {
	assert.Equal(t, "- a\n+ b\n", changedLines("  x\n- a\n+ b\n  y\n"))
	assert.Equal(t, "  (no host changes)\n", changedLines(""))
}
