package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/weft/internal/markup"
)

const treesDir = "../../testdata/trees"

func executeValidate(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateTestdataTrees(t *testing.T) {
	out, err := executeValidate(t, &RootOptions{Format: "text", Color: "never"}, treesDir)
	require.NoError(t, err, out)

	for _, name := range []string{"counter.cue", "profile.yaml", "toggle.cue"} {
		assert.Contains(t, out, "✓ "+filepath.Join(treesDir, name))
	}
	assert.NotContains(t, out, "✗")
}

func TestValidateReportsEveryFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_ok.cue"), []byte(`tree: {tag: "p", children: ["hi"]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_bad.cue"), []byte("tree: {\n\ttag: \"p\"\n\ttext: \"x\"\n}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c_bad.yaml"), []byte("tree:\n  component: Missing\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	out, err := executeValidate(t, &RootOptions{Format: "json"}, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 3)

	assert.True(t, resp.Data.Files[0].Valid)

	bad := resp.Data.Files[1]
	assert.False(t, bad.Valid)
	require.NotNil(t, bad.Error)
	assert.Equal(t, markup.ErrCodeNodeShape, bad.Error.Code)
	assert.Positive(t, bad.Error.Line)

	missing := resp.Data.Files[2]
	require.NotNil(t, missing.Error)
	assert.Equal(t, markup.ErrCodeUnknownComponent, missing.Error.Code)
}

func TestValidateTextErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "float.cue")
	require.NoError(t, os.WriteFile(path, []byte(`tree: {tag: "p", props: {width: 1.5}}`), 0644))

	out, err := executeValidate(t, &RootOptions{Format: "text", Color: "never"}, path)
	require.Error(t, err)
	assert.Contains(t, out, "✗ "+path)
	assert.Contains(t, out, "["+markup.ErrCodeInvalidValue+"]")
}

func TestValidateNoFiles(t *testing.T) {
	_, err := executeValidate(t, &RootOptions{Format: "text"}, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateMissingPath(t *testing.T) {
	_, err := executeValidate(t, &RootOptions{Format: "text"}, "/nonexistent/trees")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTreeFiles(t *testing.T) {
	files, err := treeFiles([]string{treesDir, counterTree})
	require.NoError(t, err)
	assert.Contains(t, files, filepath.Join(treesDir, "todo.cue"))
	assert.Equal(t, counterTree, files[len(files)-1])
}
