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

	"github.com/shaunharker/conley-morse-database/internal/atlas"
	"github.com/shaunharker/conley-morse-database/internal/render"
	"github.com/shaunharker/conley-morse-database/internal/store"
)

func TestBuildToStdout(t *testing.T) {
	out, _, err := execute(t, "build", testModel("self_loop_pair.yaml"))
	require.NoError(t, err)

	want, err := os.ReadFile(filepath.Join("..", "render", "testdata", "golden", "self_loop_pair.xml.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), out)
}

func TestBuildJSONToStdout(t *testing.T) {
	out, _, err := execute(t, "build", testModel("four_node.cue"), "--emit", "json", "--workers", "4")
	require.NoError(t, err)

	var doc render.JSONDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 4, doc.Dimension)
	assert.Len(t, doc.Boxes, 24)
	assert.Equal(t, "first-fastest", doc.Ordering)
}

func TestBuildOrdering(t *testing.T) {
	out, _, err := execute(t, "build", testModel("four_node.cue"), "--ordering", "last-fastest")
	require.NoError(t, err)

	doc, err := render.DecodeXML(bytes.NewReader([]byte(out)))
	require.NoError(t, err)
	require.Len(t, doc.Boxes, 24)
	// Region 1 varies only the last axis.
	assert.Equal(t, render.Vector{0, 0, 0, 10}, doc.Boxes[1].Bounds.Lower)
}

func TestBuildToFileWithSummary(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "atlas.xml")

	out, _, err := execute(t, "build", testModel("toggle.yaml"), "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Built atlas of toggle: 2 variable(s), 4 region(s), first-fastest")
	assert.Contains(t, out, "Wrote atlas to "+outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	doc, err := render.DecodeXML(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Dimension)
	assert.Len(t, doc.Boxes, 4)
}

func TestBuildWithDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "atlases.db")
	outFile := filepath.Join(dir, "atlas.json")

	out, stderr, err := execute(t, "--format", "json", "build", testModel("toggle.yaml"),
		"-o", outFile, "--emit", "json", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "atlas stored")

	var resp struct {
		Status string      `json:"status"`
		Data   BuildResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "toggle", resp.Data.Model)
	assert.Equal(t, 4, resp.Data.Regions)
	assert.Len(t, resp.Data.Hash, 64)
	assert.NotEmpty(t, resp.Data.AtlasID)
	assert.Equal(t, int64(1), resp.Data.Seq)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	a, rec, err := st.ReadAtlas(context.Background(), resp.Data.AtlasID)
	require.NoError(t, err)
	assert.Equal(t, resp.Data.Hash, rec.ModelHash)
	assert.Len(t, a.Regions, 4)
}

func TestBuildUnresolvedSignature(t *testing.T) {
	out, _, err := execute(t, "build", testModel("incomplete_map.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), string(atlas.ErrCodeUnresolvedSignature))
	assert.Contains(t, out, "Error [UNRESOLVED_SIGNATURE]")
}

func TestBuildInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"emit", []string{"--emit", "yaml"}},
		{"ordering", []string{"--ordering", "sideways"}},
		{"workers", []string{"--workers", "-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"build", testModel("toggle.yaml")}, tt.args...)
			_, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), ErrCodeInvalidOption)
		})
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"build", testModel("four_node.cue")})

	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, context.Canceled)
}
