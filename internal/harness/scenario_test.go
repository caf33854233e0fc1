package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario next to a copy of the toggle model.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	model, err := os.ReadFile(filepath.Join("testdata", "models", "toggle.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toggle.yaml"), model, 0644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: toggle_check
description: "Toggle switch"
model: toggle.yaml
options:
  workers: 2
  ordering: last-fastest
expect:
  regions: 4
  boxes:
    - index: 0
      sigma_lower: [2, 2]
golden: true
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "toggle_check", scenario.Name)
	assert.Equal(t, "Toggle switch", scenario.Description)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "toggle.yaml"), scenario.Model)
	assert.Equal(t, 2, scenario.Options.Workers)
	assert.Equal(t, "last-fastest", scenario.Options.Ordering)
	assert.Equal(t, 4, scenario.Expect.Regions)
	require.Len(t, scenario.Expect.Boxes, 1)
	assert.Equal(t, []float64{2, 2}, scenario.Expect.Boxes[0].SigmaLower)
	assert.True(t, scenario.Golden)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "Misspelled expect"
model: toggle.yaml
expects:
  regions: 4
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	path := writeScenario(t, `
name: based
description: "Model resolved against an explicit base"
model: models/toggle.yaml
expect:
  regions: 4
`)

	_, err := LoadScenarioWithBasePath(path, "testdata")
	require.NoError(t, err)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nmodel: toggle.yaml\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nmodel: toggle.yaml\n",
			wantErr: "description is required",
		},
		{
			name:    "missing model",
			content: "name: n\ndescription: d\n",
			wantErr: "model is required",
		},
		{
			name:    "model not found",
			content: "name: n\ndescription: d\nmodel: absent.yaml\n",
			wantErr: "model file not found",
		},
		{
			name:    "negative workers",
			content: "name: n\ndescription: d\nmodel: toggle.yaml\noptions: {workers: -1}\n",
			wantErr: "options.workers must be non-negative",
		},
		{
			name:    "bad ordering",
			content: "name: n\ndescription: d\nmodel: toggle.yaml\noptions: {ordering: sideways}\n",
			wantErr: "options.ordering",
		},
		{
			name:    "unknown error code",
			content: "name: n\ndescription: d\nmodel: toggle.yaml\nexpect: {error: BROKEN}\n",
			wantErr: `unknown error code "BROKEN"`,
		},
		{
			name:    "error combined with regions",
			content: "name: n\ndescription: d\nmodel: toggle.yaml\nexpect: {error: INVALID_MODEL, regions: 4}\n",
			wantErr: "cannot be combined",
		},
		{
			name:    "error with golden",
			content: "name: n\ndescription: d\nmodel: toggle.yaml\nexpect: {error: INVALID_MODEL}\ngolden: true\n",
			wantErr: "golden requires a successful build",
		},
		{
			name:    "box out of range",
			content: "name: n\ndescription: d\nmodel: toggle.yaml\nexpect: {regions: 4, boxes: [{index: 4, lower: [0, 0]}]}\n",
			wantErr: "index 4 out of range for 4 regions",
		},
		{
			name:    "empty box check",
			content: "name: n\ndescription: d\nmodel: toggle.yaml\nexpect: {boxes: [{index: 0}]}\n",
			wantErr: "at least one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
