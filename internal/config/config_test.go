package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/spc_analyzer_go/internal/spc"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
output_dir: out/quality
metrics:
  - name: Hand Hygiene Compliance
    data_type: proportion
    input: data/hand_hygiene.csv
    sigma_level: 2
    baseline_start: "2024-01"
    baseline_end: "2024-06"
  - name: Falls per 1000 Bed Days
    data_type: rate
    input: data/falls.csv
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "out/quality", cfg.OutputDir)
	require.Len(t, cfg.Metrics, 2)

	first := cfg.Metrics[0]
	assert.Equal(t, "Hand Hygiene Compliance", first.Name)
	assert.Equal(t, "proportion", first.DataType)
	assert.Equal(t, 2, first.SigmaLevel)

	opts := first.SPCOptions()
	assert.Equal(t, spc.Sigma2, opts.SigmaLevel)
	assert.Equal(t, "2024-01", opts.BaselineStart)
	assert.Equal(t, "2024-06", opts.BaselineEnd)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
metrics:
  - name: Wait Times
    data_type: continuous
    input: data/waits.csv
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, 3, cfg.Metrics[0].SigmaLevel)
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no metrics",
			content: "output_dir: out\n",
			wantErr: "no metrics",
		},
		{
			name: "missing name",
			content: `
metrics:
  - data_type: rate
    input: data/falls.csv
`,
			wantErr: "needs a name",
		},
		{
			name: "duplicate name",
			content: `
metrics:
  - name: Falls
    data_type: rate
    input: a.csv
  - name: Falls
    data_type: rate
    input: b.csv
`,
			wantErr: "listed twice",
		},
		{
			name: "colliding artifact names",
			content: `
metrics:
  - name: "Falls%"
    data_type: rate
    input: a.csv
  - name: "Falls?"
    data_type: rate
    input: b.csv
`,
			wantErr: "same output files",
		},
		{
			name: "missing input",
			content: `
metrics:
  - name: Falls
    data_type: rate
`,
			wantErr: "input file",
		},
		{
			name: "unknown data type",
			content: `
metrics:
  - name: Falls
    data_type: histogram
    input: data/falls.csv
`,
			wantErr: "unknown data type",
		},
		{
			name: "bad sigma level",
			content: `
metrics:
  - name: Falls
    data_type: rate
    input: data/falls.csv
    sigma_level: 4
`,
			wantErr: "sigma level",
		},
		{
			name: "inverted baseline window",
			content: `
metrics:
  - name: Falls
    data_type: rate
    input: data/falls.csv
    baseline_start: "2024-06"
    baseline_end: "2024-01"
`,
			wantErr: "baseline start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestArtifactBase(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Hand Hygiene Compliance", "hand_hygiene_compliance"},
		{"Falls per 1000 Bed Days", "falls_per_1000_bed_days"},
		{"ED Wait - P95", "ed_wait_-_p95"},
		{"???", "metric"},
		{"", "metric"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ArtifactBase(tt.name), "name %q", tt.name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "metrics: [\n"))
	assert.Error(t, err)
}
