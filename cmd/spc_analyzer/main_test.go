package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/spc_analyzer_go/internal/spc"
)

func TestRunAnalyze(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "hygiene.csv")
	csv := "period,value,denominator\n" +
		"2024-01,90,100\n" +
		"2024-02,95,100\n" +
		"2024-03,40,100\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0644))

	t.Run("to stdout", func(t *testing.T) {
		analyzeDataType = "proportion"
		analyzeSigmaLevel = 3
		analyzeBaselineStart = ""
		analyzeBaselineEnd = ""
		analyzeOut = ""

		var buf bytes.Buffer
		analyzeCmd.SetOut(&buf)
		require.NoError(t, runAnalyze(analyzeCmd, []string{csvPath}))

		var result spc.SPCResult
		require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
		assert.Equal(t, spc.ChartTypePChart, result.ChartType)
		assert.Len(t, result.Points, 3)
		assert.Equal(t, 75.0, result.CenterLine)
	})

	t.Run("to file", func(t *testing.T) {
		analyzeDataType = "proportion"
		analyzeOut = filepath.Join(dir, "result.json")

		require.NoError(t, runAnalyze(analyzeCmd, []string{csvPath}))

		raw, err := os.ReadFile(analyzeOut)
		require.NoError(t, err)
		var result spc.SPCResult
		require.NoError(t, json.Unmarshal(raw, &result))
		assert.Equal(t, spc.ChartTypePChart, result.ChartType)
		analyzeOut = ""
	})

	t.Run("unknown data type", func(t *testing.T) {
		analyzeDataType = "histogram"
		err := runAnalyze(analyzeCmd, []string{csvPath})
		require.Error(t, err)
		analyzeDataType = "proportion"
	})
}

func TestRunReportEndToEnd(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	hygiene := "period,value,denominator\n" +
		"2024-01,90,100\n" +
		"2024-02,95,100\n" +
		"2024-03,40,100\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hygiene.csv"), []byte(hygiene), 0644))

	falls := "period,value\n" +
		"2024-01,10\n" +
		"2024-02,12\n" +
		"2024-03,11\n" +
		"2024-04,13\n" +
		"2024-05,50\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "falls.csv"), []byte(falls), 0644))

	cfg := "output_dir: " + outDir + "\n" +
		"metrics:\n" +
		"  - name: Hand Hygiene Compliance\n" +
		"    data_type: proportion\n" +
		"    input: " + filepath.Join(dir, "hygiene.csv") + "\n" +
		"  - name: Fall Count\n" +
		"    data_type: continuous\n" +
		"    input: " + filepath.Join(dir, "falls.csv") + "\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	require.NoError(t, runReport(reportCmd, []string{cfgPath}))

	for _, name := range []string{
		"hand_hygiene_compliance.json",
		"hand_hygiene_compliance_chart.png",
		"fall_count.json",
		"fall_count_chart.png",
		"fall_count_mr.png",
		"spc_report.pdf",
	} {
		info, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}

	raw, err := os.ReadFile(filepath.Join(outDir, "fall_count.json"))
	require.NoError(t, err)
	var result spc.SPCResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, spc.ChartTypeIMR, result.ChartType)
	assert.Len(t, result.MovingRange, 4)
	assert.Equal(t, 1, result.SignalCount())

	pdf, err := os.ReadFile(filepath.Join(outDir, "spc_report.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestRunReportRejectsCollidingMetricNames(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()

	falls := "period,value\n2024-01,10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "falls.csv"), []byte(falls), 0644))

	// Distinct display names that sanitize to the same file stem must
	// be rejected up front instead of overwriting each other's output.
	cfg := "output_dir: " + filepath.Join(dir, "out") + "\n" +
		"metrics:\n" +
		"  - name: \"Falls%\"\n" +
		"    data_type: continuous\n" +
		"    input: " + filepath.Join(dir, "falls.csv") + "\n" +
		"  - name: \"Falls?\"\n" +
		"    data_type: continuous\n" +
		"    input: " + filepath.Join(dir, "falls.csv") + "\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	err := runReport(reportCmd, []string{cfgPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same output files")
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestRunReportMissingConfig(t *testing.T) {
	logger = zap.NewNop()
	err := runReport(reportCmd, []string{filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)
}
