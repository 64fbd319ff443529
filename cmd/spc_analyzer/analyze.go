package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/spc_analyzer_go/internal/parser"
	"github.com/user/spc_analyzer_go/internal/spc"
)

var (
	analyzeDataType      string
	analyzeSigmaLevel    int
	analyzeBaselineStart string
	analyzeBaselineEnd   string
	analyzeOut           string
)

// analyzeCmd runs a single metric CSV through the engine and emits the
// result as JSON.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [metric.csv]",
	Short: "Compute one metric's control chart from CSV and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeDataType, "data-type", "t", "", "Metric data type: proportion, rate or continuous (required)")
	analyzeCmd.Flags().IntVar(&analyzeSigmaLevel, "sigma", 3, "Sigma level for control limits (1, 2 or 3)")
	analyzeCmd.Flags().StringVar(&analyzeBaselineStart, "baseline-start", "", "First period of the baseline window (inclusive)")
	analyzeCmd.Flags().StringVar(&analyzeBaselineEnd, "baseline-end", "", "Last period of the baseline window (inclusive)")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Write JSON to this file instead of stdout")
	_ = analyzeCmd.MarkFlagRequired("data-type")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	csvPath := args[0]

	parsed, err := parser.ParseMetricCSV(csvPath)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", csvPath, err)
	}
	for _, warning := range parsed.ParseErrors {
		logger.Warn("parse issue", zap.String("file", csvPath), zap.String("detail", warning))
	}
	logger.Debug("parsed metric CSV", zap.String("file", csvPath), zap.Int("points", len(parsed.Points)))

	opts := spc.SPCOptions{
		SigmaLevel:    spc.SigmaLevel(analyzeSigmaLevel),
		BaselineStart: analyzeBaselineStart,
		BaselineEnd:   analyzeBaselineEnd,
	}
	result, err := spc.CalculateSPC(spc.DataType(analyzeDataType), parsed.Points, opts)
	if err != nil {
		return err
	}
	logger.Info("analysis complete",
		zap.String("chartType", string(result.ChartType)),
		zap.Int("points", len(result.Points)),
		zap.Int("signals", result.SignalCount()))

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	encoded = append(encoded, '\n')

	if analyzeOut == "" {
		_, err := cmd.OutOrStdout().Write(encoded)
		return err
	}
	if err := os.WriteFile(analyzeOut, encoded, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", analyzeOut, err)
	}
	logger.Info("result written", zap.String("path", analyzeOut))
	return nil
}
