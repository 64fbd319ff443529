package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/spc_analyzer_go/internal/config"
	"github.com/user/spc_analyzer_go/internal/parser"
	"github.com/user/spc_analyzer_go/internal/report"
	"github.com/user/spc_analyzer_go/internal/spc"
)

var reportHeatmapPeriods int

// reportCmd analyzes every metric named in a YAML config and writes
// per-metric JSON and charts plus a combined PDF into the output
// directory.
var reportCmd = &cobra.Command{
	Use:   "report [config.yaml]",
	Short: "Analyze a batch of metrics and build charts plus a PDF report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportHeatmapPeriods, "heatmap-periods", 12, "How many recent periods the signal overview shows")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	logger.Info("starting batch analysis",
		zap.Int("metrics", len(cfg.Metrics)),
		zap.String("outputDir", cfg.OutputDir))

	var (
		mu       sync.Mutex
		analyses = make(map[string]report.MetricAnalysis, len(cfg.Metrics))
		plots    = make(map[string][]byte)
	)

	var eg errgroup.Group
	eg.SetLimit(4)
	for _, metric := range cfg.Metrics {
		eg.Go(func() error {
			analysis, images, err := analyzeMetric(metric, cfg.OutputDir)
			if err != nil {
				return err
			}
			mu.Lock()
			analyses[metric.Name] = *analysis
			for key, img := range images {
				plots[key] = img
			}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	// Assemble in config order so the report layout is stable from
	// run to run regardless of which worker finished first.
	ordered := make([]report.MetricAnalysis, 0, len(cfg.Metrics))
	for _, metric := range cfg.Metrics {
		ordered = append(ordered, analyses[metric.Name])
	}

	heatmap, err := report.CreateSignalHeatmap(ordered, reportHeatmapPeriods)
	if err != nil {
		logger.Warn("skipping signal overview", zap.Error(err))
	} else {
		plots[report.PlotKeySignalHeatmap] = heatmap
	}

	pdfPath := filepath.Join(cfg.OutputDir, "spc_report.pdf")
	if err := report.BuildPDFReport(pdfPath, ordered, plots); err != nil {
		return fmt.Errorf("failed to build PDF report: %w", err)
	}
	logger.Info("report written", zap.String("path", pdfPath))
	return nil
}

// analyzeMetric parses, analyzes and charts one metric, writing its
// JSON result and chart PNGs into the output directory and returning
// the images again for PDF assembly.
func analyzeMetric(metric config.MetricConfig, outputDir string) (*report.MetricAnalysis, map[string][]byte, error) {
	parsed, err := parser.ParseMetricCSV(metric.Input)
	if err != nil {
		return nil, nil, fmt.Errorf("metric %q: %w", metric.Name, err)
	}
	for _, warning := range parsed.ParseErrors {
		logger.Warn("parse issue", zap.String("metric", metric.Name), zap.String("detail", warning))
	}

	result, err := spc.CalculateSPC(spc.DataType(metric.DataType), parsed.Points, metric.SPCOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("metric %q: %w", metric.Name, err)
	}
	logger.Info("metric analyzed",
		zap.String("metric", metric.Name),
		zap.String("chartType", string(result.ChartType)),
		zap.Int("points", len(result.Points)),
		zap.Int("signals", result.SignalCount()))

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("metric %q: failed to encode result: %w", metric.Name, err)
	}
	base := config.ArtifactBase(metric.Name)
	jsonPath := filepath.Join(outputDir, base+".json")
	if err := os.WriteFile(jsonPath, append(encoded, '\n'), 0644); err != nil {
		return nil, nil, fmt.Errorf("metric %q: %w", metric.Name, err)
	}

	analysis := &report.MetricAnalysis{
		Name:       metric.Name,
		DataType:   spc.DataType(metric.DataType),
		SigmaLevel: spc.SigmaLevel(metric.SigmaLevel),
		Result:     result,
		Warnings:   parsed.ParseErrors,
	}

	images := make(map[string][]byte)
	if len(result.Points) > 0 {
		chart, err := report.CreateControlChart(result, metric.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("metric %q: %w", metric.Name, err)
		}
		images[report.ControlChartKey(metric.Name)] = chart
		if err := os.WriteFile(filepath.Join(outputDir, base+"_chart.png"), chart, 0644); err != nil {
			return nil, nil, fmt.Errorf("metric %q: %w", metric.Name, err)
		}
	}
	if len(result.MovingRange) > 0 {
		mrChart, err := report.CreateMovingRangeChart(result, metric.Name+" Moving Range")
		if err != nil {
			return nil, nil, fmt.Errorf("metric %q: %w", metric.Name, err)
		}
		images[report.MovingRangeChartKey(metric.Name)] = mrChart
		if err := os.WriteFile(filepath.Join(outputDir, base+"_mr.png"), mrChart, 0644); err != nil {
			return nil, nil, fmt.Errorf("metric %q: %w", metric.Name, err)
		}
	}

	return analysis, images, nil
}
