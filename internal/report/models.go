package report

import "github.com/user/spc_analyzer_go/internal/spc"

// MetricAnalysis pairs one metric's settings with its computed result,
// ready for charting and PDF assembly.
type MetricAnalysis struct {
	Name       string
	DataType   spc.DataType
	SigmaLevel spc.SigmaLevel
	Result     *spc.SPCResult
	Warnings   []string // Non-fatal parse problems surfaced in the report
}

// PlotKeySignalHeatmap keys the batch overview heatmap in the plot
// image map handed to BuildPDFReport.
const PlotKeySignalHeatmap = "signal_overview"

// ControlChartKey returns the plot image key for a metric's control
// chart.
func ControlChartKey(metricName string) string {
	return "control_" + metricName
}

// MovingRangeChartKey returns the plot image key for a metric's
// moving-range chart.
func MovingRangeChartKey(metricName string) string {
	return "mr_" + metricName
}
