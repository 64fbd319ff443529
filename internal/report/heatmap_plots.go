package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/spc_analyzer_go/internal/spc"
)

// signalScoreCap bounds the heatmap color scale. A score of 1.0 sits
// exactly on a control limit; anything past the cap renders fully
// saturated.
const signalScoreCap = 1.5

// signalGrid adapts a metrics-by-periods matrix of signal scores to
// plotter.GridXYZ. Rows are metrics, columns are the most recent
// periods, right-aligned so the newest period is always the last
// column. Missing cells are NaN.
type signalGrid struct {
	cols int
	rows int
	z    []float64
}

func (g *signalGrid) Dims() (c, r int)   { return g.cols, g.rows }
func (g *signalGrid) Z(c, r int) float64 { return g.z[r*g.cols+c] }
func (g *signalGrid) X(c int) float64    { return float64(c) }
func (g *signalGrid) Y(r int) float64    { return float64(r) }

// CreateSignalHeatmap renders a one-glance overview of a whole batch:
// one row per metric, one column per recent period, colored by how far
// each value sits from its center line relative to the control-limit
// band. Blue is below center, red above; saturated cells touch or
// cross a limit.
func CreateSignalHeatmap(analyses []MetricAnalysis, maxPeriods int) ([]byte, error) {
	if len(analyses) == 0 {
		return nil, fmt.Errorf("no analyses to plot")
	}
	if maxPeriods <= 0 {
		maxPeriods = 12
	}

	grid := &signalGrid{
		cols: maxPeriods,
		rows: len(analyses),
		z:    make([]float64, maxPeriods*len(analyses)),
	}
	for i := range grid.z {
		grid.z[i] = math.NaN()
	}

	for row, a := range analyses {
		if a.Result == nil {
			continue
		}
		points := a.Result.Points
		if len(points) > maxPeriods {
			points = points[len(points)-maxPeriods:]
		}
		offset := maxPeriods - len(points)
		for i, pt := range points {
			grid.z[row*maxPeriods+offset+i] = signalScore(pt)
		}
	}

	p := plot.New()
	p.Title.Text = "Signal Overview"
	p.X.Label.Text = "Reporting period (oldest to newest)"

	colors := moreland.SmoothBlueRed()
	colors.SetMin(-signalScoreCap)
	colors.SetMax(signalScoreCap)

	hm := plotter.NewHeatMap(grid, colors.Palette(255))
	hm.Min = -signalScoreCap
	hm.Max = signalScoreCap
	hm.NaN = color.Gray{Y: 220}
	p.Add(hm)

	p.Y.Tick.Marker = plot.ConstantTicks(metricTicks(analyses))
	p.X.Tick.Marker = plot.ConstantTicks(relativePeriodTicks(maxPeriods))

	return writePNG(p, vg.Points(800), vg.Points(400))
}

// signalScore maps a point onto a signed distance from its center
// line, scaled so that -1 and +1 land on the control limits.
// Degenerate limits (UCL equal to LCL) score 0 because no distance
// scale exists.
func signalScore(p spc.SPCPoint) float64 {
	halfWidth := (p.UCL - p.LCL) / 2
	if halfWidth <= 0 {
		return 0
	}
	return (p.Value - p.CenterLine) / halfWidth
}

func metricTicks(analyses []MetricAnalysis) []plot.Tick {
	ticks := make([]plot.Tick, len(analyses))
	for i, a := range analyses {
		// Truncate by runes so multi-byte names stay valid UTF-8.
		label := a.Name
		if runes := []rune(label); len(runes) > 24 {
			label = string(runes[:21]) + "..."
		}
		ticks[i] = plot.Tick{Value: float64(i), Label: label}
	}
	return ticks
}

// relativePeriodTicks labels heatmap columns as periods-ago offsets,
// since different metrics may cover different calendar ranges. t-0 is
// the newest column.
func relativePeriodTicks(cols int) []plot.Tick {
	step := cols/12 + 1
	var ticks []plot.Tick
	for c := 0; c < cols; c += step {
		ticks = append(ticks, plot.Tick{Value: float64(c), Label: fmt.Sprintf("t-%d", cols-1-c)})
	}
	if len(ticks) > 0 && ticks[len(ticks)-1].Value != float64(cols-1) {
		ticks = append(ticks, plot.Tick{Value: float64(cols - 1), Label: "t-0"})
	}
	return ticks
}
