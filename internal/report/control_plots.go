package report

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/user/spc_analyzer_go/internal/spc"
)

var (
	valueColor  = color.RGBA{B: 255, A: 255}              // Blue observed series
	limitColor  = color.RGBA{R: 255, A: 255}              // Red control limits
	centerColor = color.Gray{Y: 128}                      // Grey center line
	signalColor = color.RGBA{R: 220, G: 20, B: 0, A: 255} // Special-cause markers
)

// Observed values and center lines draw solid; only the control
// limits draw dashed.
var (
	valueLineStyle  = draw.LineStyle{Color: valueColor, Width: vg.Points(1.5)}
	centerLineStyle = draw.LineStyle{Color: centerColor, Width: vg.Points(1)}
	limitLineStyle  = draw.LineStyle{
		Color:  limitColor,
		Width:  vg.Points(1),
		Dashes: []vg.Length{vg.Points(5), vg.Points(5)},
	}
)

// CreateControlChart renders a metric's control chart as an in-memory
// PNG: observed values, center line, control limits and a marker on
// every special-cause point. When subgroup sizes are steady the
// fixed-limit series gives the cleaner picture; otherwise the
// per-point limits are drawn and step with each subgroup size.
func CreateControlChart(result *spc.SPCResult, title string) ([]byte, error) {
	if result == nil || len(result.Points) == 0 {
		return nil, fmt.Errorf("no chart points to plot")
	}

	points := result.Points
	if !result.SupportsVariableLimits && len(result.FixedPoints) == len(result.Points) {
		points = result.FixedPoints
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Period"
	p.Y.Label.Text = "Value"
	p.X.Tick.Marker = plot.ConstantTicks(periodTicks(chartPeriods(points)))
	p.Add(plotter.NewGrid())

	valueLine, err := plotter.NewLine(seriesXY(points, func(pt spc.SPCPoint) float64 { return pt.Value }))
	if err != nil {
		return nil, fmt.Errorf("failed to create value line: %v", err)
	}
	valueLine.LineStyle = valueLineStyle
	p.Add(valueLine)
	p.Legend.Add("Value", valueLine)

	center, err := plotter.NewLine(seriesXY(points, func(pt spc.SPCPoint) float64 { return pt.CenterLine }))
	if err != nil {
		return nil, fmt.Errorf("failed to create center line: %v", err)
	}
	center.LineStyle = centerLineStyle
	p.Add(center)
	p.Legend.Add("Center", center)

	for _, limit := range []struct {
		label string
		value func(spc.SPCPoint) float64
	}{
		{"UCL", func(pt spc.SPCPoint) float64 { return pt.UCL }},
		{"LCL", func(pt spc.SPCPoint) float64 { return pt.LCL }},
	} {
		line, err := plotter.NewLine(seriesXY(points, limit.value))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s line: %v", limit.label, err)
		}
		line.LineStyle = limitLineStyle
		p.Add(line)
		p.Legend.Add(limit.label, line)
	}

	signals := make(plotter.XYs, 0)
	for i, pt := range points {
		if pt.SpecialCause {
			signals = append(signals, plotter.XY{X: float64(i), Y: pt.Value})
		}
	}
	if len(signals) > 0 {
		scatter, err := plotter.NewScatter(signals)
		if err != nil {
			return nil, fmt.Errorf("failed to create signal markers: %v", err)
		}
		scatter.GlyphStyle.Color = signalColor
		scatter.GlyphStyle.Radius = vg.Points(4)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add("Special cause", scatter)
	}

	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(10)

	return writePNG(p, vg.Points(800), vg.Points(400))
}

// CreateMovingRangeChart renders the moving-range companion of an
// individuals chart. Only i-mr results carry a moving-range series.
func CreateMovingRangeChart(result *spc.SPCResult, title string) ([]byte, error) {
	if result == nil || len(result.MovingRange) == 0 {
		return nil, fmt.Errorf("no moving-range series to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Period"
	p.Y.Label.Text = "Moving Range"
	p.X.Tick.Marker = plot.ConstantTicks(periodTicks(mrPeriods(result.MovingRange)))
	p.Add(plotter.NewGrid())

	mrLine, err := plotter.NewLine(mrXY(result.MovingRange, func(pt spc.SPCMovingRangePoint) float64 { return pt.Value }))
	if err != nil {
		return nil, fmt.Errorf("failed to create moving-range line: %v", err)
	}
	mrLine.LineStyle = valueLineStyle
	p.Add(mrLine)
	p.Legend.Add("Moving range", mrLine)

	center, err := plotter.NewLine(mrXY(result.MovingRange, func(pt spc.SPCMovingRangePoint) float64 { return pt.CenterLine }))
	if err != nil {
		return nil, fmt.Errorf("failed to create center line: %v", err)
	}
	center.LineStyle = centerLineStyle
	p.Add(center)
	p.Legend.Add("MR-bar", center)

	ucl, err := plotter.NewLine(mrXY(result.MovingRange, func(pt spc.SPCMovingRangePoint) float64 { return pt.UCL }))
	if err != nil {
		return nil, fmt.Errorf("failed to create UCL line: %v", err)
	}
	ucl.LineStyle = limitLineStyle
	p.Add(ucl)
	p.Legend.Add("UCL", ucl)

	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(10)

	return writePNG(p, vg.Points(800), vg.Points(400))
}

func seriesXY(points []spc.SPCPoint, value func(spc.SPCPoint) float64) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: float64(i), Y: value(pt)}
	}
	return xys
}

func mrXY(points []spc.SPCMovingRangePoint, value func(spc.SPCMovingRangePoint) float64) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: float64(i), Y: value(pt)}
	}
	return xys
}

func chartPeriods(points []spc.SPCPoint) []string {
	periods := make([]string, len(points))
	for i, pt := range points {
		periods[i] = pt.Period
	}
	return periods
}

func mrPeriods(points []spc.SPCMovingRangePoint) []string {
	periods := make([]string, len(points))
	for i, pt := range points {
		periods[i] = pt.Period
	}
	return periods
}

// periodTicks labels every n-th period so long series stay readable,
// always keeping the first and last period visible.
func periodTicks(periods []string) []plot.Tick {
	if len(periods) == 0 {
		return nil
	}
	step := len(periods)/12 + 1

	var ticks []plot.Tick
	for i := 0; i < len(periods); i += step {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: periods[i]})
	}
	last := len(periods) - 1
	if ticks[len(ticks)-1].Value != float64(last) {
		ticks = append(ticks, plot.Tick{Value: float64(last), Label: periods[last]})
	}
	return ticks
}

// writePNG renders a finished plot into an in-memory PNG.
func writePNG(p *plot.Plot, width, height vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %v", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %v", err)
	}
	return buf.Bytes(), nil
}
