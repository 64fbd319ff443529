package spc

import "math"

// Control-chart constants for a moving range spanning exactly two
// consecutive observations. They are not valid for any other span.
const (
	// d2 converts the mean moving range into a process sigma
	// estimate: sigma = MRbar / d2.
	d2 = 1.128
	// d4 places the upper limit of the moving-range chart:
	// UCL = d4 * MRbar.
	d4 = 3.267
)

// calculateIMR builds an individuals chart with its moving-range
// companion. The sigma estimate comes from the mean two-point moving
// range of the baseline divided by d2, giving one fixed pair of limits
// for the whole series. Continuous data may legitimately run negative,
// so the individuals limits are not clamped.
func calculateIMR(data []SPCDataPoint, opts SPCOptions) *SPCResult {
	baselineValues := pointValues(baselineSubset(data, opts))
	center := meanOrZero(baselineValues)
	mrBar := meanOrZero(movingRanges(baselineValues))
	sigmaEst := mrBar / d2

	z := float64(opts.SigmaLevel)
	ucl := round4(center + z*sigmaEst)
	lcl := round4(center - z*sigmaEst)

	points := make([]SPCPoint, len(data))
	for i, p := range data {
		points[i] = SPCPoint{
			Period:     p.Period,
			Value:      p.Value,
			UCL:        ucl,
			LCL:        lcl,
			CenterLine: round4(center),
		}
	}

	// The moving-range chart covers the full series; only its center
	// line and upper limit come from the baseline MRbar. Each range is
	// attributed to the later period of its pair, so the chart starts
	// at the second period.
	var movingRange []SPCMovingRangePoint
	if len(data) > 1 {
		mrCenter := round4(mrBar)
		mrUCL := round4(d4 * mrBar)
		movingRange = make([]SPCMovingRangePoint, 0, len(data)-1)
		for i := 1; i < len(data); i++ {
			movingRange = append(movingRange, SPCMovingRangePoint{
				Period:     data[i].Period,
				Value:      round4(math.Abs(data[i].Value - data[i-1].Value)),
				UCL:        mrUCL,
				LCL:        0,
				CenterLine: mrCenter,
			})
		}
	}

	return &SPCResult{
		ChartType:   ChartTypeIMR,
		CenterLine:  round4(center),
		Points:      annotateSpecialCauses(points),
		MovingRange: movingRange,
	}
}

// movingRanges returns the absolute differences between consecutive
// values. Fewer than two values produce no ranges.
func movingRanges(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	mrs := make([]float64, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		mrs = append(mrs, math.Abs(xs[i]-xs[i-1]))
	}
	return mrs
}
