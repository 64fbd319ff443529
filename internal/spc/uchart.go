package spc

import "math"

// calculateUChart builds a rate control chart for event counts per
// unit of exposure. The center line is total events over total
// exposure across the baseline and limits use the Poisson standard
// error sqrt(ubar/n). Rates have no natural upper bound, so only the
// lower limit is clamped, at zero.
func calculateUChart(data []SPCDataPoint, opts SPCOptions) *SPCResult {
	center := uBarWeighted(baselineSubset(data, opts))
	z := float64(opts.SigmaLevel)

	points := make([]SPCPoint, len(data))
	for i, p := range data {
		se := uChartSE(center, effectiveDenominator(p))
		points[i] = SPCPoint{
			Period:     p.Period,
			Value:      p.Value,
			UCL:        round4(center + z*se),
			LCL:        round4(math.Max(center-z*se, 0)),
			CenterLine: round4(center),
		}
	}

	fixedSE := uChartSE(center, meanOrZero(denominators(data)))
	fixed := make([]SPCPoint, len(data))
	for i, p := range data {
		fixed[i] = SPCPoint{
			Period:     p.Period,
			Value:      p.Value,
			UCL:        round4(center + z*fixedSE),
			LCL:        round4(math.Max(center-z*fixedSE, 0)),
			CenterLine: round4(center),
		}
	}

	return &SPCResult{
		ChartType:              ChartTypeUChart,
		CenterLine:             round4(center),
		Points:                 annotateSpecialCauses(points),
		FixedPoints:            annotateSpecialCauses(fixed),
		SupportsVariableLimits: supportsVariableLimits(data),
	}
}

// uBarWeighted computes the baseline rate: total event count over
// total exposure. A point without an explicit numerator contributes
// its value as the event count. With no exposure at all the weighting
// degenerates to a plain mean of the baseline values, and an empty
// baseline yields 0.
func uBarWeighted(baseline []SPCDataPoint) float64 {
	var sumNum, sumDen float64
	for _, p := range baseline {
		num := p.Value
		if p.Numerator != nil {
			num = *p.Numerator
		}
		sumNum += num
		sumDen += effectiveDenominator(p)
	}
	if sumDen == 0 {
		return meanOrZero(pointValues(baseline))
	}
	return sumNum / sumDen
}

// uChartSE is the Poisson standard error sqrt(ubar/n) for one
// subgroup. A negative center rate has no valid standard error and
// yields 0.
func uChartSE(uBar, n float64) float64 {
	if n <= 0 || uBar < 0 {
		return 0
	}
	return math.Sqrt(uBar / n)
}
