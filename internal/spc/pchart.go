package spc

import "math"

// calculatePChart builds a proportion control chart. The center line
// is the subgroup-weighted proportion over the baseline and each
// point's limits come from the binomial standard error at that point's
// own subgroup size. FixedPoints carries the same chart with every
// limit computed at the mean subgroup size instead.
func calculatePChart(data []SPCDataPoint, opts SPCOptions) *SPCResult {
	percentScale := detectPercentScale(data)
	scale := 1.0
	if percentScale {
		scale = 100.0
	}

	center := pBarWeighted(baselineSubset(data, opts), percentScale)
	pFrac := center / scale
	z := float64(opts.SigmaLevel)

	points := make([]SPCPoint, len(data))
	for i, p := range data {
		se := pChartSE(pFrac, effectiveDenominator(p)) * scale
		points[i] = SPCPoint{
			Period:     p.Period,
			Value:      p.Value,
			UCL:        round4(math.Min(center+z*se, scale)),
			LCL:        round4(math.Max(center-z*se, 0)),
			CenterLine: round4(center),
		}
	}

	fixedSE := pChartSE(pFrac, meanOrZero(denominators(data))) * scale
	fixed := make([]SPCPoint, len(data))
	for i, p := range data {
		fixed[i] = SPCPoint{
			Period:     p.Period,
			Value:      p.Value,
			UCL:        round4(math.Min(center+z*fixedSE, scale)),
			LCL:        round4(math.Max(center-z*fixedSE, 0)),
			CenterLine: round4(center),
		}
	}

	return &SPCResult{
		ChartType:              ChartTypePChart,
		CenterLine:             round4(center),
		Points:                 annotateSpecialCauses(points),
		FixedPoints:            annotateSpecialCauses(fixed),
		SupportsVariableLimits: supportsVariableLimits(data),
	}
}

// detectPercentScale reports whether the series is recorded on a 0-100
// percentage scale rather than a 0-1 fraction scale. A single value
// above 1 anywhere in the series switches the whole chart to
// percentage mode. A series whose every value happens to fall in
// [0, 1] is read as fractions even if the caller meant very small
// percentages; callers who need percentage mode in that situation
// should scale their values before handing them over.
func detectPercentScale(data []SPCDataPoint) bool {
	for _, p := range data {
		if p.Value > 1 {
			return true
		}
	}
	return false
}

// pBarWeighted computes the weighted center line over the baseline,
// total numerator over total denominator, expressed on the same scale
// as the input values. A point without an explicit numerator
// contributes value*denominator, de-scaled first in percentage mode.
// When no denominators exist the weighting degenerates to a plain mean
// of the baseline values, and an empty baseline yields 0.
func pBarWeighted(baseline []SPCDataPoint, percentScale bool) float64 {
	var sumNum, sumDen float64
	for _, p := range baseline {
		den := effectiveDenominator(p)
		var num float64
		switch {
		case p.Numerator != nil:
			num = *p.Numerator
		case percentScale:
			num = p.Value / 100 * den
		default:
			num = p.Value * den
		}
		sumNum += num
		sumDen += den
	}
	if sumDen == 0 {
		return meanOrZero(pointValues(baseline))
	}
	if percentScale {
		return sumNum / sumDen * 100
	}
	return sumNum / sumDen
}

// pChartSE is the binomial standard error sqrt(p(1-p)/n) for one
// subgroup, with p as a fraction. Proportions outside [0, 1] would
// make the variance negative, so p is clamped first.
func pChartSE(p, n float64) float64 {
	if n <= 0 {
		return 0
	}
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	return math.Sqrt(p * (1 - p) / n)
}
