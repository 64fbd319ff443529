// Package spc computes statistical process control charts for quality
// improvement metrics: p-charts for proportions, u-charts for rates
// and individuals/moving-range charts for continuous measurements.
// Calculations are deterministic and never modify their input.
package spc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ChartTypeForDataType maps a metric's data type onto the control
// chart used for it. The mapping is fixed: proportion data goes on a
// p-chart, rate data on a u-chart and continuous data on an
// individuals/moving-range chart.
func ChartTypeForDataType(dataType DataType) (ChartType, error) {
	switch dataType {
	case DataTypeProportion:
		return ChartTypePChart, nil
	case DataTypeRate:
		return ChartTypeUChart, nil
	case DataTypeContinuous:
		return ChartTypeIMR, nil
	default:
		return "", fmt.Errorf("unknown data type %q", dataType)
	}
}

// CalculateSPC computes control limits and special-cause annotations
// for an ordered series of observations. The caller supplies points in
// chronological order; the engine does not sort. An error is returned
// only for an unknown data type or an unsupported sigma level, never
// for awkward data shapes.
func CalculateSPC(dataType DataType, data []SPCDataPoint, opts SPCOptions) (*SPCResult, error) {
	chartType, err := ChartTypeForDataType(dataType)
	if err != nil {
		return nil, err
	}
	opts, err = opts.normalized()
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return &SPCResult{ChartType: chartType, Points: []SPCPoint{}}, nil
	}

	switch chartType {
	case ChartTypePChart:
		return calculatePChart(data, opts), nil
	case ChartTypeUChart:
		return calculateUChart(data, opts), nil
	default:
		return calculateIMR(data, opts), nil
	}
}

// normalized fills in defaults and rejects unsupported sigma levels.
// A zero SigmaLevel means the caller did not choose one and gets the
// conventional 3-sigma limits.
func (o SPCOptions) normalized() (SPCOptions, error) {
	switch o.SigmaLevel {
	case 0:
		o.SigmaLevel = Sigma3
	case Sigma1, Sigma2, Sigma3:
	default:
		return o, fmt.Errorf("sigma level must be 1, 2 or 3, got %d", o.SigmaLevel)
	}
	return o, nil
}

// baselineSubset returns the points whose period label falls inside
// the configured baseline window. Bounds are inclusive and compared
// lexically, so period labels must sort chronologically (ISO dates,
// YYYY-MM and similar). An unset bound leaves that side open; with
// neither bound set the whole series is the baseline.
func baselineSubset(data []SPCDataPoint, opts SPCOptions) []SPCDataPoint {
	if opts.BaselineStart == "" && opts.BaselineEnd == "" {
		return data
	}
	subset := make([]SPCDataPoint, 0, len(data))
	for _, p := range data {
		if opts.BaselineStart != "" && p.Period < opts.BaselineStart {
			continue
		}
		if opts.BaselineEnd != "" && p.Period > opts.BaselineEnd {
			continue
		}
		subset = append(subset, p)
	}
	return subset
}

// effectiveDenominator returns the subgroup size for a point. A point
// without a positive denominator counts as a single observation.
func effectiveDenominator(p SPCDataPoint) float64 {
	if p.Denominator == nil || *p.Denominator <= 0 {
		return 1
	}
	return *p.Denominator
}

func denominators(data []SPCDataPoint) []float64 {
	ns := make([]float64, len(data))
	for i, p := range data {
		ns[i] = effectiveDenominator(p)
	}
	return ns
}

func pointValues(data []SPCDataPoint) []float64 {
	vs := make([]float64, len(data))
	for i, p := range data {
		vs[i] = p.Value
	}
	return vs
}

// meanOrZero is stat.Mean with an empty-slice guard, since an empty
// baseline must yield a center line of 0 rather than NaN.
func meanOrZero(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// supportsVariableLimits reports whether subgroup sizes vary enough
// that per-point limits are worth plotting over fixed average-size
// limits: any denominator more than 25% away from the mean denominator
// of the full series.
func supportsVariableLimits(data []SPCDataPoint) bool {
	ns := denominators(data)
	if len(ns) == 0 {
		return false
	}
	mean := stat.Mean(ns, nil)
	if mean == 0 {
		return false
	}
	for _, n := range ns {
		if math.Abs(n-mean) > 0.25*mean {
			return true
		}
	}
	return false
}

// round4 rounds to 4 decimal places, the precision all computed chart
// statistics are reported at.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
