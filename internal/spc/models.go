package spc

// DataType identifies how a metric's observations are measured and
// therefore which control chart applies to them.
type DataType string

const (
	// DataTypeProportion is pass/fail style data: a share of a subgroup
	// meeting a criterion, on either a 0-1 or a 0-100 scale.
	DataTypeProportion DataType = "proportion"
	// DataTypeRate is count-per-exposure data, such as falls per 1000
	// occupied bed days. It has no natural upper bound.
	DataTypeRate DataType = "rate"
	// DataTypeContinuous is individual measurements with no subgroup
	// structure, such as average wait times.
	DataTypeContinuous DataType = "continuous"
)

// ChartType names the control chart produced for a metric.
type ChartType string

const (
	ChartTypePChart ChartType = "p-chart"
	ChartTypeUChart ChartType = "u-chart"
	ChartTypeIMR    ChartType = "i-mr"
)

// SigmaLevel is the multiplier applied to the standard error when
// placing control limits. Only 1, 2 and 3 are accepted.
type SigmaLevel int

const (
	Sigma1 SigmaLevel = 1
	Sigma2 SigmaLevel = 2
	Sigma3 SigmaLevel = 3
)

// SPCDataPoint is a single reporting period's observation as supplied
// by the caller. Numerator and Denominator are optional; a nil
// Denominator (or one that is zero or negative) is treated as a
// subgroup of size 1.
type SPCDataPoint struct {
	Period      string   `json:"period"`
	Value       float64  `json:"value"`
	Numerator   *float64 `json:"numerator,omitempty"`
	Denominator *float64 `json:"denominator,omitempty"`
}

// SPCOptions tunes a calculation. The zero value is valid and means
// 3-sigma limits with the full series as baseline.
type SPCOptions struct {
	SigmaLevel    SigmaLevel `json:"sigmaLevel,omitempty"`
	BaselineStart string     `json:"baselineStart,omitempty"`
	BaselineEnd   string     `json:"baselineEnd,omitempty"`
}

// SPCPoint is one plotted point of a control chart: the original
// observation plus its limits and any special-cause annotations.
// UCL, LCL and CenterLine are rounded to 4 decimal places; Value is
// echoed exactly as supplied.
type SPCPoint struct {
	Period            string   `json:"period"`
	Value             float64  `json:"value"`
	UCL               float64  `json:"ucl"`
	LCL               float64  `json:"lcl"`
	CenterLine        float64  `json:"centerLine"`
	SpecialCause      bool     `json:"specialCause"`
	SpecialCauseRules []string `json:"specialCauseRules,omitempty"`
}

// SPCMovingRangePoint is one point of the moving-range companion chart
// of an individuals chart. Its Period is the later period of the pair
// that produced the range.
type SPCMovingRangePoint struct {
	Period     string  `json:"period"`
	Value      float64 `json:"value"`
	UCL        float64 `json:"ucl"`
	LCL        float64 `json:"lcl"`
	CenterLine float64 `json:"centerLine"`
}

// SPCResult is the full outcome of a calculation. Points always has
// one entry per input point in input order. MovingRange is populated
// only for i-mr charts, FixedPoints only for p- and u-charts.
type SPCResult struct {
	ChartType              ChartType             `json:"chartType"`
	CenterLine             float64               `json:"centerLine"`
	Points                 []SPCPoint            `json:"points"`
	MovingRange            []SPCMovingRangePoint `json:"movingRange,omitempty"`
	FixedPoints            []SPCPoint            `json:"fixedPoints,omitempty"`
	SupportsVariableLimits bool                  `json:"supportsVariableLimits"`
}

// SignalCount returns how many points carry at least one special-cause
// annotation.
func (r *SPCResult) SignalCount() int {
	count := 0
	for _, p := range r.Points {
		if p.SpecialCause {
			count++
		}
	}
	return count
}

// SignalPoints returns the points that carry at least one special-cause
// annotation, in series order.
func (r *SPCResult) SignalPoints() []SPCPoint {
	var signals []SPCPoint
	for _, p := range r.Points {
		if p.SpecialCause {
			signals = append(signals, p)
		}
	}
	return signals
}
