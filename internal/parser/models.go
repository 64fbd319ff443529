package parser

import "github.com/user/spc_analyzer_go/internal/spc"

// ParsedMetricData holds one metric's observations as read from file,
// in file order, plus any non-fatal problems hit along the way.
type ParsedMetricData struct {
	Points      []spc.SPCDataPoint
	ParseErrors []string // To collect any non-fatal errors during parsing
}

// Helper to initialize ParsedMetricData
func NewParsedMetricData() *ParsedMetricData {
	return &ParsedMetricData{
		Points:      make([]spc.SPCDataPoint, 0),
		ParseErrors: make([]string, 0),
	}
}
