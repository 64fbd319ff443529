package parser

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/user/spc_analyzer_go/internal/spc"
)

// Column names recognized in a metric CSV header. Matching is
// case-insensitive and ignores surrounding whitespace.
const (
	colPeriod      = "period"
	colValue       = "value"
	colNumerator   = "numerator"
	colDenominator = "denominator"
)

// ParseMetricCSV reads one metric's observations from a CSV file. The
// first non-empty row must be a header naming at least "period" and
// "value" columns; "numerator" and "denominator" columns are optional
// and may be left blank per row. Rows that cannot be parsed are
// skipped and reported in ParseErrors rather than failing the file.
func ParseMetricCSV(filepath string) (*ParsedMetricData, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Rows may omit trailing optional columns

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}

	headerIdx, columns := findHeader(allRows)
	if columns == nil {
		return nil, fmt.Errorf("no header row with %q and %q columns found", colPeriod, colValue)
	}

	parsed := NewParsedMetricData()

	for rowOffset, row := range allRows[headerIdx+1:] {
		csvRow := headerIdx + rowOffset + 2 // 1-based row number for messages
		if isEmptyRow(row) {
			continue
		}

		period := cellAt(row, columns[colPeriod])
		if period == "" {
			parsed.ParseErrors = append(parsed.ParseErrors, fmt.Sprintf("Warning: row %d has no period label, skipping.", csvRow))
			continue
		}

		valueStr := cellAt(row, columns[colValue])
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			parsed.ParseErrors = append(parsed.ParseErrors, fmt.Sprintf("Warning: row %d (%s) has unparseable value %q, skipping.", csvRow, period, valueStr))
			continue
		}

		point := spc.SPCDataPoint{Period: period, Value: value}
		point.Numerator = parsed.optionalFloat(row, columns, colNumerator, csvRow, period)
		point.Denominator = parsed.optionalFloat(row, columns, colDenominator, csvRow, period)
		parsed.Points = append(parsed.Points, point)
	}

	if len(parsed.Points) == 0 {
		parsed.ParseErrors = append(parsed.ParseErrors, "Warning: no data rows parsed.")
	}

	return parsed, nil
}

// findHeader locates the header in the first non-empty row and maps
// lowercased column names to their positions. A nil map means the file
// has no usable header.
func findHeader(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		columns := make(map[string]int)
		for j, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name == "" {
				continue
			}
			if _, seen := columns[name]; !seen {
				columns[name] = j
			}
		}
		if _, ok := columns[colPeriod]; !ok {
			return -1, nil
		}
		if _, ok := columns[colValue]; !ok {
			return -1, nil
		}
		return i, columns
	}
	return -1, nil
}

// optionalFloat reads an optional numeric cell, recording a warning
// and returning nil when the cell is present but not a number.
func (p *ParsedMetricData) optionalFloat(row []string, columns map[string]int, col string, csvRow int, period string) *float64 {
	idx, ok := columns[col]
	if !ok {
		return nil
	}
	raw := cellAt(row, idx)
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.ParseErrors = append(p.ParseErrors, fmt.Sprintf("Warning: row %d (%s) has unparseable %s %q, ignoring it.", csvRow, period, col, raw))
		return nil
	}
	return &val
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
