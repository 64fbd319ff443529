package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/spc_analyzer_go/internal/spc"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func() // map of style name to function that sets font, color etc.
	lineHeight  float64
	currentY    float64 // To manually track Y position for flowing content
	pageHeight  float64
	contentTopY float64 // Top Y after margin
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6,                                        // mm
		pageHeight:  pdfPageHeightLandscape - (2 * pdfMargin), // Usable height
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200) // Light grey
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellRed"] = func() { // For special-cause findings
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetTextColor(200, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]() // Default
	}
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.pdf.AddPage()
		s.currentY = s.contentTopY
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	estimatedLines := float64(len(text)/110 + 1)
	s.checkAddPage(estimatedLines * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1 // Small gap after paragraph
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64, caption string) {
	// Gofpdf refers to the registered reader by name when placing the image.
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))

	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}

	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	s.pdf.Image(imageName, pdfMargin, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// drawTable writes a bordered table with a shaded header row. Cells in
// redColumn use the warning style; pass -1 to disable.
func (s *pdfStyler) drawTable(headers []string, relWidths []float64, rows [][]string, redColumn int) {
	widths := make([]float64, len(relWidths))
	for i, rel := range relWidths {
		widths[i] = rel * pdfContentWidth
	}

	s.checkAddPage(s.lineHeight * float64(len(rows)+1))

	x := pdfMargin
	s.applyStyle("tableHeader")
	for i, header := range headers {
		s.pdf.SetXY(x, s.currentY)
		s.pdf.CellFormat(widths[i], s.lineHeight, header, "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	s.currentY += s.lineHeight

	for _, row := range rows {
		s.checkAddPage(s.lineHeight)
		x = pdfMargin
		for i, cell := range row {
			if i == redColumn {
				s.applyStyle("tableCellRed")
			} else {
				s.applyStyle("tableCell")
			}
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, cell, "1", 0, "C", false, 0, "")
			x += widths[i]
		}
		s.currentY += s.lineHeight
	}
}

// BuildPDFReport creates the PDF report: a batch summary page with the
// signal overview heatmap, then one page per metric with its control
// chart, special-cause findings and any data warnings. plotImages is
// keyed by ControlChartKey, MovingRangeChartKey and
// PlotKeySignalHeatmap.
func BuildPDFReport(filepath string, analyses []MetricAnalysis, plotImages map[string][]byte) error {
	pdf := gofpdf.New("L", "mm", "Letter", "") // Landscape, mm, Letter size
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph(fmt.Sprintf("Statistical Process Control Report (%d Metrics)", len(analyses)), "h1", "C")
	styler.addSpacer(5)

	if len(analyses) == 0 {
		styler.writeParagraph("No analysis results to display.", "normal", "L")
		return pdf.OutputFileAndClose(filepath)
	}

	summaryHeaders := []string{"Metric", "Data Type", "Chart", "Periods", "Center Line", "Sigma", "Signals", "Limits"}
	summaryWidths := []float64{0.25, 0.11, 0.09, 0.09, 0.13, 0.08, 0.09, 0.16}
	summaryRows := make([][]string, 0, len(analyses))
	for _, a := range analyses {
		summaryRows = append(summaryRows, summaryRow(a))
	}
	styler.drawTable(summaryHeaders, summaryWidths, summaryRows, -1)
	styler.addSpacer(5)

	if imgBytes, ok := plotImages[PlotKeySignalHeatmap]; ok && len(imgBytes) > 0 {
		imgWidth := pdfContentWidth * 0.85
		styler.addImage(imgBytes, PlotKeySignalHeatmap, imgWidth, imgWidth*(4.0/8.0),
			"Distance from center line relative to the control-limit band; saturated cells touch or cross a limit.")
	}

	for _, a := range analyses {
		styler.newPage()
		writeMetricSection(styler, a, plotImages)
	}

	return pdf.OutputFileAndClose(filepath)
}

// summaryRow flattens one metric's analysis into a batch summary table
// row: name, configured data type, chart type, period count, center
// line, sigma level, signal count and the recommended limit mode.
func summaryRow(a MetricAnalysis) []string {
	limits := "fixed"
	if a.Result.SupportsVariableLimits {
		limits = "variable"
	}
	return []string{
		a.Name,
		string(a.DataType),
		string(a.Result.ChartType),
		strconv.Itoa(len(a.Result.Points)),
		formatValue(a.Result.CenterLine),
		strconv.Itoa(int(a.SigmaLevel)),
		strconv.Itoa(a.Result.SignalCount()),
		limits,
	}
}

func writeMetricSection(styler *pdfStyler, a MetricAnalysis, plotImages map[string][]byte) {
	styler.writeParagraph(a.Name, "h2", "L")
	styler.writeParagraph(metricSummaryText(a), "normal", "L")
	styler.addSpacer(2)

	imgWidth := pdfContentWidth * 0.8
	imgHeight := imgWidth * (4.0 / 8.0)

	if imgBytes, ok := plotImages[ControlChartKey(a.Name)]; ok && len(imgBytes) > 0 {
		styler.addImage(imgBytes, ControlChartKey(a.Name), imgWidth, imgHeight, "")
	} else {
		styler.writeParagraph("Control chart not available.", "normal", "L")
	}

	if a.Result.ChartType == spc.ChartTypeIMR {
		if imgBytes, ok := plotImages[MovingRangeChartKey(a.Name)]; ok && len(imgBytes) > 0 {
			styler.addImage(imgBytes, MovingRangeChartKey(a.Name), imgWidth, imgHeight, "")
		}
	}

	signals := a.Result.SignalPoints()
	if len(signals) > 0 {
		styler.writeParagraph("Special-Cause Findings", "h2", "L")
		rows := make([][]string, 0, len(signals))
		for _, p := range signals {
			rows = append(rows, []string{
				p.Period,
				formatValue(p.Value),
				strings.Join(p.SpecialCauseRules, "; "),
			})
		}
		styler.drawTable([]string{"Period", "Value", "Rules"}, []float64{0.2, 0.2, 0.6}, rows, 2)
	} else {
		styler.writeParagraph("No special-cause variation detected.", "normal", "L")
	}
	styler.addSpacer(3)

	if len(a.Warnings) > 0 {
		styler.writeParagraph(fmt.Sprintf("Data warnings: %s", strings.Join(a.Warnings, " ")), "tableCell", "L")
	}
}

func metricSummaryText(a MetricAnalysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s over %d periods with %d-sigma limits. Center line %s.",
		chartTypeLabel(a.Result.ChartType), len(a.Result.Points), a.SigmaLevel, formatValue(a.Result.CenterLine))
	switch a.Result.ChartType {
	case spc.ChartTypePChart, spc.ChartTypeUChart:
		if a.Result.SupportsVariableLimits {
			sb.WriteString(" Subgroup sizes vary by more than 25% of their mean, so the chart uses per-point limits.")
		} else {
			sb.WriteString(" Subgroup sizes are steady, so the chart uses fixed limits at the mean subgroup size.")
		}
	}
	return sb.String()
}

func chartTypeLabel(chartType spc.ChartType) string {
	switch chartType {
	case spc.ChartTypePChart:
		return "Proportion control chart (p-chart)"
	case spc.ChartTypeUChart:
		return "Rate control chart (u-chart)"
	default:
		return "Individuals and moving-range chart (I-MR)"
	}
}

// formatValue prints a chart statistic without trailing zeros, so 75
// stays "75" and 87.9904 stays "87.9904".
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
