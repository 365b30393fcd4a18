package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ChartBar is one positioned bar inside a chart row. LeftFraction and
// WidthFraction are fractions of the drawable row width.
type ChartBar struct {
	Label         string
	LeftFraction  float64
	WidthFraction float64
	Priority      int
}

// ChartRow groups the bars of a single resource.
type ChartRow struct {
	ResourceName string
	Bars         []ChartBar
}

// Chart is a printable snapshot of a Gantt window.
type Chart struct {
	Title      string
	WindowNote string
	Rows       []ChartRow
}

// GanttPDFExporter renders chart snapshots into a landscape PDF.
type GanttPDFExporter struct{}

// NewGanttPDFExporter constructs a Gantt PDF exporter.
func NewGanttPDFExporter() *GanttPDFExporter {
	return &GanttPDFExporter{}
}

const (
	ganttLabelWidth = 50.0
	ganttRowHeight  = 10.0
	ganttBarHeight  = 7.0
)

// priorityFill maps a 1-5 priority to the fill colour used on screen,
// 1 being the most urgent.
func priorityFill(priority int) (r, g, b int) {
	switch priority {
	case 1:
		return 214, 69, 65
	case 2:
		return 235, 149, 50
	case 4:
		return 101, 198, 187
	case 5:
		return 149, 165, 166
	default:
		return 68, 108, 179
	}
}

// Render draws each row as a horizontal band with its bars positioned by
// their fractional offsets, matching the on-screen chart layout.
func (e *GanttPDFExporter) Render(chart Chart) ([]byte, error) {
	if len(chart.Rows) == 0 {
		return nil, fmt.Errorf("gantt pdf requires at least one row")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if chart.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, chart.Title, "", 1, "C", false, 0, "")
	}
	if chart.WindowNote != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, chart.WindowNote, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	trackWidth := pageWidth - left - right - ganttLabelWidth

	pdf.SetFont("Arial", "", 9)
	for _, row := range chart.Rows {
		x := left
		y := pdf.GetY()

		pdf.SetDrawColor(200, 200, 200)
		pdf.Rect(x, y, ganttLabelWidth, ganttRowHeight, "D")
		pdf.Rect(x+ganttLabelWidth, y, trackWidth, ganttRowHeight, "D")

		pdf.SetXY(x+1, y+2)
		pdf.CellFormat(ganttLabelWidth-2, 6, row.ResourceName, "", 0, "L", false, 0, "")

		for _, bar := range row.Bars {
			barX := x + ganttLabelWidth + bar.LeftFraction*trackWidth
			barW := bar.WidthFraction * trackWidth
			if barW <= 0 {
				continue
			}
			r, g, b := priorityFill(bar.Priority)
			pdf.SetFillColor(r, g, b)
			pdf.Rect(barX, y+(ganttRowHeight-ganttBarHeight)/2, barW, ganttBarHeight, "F")
			if bar.Label != "" && barW > 18 {
				pdf.SetTextColor(255, 255, 255)
				pdf.SetXY(barX+1, y+2)
				pdf.CellFormat(barW-2, 6, bar.Label, "", 0, "L", false, 0, "")
				pdf.SetTextColor(0, 0, 0)
			}
		}

		pdf.SetY(y + ganttRowHeight)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render gantt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
