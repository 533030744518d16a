// Package report renders downloadable PDF summaries of task progress.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskcompass/internal/model"
	"taskcompass/internal/tasks"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// ProgressReport renders the per-day completion series and the current
// overdue list for one user.
func (g *Generator) ProgressReport(displayName string, stats []tasks.DayStat, overdue []model.Task, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task Compass - Progress Review", true)
	pdf.SetAuthor("Task Compass", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Progress Review", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s - generated %s", displayName, now.Format("Jan 2, 2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Daily completion", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(40, 7, "Date", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Completed", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Rate", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, s := range stats {
		pdf.CellFormat(40, 7, s.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", s.Completed), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", s.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.0f%%", s.Rate), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Overdue tasks (%d)", len(overdue)), "", 1, "L", false, 0, "")
	if len(overdue) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 7, "Nothing overdue.", "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont("Helvetica", "", 9)
		for _, t := range overdue {
			line := fmt.Sprintf("- %s (%s priority, due %s)", t.Title, t.Priority, t.DueDate.Format("Jan 2, 2006"))
			pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render progress report: %w", err)
	}
	return buf.Bytes(), nil
}
