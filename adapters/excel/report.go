package excel

import (
	"fmt"
	"io"
	"time"

	"focustrack/app"
	"focustrack/internal/errors"
	"focustrack/models"

	"github.com/xuri/excelize/v2"
)

const (
	activitySheet = "Activities"
	summarySheet  = "Summary"
)

// WriteReport renders a date-range activity report as an xlsx workbook:
// one sheet with raw activities, one with the per-project summary.
func WriteReport(w io.Writer, activities []models.Activity, summary *app.Summary, projectNames map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", activitySheet)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return errors.Wrap(err, "failed to create summary sheet")
	}

	headers := []string{"Started", "Duration (s)", "Application", "Window Title", "URL", "Project", "Manual", "Confidence", "Note"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(activitySheet, cell, header)
	}

	for row, a := range activities {
		project := ""
		if a.ProjectID != nil {
			project = projectNames[*a.ProjectID]
			if project == "" {
				project = *a.ProjectID
			}
		}
		note := ""
		if a.Note != nil {
			note = *a.Note
		}
		confidence := ""
		if a.Confidence != nil {
			confidence = fmt.Sprintf("%.2f", *a.Confidence)
		}

		values := []interface{}{
			a.StartedAt.Format(time.RFC3339),
			a.DurationSeconds,
			a.AppName,
			a.WindowTitle,
			a.URL,
			project,
			a.IsManual,
			confidence,
			note,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(activitySheet, cell, value)
		}
	}

	summaryHeaders := []string{"Project", "Total (s)", "Activities", "Mean (s)", "Median (s)"}
	for col, header := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(summarySheet, cell, header)
	}
	for row, p := range summary.Projects {
		values := []interface{}{p.Name, p.TotalSeconds, p.ActivityCount, p.MeanSeconds, p.MedianSeconds}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(summarySheet, cell, value)
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}
