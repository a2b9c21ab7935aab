package np

import (
	"fmt"
	"time"

	"github.com/roessland/nikeplus/pkg/output"
)

// PresentationService handles all presentation logic
type PresentationService struct {
	ol *output.OutputLogger
}

// NewPresentationService creates a new presentation service
func NewPresentationService(ol *output.OutputLogger) *PresentationService {
	return &PresentationService{ol: ol}
}

func (ps *PresentationService) ShowProgress(msg string, args ...any) {
	ps.ol.Progress(msg, args...)
}

func (ps *PresentationService) ShowStatus(msg string, args ...any) {
	ps.ol.Status(msg, args...)
}

func (ps *PresentationService) ShowError(err error, msg string, args ...any) {
	ps.ol.LogAndShowError(err, msg, args...)
}

func (ps *PresentationService) ShowLoginRequired(url string) {
	ps.ol.LoginPrompt(url)
}

func (ps *PresentationService) ShowWeekHeader(weekStart, weekEnd time.Time) {
	ps.ol.WeekHeader(weekStart, weekEnd)
}

// ShowActivities renders a table of activities
func (ps *PresentationService) ShowActivities(activities []ActivityInfo) error {
	rows := [][]string{{"", "ID", "Type", "Date", "Distance", "Duration", "Calories"}}
	for _, a := range activities {
		rows = append(rows, []string{
			a.TypeEmoji,
			a.ID,
			a.Type,
			a.Date,
			fmt.Sprintf("%.2f km", a.DistanceKm),
			a.Duration.Round(time.Second).String(),
			fmt.Sprintf("%d", a.Calories),
		})
	}
	return ps.ol.ActivityTable(rows)
}

// ShowDocument prints a raw API document
func (ps *PresentationService) ShowDocument(value any) error {
	return ps.ol.PrettyJSON(value)
}

// ShowActivityResult displays the result of exporting an activity
func (ps *PresentationService) ShowActivityResult(activity ActivityInfo, result ExportResult) {
	detail := output.FileInfo{Type: "JSON", State: output.StateExported}
	switch {
	case result.DetailExisted:
		detail.State = output.StateExists
	case !result.Success:
		detail.State = output.StateError
	}

	if !result.Success {
		ps.ol.ActivityLine(activity.TypeEmoji, activity.ID, detail)
		return
	}

	gps := output.FileInfo{Type: "GPS", State: output.StateExported}
	switch {
	case result.GPSExisted:
		gps.State = output.StateExists
	case !result.GPSAvailable:
		gps.State = output.StateNotAvailable
	}
	ps.ol.ActivityLine(activity.TypeEmoji, activity.ID, detail, gps)
}

// ShowFinalResults displays the final export summary
func (ps *PresentationService) ShowFinalResults(summary *ExportSummary) {
	ps.ol.Result("Export complete: %d processed, %d errors", summary.Processed, summary.Errors)
}

// ShowJSONResults outputs structured JSON results
func (ps *PresentationService) ShowJSONResults(summary *ExportSummary) {
	_ = ps.ol.JSON(map[string]any{
		"summary": map[string]int{
			"processed": summary.Processed,
			"errors":    summary.Errors,
		},
		"date_range": map[string]string{
			"since": summary.Since.Format("2006-01-02"),
			"until": summary.Until.Format("2006-01-02"),
		},
	})
}
