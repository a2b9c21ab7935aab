package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewActivity(t *testing.T) {
	now := time.Date(2024, 3, 5, 7, 0, 0, 0, time.UTC)

	activity, err := newActivity("RUN", "WATCH", "", "", "", "", now)
	if err != nil {
		t.Fatalf("newActivity() error = %v", err)
	}
	if activity.StartTime != now.UnixMilli() {
		t.Errorf("StartTime = %d, want %d", activity.StartTime, now.UnixMilli())
	}
	if activity.TimeZoneName != "UTC" {
		t.Errorf("TimeZoneName = %q, want UTC", activity.TimeZoneName)
	}
	if metrics, ok := activity.Metrics.([]any); !ok || len(metrics) != 0 {
		t.Errorf("Metrics = %#v, want empty list", activity.Metrics)
	}
}

func TestNewActivity_StartAndMetrics(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "metrics.json")
	if err := os.WriteFile(metricsPath, []byte(`[{"metricType":"DISTANCE","values":[0.1,0.2]}]`), 0644); err != nil {
		t.Fatalf("Failed to write metrics: %v", err)
	}

	activity, err := newActivity("CYCLE", "IPHONE", "My phone", "2024-03-05T18:30:00+01:00", "Europe/Oslo", metricsPath, time.Now())
	if err != nil {
		t.Fatalf("newActivity() error = %v", err)
	}

	want := time.Date(2024, 3, 5, 17, 30, 0, 0, time.UTC).UnixMilli()
	if activity.StartTime != want {
		t.Errorf("StartTime = %d, want %d", activity.StartTime, want)
	}
	if activity.TimeZoneName != "Europe/Oslo" || activity.DeviceName != "My phone" {
		t.Errorf("Unexpected activity: %+v", activity)
	}
	metrics, ok := activity.Metrics.([]any)
	if !ok || len(metrics) != 1 {
		t.Errorf("Metrics = %#v, want one metric", activity.Metrics)
	}
}

func TestNewActivity_Errors(t *testing.T) {
	badJSON := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(badJSON, []byte("not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tests := []struct {
		name         string
		activityType string
		start        string
		metricsFile  string
	}{
		{name: "missing type"},
		{name: "bad start", activityType: "RUN", start: "yesterday"},
		{name: "missing metrics file", activityType: "RUN", metricsFile: filepath.Join(t.TempDir(), "nope.json")},
		{name: "metrics not JSON", activityType: "RUN", metricsFile: badJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newActivity(tt.activityType, "WATCH", "", tt.start, "", tt.metricsFile, time.Now()); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestOptionalDate(t *testing.T) {
	if d, err := optionalDate(""); err != nil || !d.IsZero() {
		t.Errorf("optionalDate(\"\") = %v, %v", d, err)
	}
	if d, err := optionalDate("2024-03-04"); err != nil || d.Format("2006-01-02") != "2024-03-04" {
		t.Errorf("optionalDate(2024-03-04) = %v, %v", d, err)
	}
	if _, err := optionalDate("04.03.2024"); err == nil {
		t.Error("Expected an error")
	}
}
