package np

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ActivityInfo represents information about an activity
type ActivityInfo struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	TypeEmoji  string        `json:"type_emoji"`
	Date       string        `json:"date"` // YYYY-MM-DD
	StartTime  time.Time     `json:"start_time"`
	DistanceKm float64       `json:"distance_km"`
	Duration   time.Duration `json:"duration"`
	Calories   int           `json:"calories"`
	DeviceType string        `json:"device_type,omitempty"`
	WeekStart  time.Time     `json:"week_start"`
	WeekEnd    time.Time     `json:"week_end"`
}

// ParseActivities extracts activities from a decoded me/sport/activities
// document of the form {"data": [...]}. Entries without an id are skipped.
func ParseActivities(value any, weekStart time.Time) ([]ActivityInfo, error) {
	doc, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected activities document of type %T", value)
	}

	rawData, ok := doc["data"]
	if !ok || rawData == nil {
		return nil, nil
	}
	data, ok := rawData.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected data field of type %T", rawData)
	}

	detector := NewActivityTypeDetector()
	weekEnd := weekStart.AddDate(0, 0, 6)

	activities := make([]ActivityInfo, 0, len(data))
	for _, item := range data {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}

		id := stringField(entry, "activityId")
		if id == "" {
			continue
		}

		activity := ActivityInfo{
			ID:         id,
			Type:       stringField(entry, "activityType"),
			DeviceType: stringField(entry, "deviceType"),
			WeekStart:  weekStart,
			WeekEnd:    weekEnd,
		}
		activity.TypeEmoji = detector.DetectActivityType(activity.Type, tagText(entry))

		if start, err := time.Parse(time.RFC3339, stringField(entry, "startTime")); err == nil {
			activity.StartTime = start.UTC()
			activity.Date = activity.StartTime.Format("2006-01-02")
		}

		if summary, ok := entry["metricSummary"].(map[string]any); ok {
			if distance, ok := toFloat(summary["distance"]); ok {
				activity.DistanceKm = distance
			}
			if calories, ok := toFloat(summary["calories"]); ok {
				activity.Calories = int(calories)
			}
			activity.Duration = parseActivityDuration(summary["duration"])
		}

		activities = append(activities, activity)
	}
	return activities, nil
}

// parseActivityDuration reads "H:MM:SS.mmm" strings or plain milliseconds
func parseActivityDuration(v any) time.Duration {
	if s, ok := v.(string); ok && strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return 0
		}
		hours, err1 := strconv.Atoi(parts[0])
		minutes, err2 := strconv.Atoi(parts[1])
		seconds, err3 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return 0
		}
		return time.Duration(hours)*time.Hour +
			time.Duration(minutes)*time.Minute +
			time.Duration(seconds*float64(time.Second))
	}
	if ms, ok := toFloat(v); ok {
		return time.Duration(ms) * time.Millisecond
	}
	return 0
}

func stringField(entry map[string]any, key string) string {
	switch v := entry[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// tagText joins the tag values of an activity, e.g. notes and names
func tagText(entry map[string]any) string {
	tags, ok := entry["tags"].([]any)
	if !ok {
		return ""
	}
	var values []string
	for _, tag := range tags {
		if m, ok := tag.(map[string]any); ok {
			if v, ok := m["tagValue"].(string); ok {
				values = append(values, v)
			}
		}
	}
	return strings.Join(values, " ")
}
