package np

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var durationPattern = regexp.MustCompile(`^([0-9]+)([ywdm])$`)

// parseDate accepts YYYY-MM-DD, YYYY-MM or YYYY. A month or year resolves to
// its last day.
func parseDate(dateStr string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01", dateStr); err == nil {
		return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()), nil
	}
	if t, err := time.Parse("2006", dateStr); err == nil {
		return time.Date(t.Year(), 12, 31, 0, 0, 0, 0, t.Location()), nil
	}
	return time.Time{}, fmt.Errorf("invalid date format. Use YYYY-MM-DD, YYYY-MM, or YYYY")
}

// nextMonday returns t itself when it is a Monday, otherwise the following Monday, at midnight
func nextMonday(t time.Time) time.Time {
	days := (8 - int(t.Weekday())) % 7
	m := t.AddDate(0, 0, days)
	return time.Date(m.Year(), m.Month(), m.Day(), 0, 0, 0, 0, m.Location())
}

// parseDuration parses 30d, 2w, 6m or 1y. Months are 30 days, years 365.
func parseDuration(durationStr string) (time.Duration, error) {
	matches := durationPattern.FindStringSubmatch(durationStr)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid duration format. Use format like '30d', '2w', '1y', or '6m' (no combinations allowed)")
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", matches[1])
	}

	day := 24 * time.Hour
	switch matches[2] {
	case "y":
		return time.Duration(value) * 365 * day, nil
	case "w":
		return time.Duration(value) * 7 * day, nil
	case "d":
		return time.Duration(value) * day, nil
	default:
		return time.Duration(value) * 30 * day, nil
	}
}

// parseSince accepts a date or a duration relative to until
func parseSince(sinceStr string, until time.Time) (time.Time, error) {
	if d, err := parseDuration(sinceStr); err == nil {
		return until.Add(-d), nil
	}
	t, err := parseDate(sinceStr)
	if err != nil {
		return time.Time{}, err
	}
	return nextMonday(t), nil
}

// ValidateAndParseDates turns --until and --since into a date range. until is
// moved to the next Monday so whole weeks are covered; since defaults to four
// weeks before until.
func ValidateAndParseDates(untilStr, sinceStr string) (since, until time.Time, err error) {
	return validateAndParseDates(untilStr, sinceStr, time.Now())
}

func validateAndParseDates(untilStr, sinceStr string, now time.Time) (since, until time.Time, err error) {
	if untilStr != "" {
		t, err := parseDate(untilStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse until date: %w", err)
		}
		until = nextMonday(t)
	} else {
		until = nextMonday(now)
	}

	if sinceStr != "" {
		since, err = parseSince(sinceStr, until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse since date: %w", err)
		}
	} else {
		since = until.AddDate(0, 0, -28)
	}

	if !since.Before(until) {
		return time.Time{}, time.Time{}, fmt.Errorf("--since date (%s) must be before --until date (%s)", since.Format("2006-01-02"), until.Format("2006-01-02"))
	}
	return since, until, nil
}
