package np

import (
	"regexp"
	"strings"
)

const unknownEmoji = "❓"

// ActivityTypeDetector maps Nike+ activity types to emoji
type ActivityTypeDetector struct {
	types    map[string]string
	keywords map[string][]string
}

// NewActivityTypeDetector creates a detector with the known Nike+ types
func NewActivityTypeDetector() *ActivityTypeDetector {
	return &ActivityTypeDetector{
		types: map[string]string{
			"RUN":           "🏃",
			"RUNNING":       "🏃",
			"JOGGING":       "🏃",
			"CYCLE":         "🚴",
			"CYCLING":       "🚴",
			"SWIMMING":      "🏊",
			"WALK":          "🥾",
			"WALKING":       "🥾",
			"HIKE":          "🥾",
			"HIKING":        "🥾",
			"SKIING":        "⛷️",
			"SNOWBOARDING":  "⛷️",
			"TRAINING":      "💪",
			"WEIGHTLIFTING": "💪",
			"FOOTBALL":      "⚽",
			"SOCCER":        "⚽",
			"BASKETBALL":    "🏀",
			"TENNIS":        "🎾",
			"ROWING":        "🚣",
			"YOGA":          "🧘",
			"GOLF":          "⛳",
			"CLIMBING":      "🧗",
			"SKATEBOARDING": "🛹",
			"BASEBALL":      "⚾",
			"VOLLEYBALL":    "🏐",
		},
		keywords: map[string][]string{
			"🏃":  {"running", "run", "jog", "jogging", "marathon", "5k", "10k", "half marathon"},
			"🚴":  {"cycling", "cycle", "bike", "biking", "bicycle", "mtb", "road bike", "mountain bike"},
			"🏊":  {"swimming", "swim", "pool", "freestyle", "backstroke", "breaststroke", "butterfly"},
			"⛷️": {"skiing", "ski", "alpine", "downhill", "cross country", "nordic", "snowboard", "snowboarding"},
			"🥾":  {"hiking", "hike", "walk", "walking", "trekking", "trail", "nature walk"},
			"💪":  {"gym", "strength", "weight", "lifting", "fitness", "workout", "training", "crossfit"},
			"⚽":  {"football", "soccer", "futbol", "pitch"},
			"🏀":  {"basketball", "dribble", "dunk"},
			"🎾":  {"tennis", "racket"},
			"🚣":  {"rowing", "row", "kayak", "canoe", "paddle"},
			"🧘":  {"yoga"},
			"⛳":  {"golf"},
			"🧗":  {"climbing", "boulder"},
			"🛹":  {"skateboard", "skate"},
			"⚾":  {"baseball"},
			"🏐":  {"volleyball"},
		},
	}
}

// DetectActivityType returns the emoji for a Nike+ activity type. Unknown
// types fall back to keywords in text, e.g. the activity's tags or name.
func (d *ActivityTypeDetector) DetectActivityType(activityType string, fallbackText string) string {
	key := strings.ToUpper(strings.TrimSpace(activityType))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	if emoji, ok := d.types[key]; ok {
		return emoji
	}

	if fallbackText != "" {
		return d.detectFromText(fallbackText)
	}
	return unknownEmoji
}

// detectFromText picks the emoji of the earliest keyword in text
func (d *ActivityTypeDetector) detectFromText(text string) string {
	content := strings.ToLower(text)

	earliest := len(content) + 1
	matched := ""
	for emoji, keywords := range d.keywords {
		for _, keyword := range keywords {
			pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
			if loc := pattern.FindStringIndex(content); loc != nil && loc[0] < earliest {
				earliest = loc[0]
				matched = emoji
			}
		}
	}

	if matched == "" {
		return unknownEmoji
	}
	return matched
}
