// Package dates resolves heterogeneous upstream date inputs into the
// canonical (date_utc, date_day) pair stored with every record, and
// classifies day ranges into aggregation buckets.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// isoMillis is the canonical wire format for date_utc values.
const isoMillis = "2006-01-02T15:04:05.000Z"

// defaultRangeStart is the fallback lower bound for analytics ranges.
const defaultRangeStart = "2000-01-01"

var (
	dayPattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearPattern = regexp.MustCompile(`^\d{4}$`)
)

// parseLayouts are tried in order for inputs that are not bare days.
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Info is the canonical timestamp pair derived from an upstream date.
type Info struct {
	UTC string
	Day string
}

// Parse converts a date input into its canonical pair. A bare YYYY-MM-DD
// day is taken as midnight UTC. Returns false for empty or unparseable
// input; absence is the only failure mode.
func Parse(input string) (Info, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Info{}, false
	}

	if dayPattern.MatchString(input) {
		if _, err := time.Parse("2006-01-02", input); err != nil {
			return Info{}, false
		}
		return Info{UTC: input + "T00:00:00.000Z", Day: input}, true
	}

	for _, layout := range parseLayouts {
		t, err := time.Parse(layout, input)
		if err != nil {
			continue
		}
		return FromTime(t), true
	}

	return Info{}, false
}

// FromTime converts an instant into the canonical pair.
func FromTime(t time.Time) Info {
	utc := t.UTC().Format(isoMillis)
	return Info{UTC: utc, Day: utc[:10]}
}

// YearToDate maps a 4-digit year (string or number) to January 1 of that
// year. Returns "" for anything else.
func YearToDate(v any) string {
	var year string
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		year = strings.TrimSpace(val)
	case int:
		year = strconv.Itoa(val)
	case int64:
		year = strconv.FormatInt(val, 10)
	case float64:
		if val != float64(int64(val)) {
			return ""
		}
		year = strconv.FormatInt(int64(val), 10)
	default:
		return ""
	}

	if !yearPattern.MatchString(year) {
		return ""
	}
	return year + "-01-01"
}

// Resolve canonicalizes an optional upstream date. It prefers the primary
// value, falls back to a previously stored pair when both fields are
// present, and finally to the current instant. Used for kinds where the
// upstream date is optional, so it never fails.
func Resolve(primary string, existing *Info, now time.Time) Info {
	if info, ok := Parse(primary); ok {
		return info
	}
	if existing != nil && existing.UTC != "" && existing.Day != "" {
		return *existing
	}
	return FromTime(now)
}

// Bucket is an aggregation time-window granularity.
type Bucket string

const (
	BucketDaily   Bucket = "daily"
	BucketWeekly  Bucket = "weekly"
	BucketMonthly Bucket = "monthly"
)

// Granularity classifies an inclusive day range. Spans up to 31 days
// bucket daily, up to 90 days weekly, anything wider monthly, which
// bounds the number of series points regardless of range width.
func Granularity(startDay, endDay string) Bucket {
	start, errS := time.Parse("2006-01-02", startDay)
	end, errE := time.Parse("2006-01-02", endDay)
	if errS != nil || errE != nil {
		return BucketMonthly
	}

	span := int(end.Sub(start).Hours()/24) + 1
	switch {
	case span <= 31:
		return BucketDaily
	case span <= 90:
		return BucketWeekly
	default:
		return BucketMonthly
	}
}

// BucketKey returns the series key for a day under the given granularity:
// the day itself, YYYY-Www week-of-year, or YYYY-MM.
func BucketKey(day string, bucket Bucket) string {
	switch bucket {
	case BucketWeekly:
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			return day
		}
		// Week of year with Monday as the first day; days before the
		// first Monday fall into week 00.
		weekday := (int(t.Weekday()) + 6) % 7
		week := (t.YearDay() + 6 - weekday) / 7
		return fmt.Sprintf("%04d-W%02d", t.Year(), week)
	case BucketMonthly:
		if len(day) >= 7 {
			return day[:7]
		}
		return day
	default:
		return day
	}
}

// DefaultRange returns the fallback analytics range: 2000-01-01 through
// the current day.
func DefaultRange(now time.Time) (startDay, endDay string) {
	return defaultRangeStart, now.UTC().Format("2006-01-02")
}

// IsDay reports whether s is a well-formed YYYY-MM-DD day.
func IsDay(s string) bool {
	return dayPattern.MatchString(s)
}

// NormalizeSuccess coerces the upstream tri-state success flag into
// nil, 0 or 1. Unrecognized values collapse to nil.
func NormalizeSuccess(v any) *int64 {
	one, zero := int64(1), int64(0)
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		if val {
			return &one
		}
		return &zero
	case float64:
		if val == 1 {
			return &one
		}
		if val == 0 {
			return &zero
		}
		return nil
	case int:
		if val == 1 {
			return &one
		}
		if val == 0 {
			return &zero
		}
		return nil
	case string:
		switch val {
		case "1", "true":
			return &one
		case "0", "false":
			return &zero
		}
		return nil
	default:
		return nil
	}
}
