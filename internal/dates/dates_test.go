package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantUTC string
		wantDay string
		wantOK  bool
	}{
		{name: "bare day", input: "2020-01-01", wantUTC: "2020-01-01T00:00:00.000Z", wantDay: "2020-01-01", wantOK: true},
		{name: "rfc3339 instant", input: "2020-06-04T13:00:00Z", wantUTC: "2020-06-04T13:00:00.000Z", wantDay: "2020-06-04", wantOK: true},
		{name: "rfc3339 with millis", input: "2006-03-24T22:30:00.123Z", wantUTC: "2006-03-24T22:30:00.123Z", wantDay: "2006-03-24", wantOK: true},
		{name: "offset normalized to utc", input: "2020-01-01T01:30:00+02:00", wantUTC: "2019-12-31T23:30:00.000Z", wantDay: "2019-12-31", wantOK: true},
		{name: "empty", input: "", wantOK: false},
		{name: "whitespace", input: "   ", wantOK: false},
		{name: "garbage", input: "not-a-date", wantOK: false},
		{name: "day shaped but invalid", input: "2020-13-45", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			info, ok := Parse(tt.input)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantUTC, info.UTC)
				assert.Equal(t, tt.wantDay, info.Day)
			}
		})
	}
}

func TestYearToDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2015-01-01", YearToDate(2015))
	assert.Equal(t, "2015-01-01", YearToDate("2015"))
	assert.Equal(t, "1999-01-01", YearToDate(float64(1999)))
	assert.Equal(t, "", YearToDate("abc"))
	assert.Equal(t, "", YearToDate(nil))
	assert.Equal(t, "", YearToDate(""))
	assert.Equal(t, "", YearToDate(123))
	assert.Equal(t, "", YearToDate(12345))
	assert.Equal(t, "", YearToDate(2015.5))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	t.Run("primary wins", func(t *testing.T) {
		t.Parallel()
		info := Resolve("2010-06-04", nil, now)
		assert.Equal(t, "2010-06-04", info.Day)
		assert.Equal(t, "2010-06-04T00:00:00.000Z", info.UTC)
	})

	t.Run("falls back to existing pair", func(t *testing.T) {
		t.Parallel()
		existing := &Info{UTC: "2018-02-06T20:45:00.000Z", Day: "2018-02-06"}
		info := Resolve("", existing, now)
		assert.Equal(t, *existing, info)
	})

	t.Run("incomplete existing pair ignored", func(t *testing.T) {
		t.Parallel()
		existing := &Info{UTC: "2018-02-06T20:45:00.000Z"}
		info := Resolve("", existing, now)
		assert.Equal(t, "2024-03-15", info.Day)
	})

	t.Run("falls back to now", func(t *testing.T) {
		t.Parallel()
		info := Resolve("", nil, now)
		assert.Equal(t, "2024-03-15T10:30:00.000Z", info.UTC)
		assert.Equal(t, "2024-03-15", info.Day)
	})
}

func TestGranularity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		start string
		end   string
		want  Bucket
	}{
		{"2024-01-01", "2024-01-31", BucketDaily},  // 31-day span
		{"2024-01-01", "2024-02-01", BucketWeekly}, // 32-day span
		{"2024-01-01", "2024-03-30", BucketWeekly}, // 90-day span (leap year)
		{"2024-01-01", "2024-03-31", BucketMonthly},
		{"2024-01-01", "2024-12-31", BucketMonthly},
		{"2024-01-01", "2024-01-01", BucketDaily},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Granularity(tt.start, tt.end), "%s..%s", tt.start, tt.end)
	}
}

func TestBucketKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-01-15", BucketKey("2024-01-15", BucketDaily))
	assert.Equal(t, "2024-01", BucketKey("2024-01-15", BucketMonthly))

	// 2024-01-01 is a Monday, so it opens week 01.
	assert.Equal(t, "2024-W01", BucketKey("2024-01-01", BucketWeekly))
	// 2023-01-01 is a Sunday, before the first Monday of the year.
	assert.Equal(t, "2023-W00", BucketKey("2023-01-01", BucketWeekly))
	assert.Equal(t, "2023-W01", BucketKey("2023-01-02", BucketWeekly))
}

func TestDefaultRange(t *testing.T) {
	t.Parallel()

	start, end := DefaultRange(time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "2000-01-01", start)
	assert.Equal(t, "2024-07-01", end)
}

func TestNormalizeSuccess(t *testing.T) {
	t.Parallel()

	one, zero := int64(1), int64(0)

	assert.Nil(t, NormalizeSuccess(nil))
	assert.Equal(t, &one, NormalizeSuccess(true))
	assert.Equal(t, &zero, NormalizeSuccess(false))
	assert.Equal(t, &one, NormalizeSuccess(float64(1)))
	assert.Equal(t, &zero, NormalizeSuccess(float64(0)))
	assert.Equal(t, &one, NormalizeSuccess("true"))
	assert.Equal(t, &zero, NormalizeSuccess("0"))
	assert.Nil(t, NormalizeSuccess("maybe"))
	assert.Nil(t, NormalizeSuccess(float64(7)))
}
