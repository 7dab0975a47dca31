package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/store"
)

func strp(s string) *string { return &s }
func intp(v int64) *int64   { return &v }

func baseLaunch() store.Record {
	return store.Record{
		ID:       "l1",
		Name:     "Starlink 6-1",
		Category: "Falcon 9",
		DateUTC:  "2024-01-10T05:00:00.000Z",
		DateDay:  "2024-01-10",
		Success:  intp(1),
	}
}

func TestDetectAbsent(t *testing.T) {
	t.Parallel()
	in := baseLaunch()
	assert.Equal(t, verdictAbsent, detect(dataset.Launches, &in, nil))
}

func TestDetectLaunches(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*store.Record)
		want   verdict
	}{
		{
			name:   "identical",
			mutate: func(*store.Record) {},
			want:   verdictUnchanged,
		},
		{
			name:   "nil_details_vs_empty_details",
			mutate: func(r *store.Record) { r.Details = strp("") },
			want:   verdictUnchanged,
		},
		{
			name:   "name_changed",
			mutate: func(r *store.Record) { r.Name = "Starlink 6-2" },
			want:   verdictChanged,
		},
		{
			name:   "success_null_vs_zero",
			mutate: func(r *store.Record) { r.Success = nil },
			want:   verdictChanged,
		},
		{
			name:   "success_zero_vs_one",
			mutate: func(r *store.Record) { r.Success = intp(0) },
			want:   verdictChanged,
		},
		{
			name:   "date_changed",
			mutate: func(r *store.Record) { r.DateUTC = "2024-01-11T05:00:00.000Z" },
			want:   verdictChanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			existing := baseLaunch()
			incoming := baseLaunch()
			tt.mutate(&incoming)
			assert.Equal(t, tt.want, detect(dataset.Launches, &incoming, &existing))
		})
	}
}

func TestDetectCapsulesIgnoresType(t *testing.T) {
	t.Parallel()
	existing := store.Record{
		ID:            "c1",
		Name:          "C201",
		Type:          strp("Dragon 2.0"),
		Category:      "Dragon 2.0",
		Status:        strp("active"),
		ReuseCount:    intp(3),
		WaterLandings: intp(2),
		LandLandings:  intp(0),
	}
	incoming := existing
	incoming.Type = strp("Dragon 2.5")

	assert.Equal(t, verdictUnchanged, detect(dataset.Capsules, &incoming, &existing))
}

func TestDetectHistoryComparesOnlyNameDateFlight(t *testing.T) {
	t.Parallel()
	existing := store.Record{
		ID:           "h1",
		Name:         "First orbital launch",
		Category:     "Historical Event",
		DateUTC:      "2008-09-28T23:15:00.000Z",
		DateDay:      "2008-09-28",
		FlightNumber: intp(4),
		Details:      strp("Falcon 1 reaches orbit"),
	}
	incoming := existing
	incoming.Details = strp("rewritten details")

	assert.Equal(t, verdictUnchanged, detect(dataset.History, &incoming, &existing))

	incoming.FlightNumber = intp(5)
	assert.Equal(t, verdictChanged, detect(dataset.History, &incoming, &existing))
}

func TestDetectLaunchpadCounters(t *testing.T) {
	t.Parallel()
	existing := store.Record{
		ID:              "p1",
		Name:            "LC-39A",
		Category:        "Florida",
		LaunchAttempts:  intp(50),
		LaunchSuccesses: intp(48),
	}
	incoming := existing
	incoming.LaunchAttempts = intp(51)

	assert.Equal(t, verdictChanged, detect(dataset.Launchpads, &incoming, &existing))
}
