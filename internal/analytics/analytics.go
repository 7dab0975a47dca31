// Package analytics computes time-bucketed summaries over the persisted
// record collections. Reads are not serialized against sync passes: a
// report can observe a mid-reconciliation state.
package analytics

import (
	"context"
	"time"

	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/dates"
	"github.com/orbitview/spacedata-server/internal/store"
)

// Range is the clamped day range a report was computed over.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary holds the headline numbers of a report.
type Summary struct {
	Total       int64                `json:"total"`
	InRange     int64                `json:"inRange"`
	TopCategory *store.CategoryCount `json:"topCategory"`
	Latest      *store.Record        `json:"latest"`
	LastSync    *string              `json:"lastSync"`
}

// SeriesPoint is one bucket of the date series.
type SeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Charts holds the distributions of a report. StatusDistribution and
// LaunchStats are populated for launchpads only.
type Charts struct {
	ByCategory         []store.CategoryCount `json:"byCategory"`
	ByDate             []SeriesPoint         `json:"byDate"`
	BucketType         string                `json:"bucketType"`
	StatusDistribution []store.CategoryCount `json:"statusDistribution,omitempty"`
	LaunchStats        []store.LaunchpadStat `json:"launchStats,omitempty"`
}

// Report is the full analytics result for one kind and day range.
type Report struct {
	DataType string  `json:"dataType"`
	Range    Range   `json:"range"`
	Summary  Summary `json:"summary"`
	Charts   Charts  `json:"charts"`
}

// Engine reads the store and assembles reports.
type Engine struct {
	store store.Store
	now   func() time.Time
}

// New creates an analytics engine over the given store.
func New(st store.Store) *Engine {
	return &Engine{store: st, now: time.Now}
}

// Analyze builds the report for a kind over [startDay, endDay]. Days not
// matching YYYY-MM-DD fall back to the default range and a reversed
// range is swapped rather than rejected.
func (e *Engine) Analyze(ctx context.Context, kindName, startDay, endDay string) (*Report, error) {
	cfg, err := dataset.Lookup(kindName)
	if err != nil {
		return nil, err
	}

	defStart, defEnd := dates.DefaultRange(e.now())
	if !dates.IsDay(startDay) {
		startDay = defStart
	}
	if !dates.IsDay(endDay) {
		endDay = defEnd
	}
	if startDay > endDay {
		startDay, endDay = endDay, startDay
	}

	report := &Report{
		DataType: string(cfg.Kind),
		Range:    Range{Start: startDay, End: endDay},
		Charts:   Charts{BucketType: "none", ByDate: []SeriesPoint{}},
	}

	total, err := e.store.CountRecords(ctx, cfg.Kind)
	if err != nil {
		return nil, err
	}
	report.Summary.Total = total

	if cfg.HasDate {
		inRange, err := e.store.CountRecordsInRange(ctx, cfg.Kind, startDay, endDay)
		if err != nil {
			return nil, err
		}
		report.Summary.InRange = inRange

		byCategory, err := e.store.CategoryCounts(ctx, cfg.Kind, startDay, endDay)
		if err != nil {
			return nil, err
		}
		report.Charts.ByCategory = byCategory

		byDate, bucket, err := e.dateSeries(ctx, cfg.Kind, startDay, endDay)
		if err != nil {
			return nil, err
		}
		report.Charts.ByDate = byDate
		report.Charts.BucketType = string(bucket)
	} else {
		// Date-less kinds: the whole collection counts as in range and
		// distributions ignore the range filter.
		report.Summary.InRange = total

		byCategory, err := e.store.CategoryCounts(ctx, cfg.Kind, "", "")
		if err != nil {
			return nil, err
		}
		report.Charts.ByCategory = byCategory
	}

	// Tie-break between equally sized categories is whatever order the
	// store returned.
	if len(report.Charts.ByCategory) > 0 {
		top := report.Charts.ByCategory[0]
		report.Summary.TopCategory = &top
	}

	latest, err := e.store.LatestRecord(ctx, cfg.Kind)
	if err != nil {
		return nil, err
	}
	report.Summary.Latest = latest

	if watermark, err := e.store.GetMeta(ctx, cfg.SyncKey); err != nil {
		return nil, err
	} else if watermark != "" {
		report.Summary.LastSync = &watermark
	}

	if cfg.Kind == dataset.Launchpads {
		if err := e.launchpadCharts(ctx, report); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// dateSeries buckets per-day counts into the granularity the range
// calls for. Buckets with no rows are omitted.
func (e *Engine) dateSeries(ctx context.Context, kind dataset.Kind, startDay, endDay string) ([]SeriesPoint, dates.Bucket, error) {
	bucket := dates.Granularity(startDay, endDay)

	dayCounts, err := e.store.DayCounts(ctx, kind, startDay, endDay)
	if err != nil {
		return nil, bucket, err
	}

	series := make([]SeriesPoint, 0, len(dayCounts))
	index := make(map[string]int, len(dayCounts))
	for _, dc := range dayCounts {
		key := dates.BucketKey(dc.Day, bucket)
		if i, ok := index[key]; ok {
			series[i].Count += dc.Count
			continue
		}
		index[key] = len(series)
		series = append(series, SeriesPoint{Date: key, Count: dc.Count})
	}
	return series, bucket, nil
}

func (e *Engine) launchpadCharts(ctx context.Context, report *Report) error {
	statuses, err := e.store.StatusCounts(ctx, dataset.Launchpads)
	if err != nil {
		return err
	}
	report.Charts.StatusDistribution = statuses

	stats, err := e.store.LaunchpadStats(ctx)
	if err != nil {
		return err
	}
	report.Charts.LaunchStats = stats
	return nil
}
