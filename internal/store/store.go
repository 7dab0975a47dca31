// Package store defines the persistence contract shared by the Postgres
// and in-memory backends: record CRUD per entity kind, the read queries
// the aggregation engine needs, and a small key-value meta table with
// compare-and-swap semantics for the sync lock and watermarks.
package store

import (
	"context"
	"errors"

	"github.com/orbitview/spacedata-server/internal/dataset"
)

// ErrNotFound is returned when no record exists for the requested id.
var ErrNotFound = errors.New("record not found")

// CategoryCount is one slice of a label distribution.
type CategoryCount struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// DayCount is the number of records whose date_day equals Day.
type DayCount struct {
	Day   string `json:"date"`
	Count int64  `json:"count"`
}

// LaunchpadStat summarizes launch attempts for one launchpad.
type LaunchpadStat struct {
	Name        string  `json:"name"`
	Attempts    int64   `json:"attempts"`
	Successes   int64   `json:"successes"`
	SuccessRate float64 `json:"success_rate"`
}

// ListOptions controls listing pagination and filtering.
type ListOptions struct {
	Page     int
	Limit    int
	Sort     string
	Order    string
	Category string
	Source   string
	Search   string
}

// ListResult is one page of records plus the unpaginated total.
type ListResult struct {
	Records []Record
	Total   int64
}

// Store is the persistence boundary. Analytics reads are not serialized
// against sync writes; callers get whatever state the backend holds at
// query time.
type Store interface {
	Ping(ctx context.Context) error
	Close()

	GetRecord(ctx context.Context, kind dataset.Kind, id string) (*Record, error)
	InsertRecord(ctx context.Context, kind dataset.Kind, rec *Record) error
	UpdateRecord(ctx context.Context, kind dataset.Kind, rec *Record) error
	DeleteRecord(ctx context.Context, kind dataset.Kind, id string) error
	ListRecords(ctx context.Context, kind dataset.Kind, opts ListOptions) (*ListResult, error)

	CountRecords(ctx context.Context, kind dataset.Kind) (int64, error)
	CountRecordsInRange(ctx context.Context, kind dataset.Kind, startDay, endDay string) (int64, error)

	// CategoryCounts returns the category distribution, descending by
	// count. Empty bounds mean no range filter.
	CategoryCounts(ctx context.Context, kind dataset.Kind, startDay, endDay string) ([]CategoryCount, error)

	// DayCounts returns per-day record counts within the inclusive
	// range, ascending by day.
	DayCounts(ctx context.Context, kind dataset.Kind, startDay, endDay string) ([]DayCount, error)

	// StatusCounts returns the status distribution, descending by count.
	StatusCounts(ctx context.Context, kind dataset.Kind) ([]CategoryCount, error)

	// LaunchpadStats returns attempt/success stats for launchpads with
	// at least one attempt, descending by attempts.
	LaunchpadStats(ctx context.Context) ([]LaunchpadStat, error)

	// LatestRecord returns the most recently updated record for the
	// kind, or nil when the collection is empty.
	LatestRecord(ctx context.Context, kind dataset.Kind) (*Record, error)

	// PutMetaIfAbsent writes key=value only when the key does not exist,
	// reporting whether the write happened. This is the single-statement
	// primitive the sync lock is built on.
	PutMetaIfAbsent(ctx context.Context, key, value string) (bool, error)

	// GetMeta returns the value for key, or "" when absent.
	GetMeta(ctx context.Context, key string) (string, error)

	// SetMeta writes key=value, overwriting any existing value.
	SetMeta(ctx context.Context, key, value string) error

	// DeleteMeta removes key. Deleting an absent key is not an error.
	DeleteMeta(ctx context.Context, key string) error
}
