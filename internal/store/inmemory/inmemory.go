// Package inmemory provides a mutex-guarded, map-backed implementation of
// the store contract. It backs the unit tests and the memory storage mode
// used for local development.
package inmemory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/store"
)

// Store holds every kind's records plus the meta key-value table.
type Store struct {
	mu      sync.RWMutex
	records map[dataset.Kind]map[string]*store.Record
	meta    map[string]string
}

var _ store.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	records := make(map[dataset.Kind]map[string]*store.Record, len(dataset.Kinds()))
	for _, kind := range dataset.Kinds() {
		records[kind] = make(map[string]*store.Record)
	}
	return &Store{
		records: records,
		meta:    make(map[string]string),
	}
}

// Ping always succeeds.
func (*Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (*Store) Close() {}

func (s *Store) collection(kind dataset.Kind) (map[string]*store.Record, error) {
	col, ok := s.records[kind]
	if !ok {
		return nil, dataset.ErrInvalidKind
	}
	return col, nil
}

// GetRecord returns a copy of the record with the given id.
func (s *Store) GetRecord(_ context.Context, kind dataset.Kind, id string) (*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection(kind)
	if err != nil {
		return nil, err
	}
	rec, ok := col[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec.Clone(), nil
}

// InsertRecord stores a new record.
func (s *Store) InsertRecord(_ context.Context, kind dataset.Kind, rec *store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.collection(kind)
	if err != nil {
		return err
	}
	col[rec.ID] = rec.Clone()
	return nil
}

// UpdateRecord overwrites the record with the same id.
func (s *Store) UpdateRecord(_ context.Context, kind dataset.Kind, rec *store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.collection(kind)
	if err != nil {
		return err
	}
	if _, ok := col[rec.ID]; !ok {
		return store.ErrNotFound
	}
	col[rec.ID] = rec.Clone()
	return nil
}

// DeleteRecord removes the record with the given id.
func (s *Store) DeleteRecord(_ context.Context, kind dataset.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.collection(kind)
	if err != nil {
		return err
	}
	if _, ok := col[id]; !ok {
		return store.ErrNotFound
	}
	delete(col, id)
	return nil
}

// ListRecords applies filters, sorting and pagination over the kind's
// collection.
func (s *Store) ListRecords(_ context.Context, kind dataset.Kind, opts store.ListOptions) (*store.ListResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	matched := make([]*store.Record, 0, len(col))
	for _, rec := range col {
		if !matches(rec, opts) {
			continue
		}
		matched = append(matched, rec)
	}

	sortRecords(matched, opts.Sort, strings.EqualFold(opts.Order, "asc"))

	total := int64(len(matched))
	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 50
	}

	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]store.Record, 0, end-start)
	for _, rec := range matched[start:end] {
		out = append(out, *rec.Clone())
	}
	return &store.ListResult{Records: out, Total: total}, nil
}

func matches(rec *store.Record, opts store.ListOptions) bool {
	if opts.Category != "" && !containsFold(rec.Category, opts.Category) {
		return false
	}
	if opts.Source != "" && !containsFold(rec.Source, opts.Source) {
		return false
	}
	if opts.Search != "" {
		details := ""
		if rec.Details != nil {
			details = *rec.Details
		}
		if !containsFold(rec.Name, opts.Search) && !containsFold(details, opts.Search) {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// sortRecords orders by the requested column, id-tie-broken so pagination
// is stable across calls.
func sortRecords(recs []*store.Record, column string, asc bool) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := sortKey(recs[i], column), sortKey(recs[j], column)
		if a == b {
			return recs[i].ID < recs[j].ID
		}
		if asc {
			return a < b
		}
		return a > b
	})
}

func sortKey(rec *store.Record, column string) string {
	switch column {
	case "name":
		return rec.Name
	case "category":
		return rec.Category
	case "date_utc":
		return rec.DateUTC
	case "date_day":
		return rec.DateDay
	case "source":
		return rec.Source
	case "created_at":
		return rec.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000Z")
	case "type":
		return strDeref(rec.Type)
	case "status":
		return strDeref(rec.Status)
	case "home_port":
		return strDeref(rec.HomePort)
	case "full_name":
		return strDeref(rec.FullName)
	case "locality":
		return strDeref(rec.Locality)
	case "region":
		return strDeref(rec.Region)
	case "first_flight":
		return strDeref(rec.FirstFlight)
	case "success":
		return intKey(rec.Success)
	case "active":
		return intKey(rec.Active)
	case "year_built":
		return intKey(rec.YearBuilt)
	case "stages":
		return intKey(rec.Stages)
	case "cost_per_launch":
		return intKey(rec.CostPerLaunch)
	case "success_rate":
		return intKey(rec.SuccessRate)
	case "reuse_count":
		return intKey(rec.ReuseCount)
	case "flight_number":
		return intKey(rec.FlightNumber)
	case "launch_attempts":
		return intKey(rec.LaunchAttempts)
	case "launch_successes":
		return intKey(rec.LaunchSuccesses)
	default:
		return rec.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000000000Z")
	}
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// intKey renders a counter as a fixed-width sortable string; nils sort
// before any value.
func intKey(p *int64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%019d", *p)
}

// CountRecords returns the unconditional row count for the kind.
func (s *Store) CountRecords(_ context.Context, kind dataset.Kind) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection(kind)
	if err != nil {
		return 0, err
	}
	return int64(len(col)), nil
}

// CountRecordsInRange counts records whose date_day lies in the inclusive
// range.
func (s *Store) CountRecordsInRange(_ context.Context, kind dataset.Kind, startDay, endDay string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection(kind)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, rec := range col {
		if rec.DateDay >= startDay && rec.DateDay <= endDay {
			n++
		}
	}
	return n, nil
}

// CategoryCounts returns the category distribution, optionally filtered
// by the day range, descending by count.
func (s *Store) CategoryCounts(_ context.Context, kind dataset.Kind, startDay, endDay string) ([]store.CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, rec := range col {
		if startDay != "" && endDay != "" {
			if rec.DateDay < startDay || rec.DateDay > endDay {
				continue
			}
		}
		counts[rec.Category]++
	}
	return toSortedCounts(counts), nil
}

// DayCounts returns per-day counts within the range, ascending by day.
func (s *Store) DayCounts(_ context.Context, kind dataset.Kind, startDay, endDay string) ([]store.DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, rec := range col {
		if rec.DateDay >= startDay && rec.DateDay <= endDay {
			counts[rec.DateDay]++
		}
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]store.DayCount, 0, len(days))
	for _, day := range days {
		out = append(out, store.DayCount{Day: day, Count: counts[day]})
	}
	return out, nil
}

// StatusCounts returns the status distribution, descending by count.
func (s *Store) StatusCounts(_ context.Context, kind dataset.Kind) ([]store.CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, rec := range col {
		counts[strDeref(rec.Status)]++
	}
	return toSortedCounts(counts), nil
}

// LaunchpadStats computes attempt/success stats for launchpads with at
// least one attempt, descending by attempts.
func (s *Store) LaunchpadStats(_ context.Context) ([]store.LaunchpadStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection(dataset.Launchpads)
	if err != nil {
		return nil, err
	}

	out := make([]store.LaunchpadStat, 0, len(col))
	for _, rec := range col {
		attempts := intDeref(rec.LaunchAttempts)
		if attempts <= 0 {
			continue
		}
		successes := intDeref(rec.LaunchSuccesses)
		rate := math.Round(float64(successes)*1000/float64(attempts)) / 10
		out = append(out, store.LaunchpadStat{
			Name:        rec.Name,
			Attempts:    attempts,
			Successes:   successes,
			SuccessRate: rate,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attempts != out[j].Attempts {
			return out[i].Attempts > out[j].Attempts
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func intDeref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// LatestRecord returns the most recently updated record, or nil when the
// collection is empty.
func (s *Store) LatestRecord(_ context.Context, kind dataset.Kind) (*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	var latest *store.Record
	for _, rec := range col {
		if latest == nil || rec.UpdatedAt.After(latest.UpdatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, nil
	}
	return latest.Clone(), nil
}

// PutMetaIfAbsent writes key=value only when absent.
func (s *Store) PutMetaIfAbsent(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meta[key]; ok {
		return false, nil
	}
	s.meta[key] = value
	return true, nil
}

// GetMeta returns the value for key, or "".
func (s *Store) GetMeta(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta[key], nil
}

// SetMeta writes key=value unconditionally.
func (s *Store) SetMeta(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta[key] = value
	return nil
}

// DeleteMeta removes key.
func (s *Store) DeleteMeta(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.meta, key)
	return nil
}

func toSortedCounts(counts map[string]int64) []store.CategoryCount {
	out := make([]store.CategoryCount, 0, len(counts))
	for label, value := range counts {
		out = append(out, store.CategoryCount{Label: label, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}
