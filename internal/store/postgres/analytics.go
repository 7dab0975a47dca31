package postgres

import (
	"context"
	"fmt"

	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/store"
)

// CountRecords returns the unconditional row count for the kind.
func (s *Store) CountRecords(ctx context.Context, kind dataset.Kind) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM records WHERE kind = $1`, string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// CountRecordsInRange counts rows whose date_day lies in the inclusive range.
func (s *Store) CountRecordsInRange(ctx context.Context, kind dataset.Kind, startDay, endDay string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM records WHERE kind = $1 AND date_day >= $2 AND date_day <= $3`,
		string(kind), startDay, endDay).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records in range: %w", err)
	}
	return n, nil
}

// CategoryCounts returns the category distribution, descending by count.
// Empty bounds disable the range filter.
func (s *Store) CategoryCounts(ctx context.Context, kind dataset.Kind, startDay, endDay string) ([]store.CategoryCount, error) {
	query := `
		SELECT category, COUNT(*) AS value
		FROM records
		WHERE kind = $1
		GROUP BY category
		ORDER BY value DESC, category ASC`
	args := []any{string(kind)}

	if startDay != "" && endDay != "" {
		query = `
			SELECT category, COUNT(*) AS value
			FROM records
			WHERE kind = $1 AND date_day >= $2 AND date_day <= $3
			GROUP BY category
			ORDER BY value DESC, category ASC`
		args = append(args, startDay, endDay)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer rows.Close()

	var out []store.CategoryCount
	for rows.Next() {
		var c store.CategoryCount
		if err := rows.Scan(&c.Label, &c.Value); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DayCounts returns per-day counts within the range, ascending by day.
func (s *Store) DayCounts(ctx context.Context, kind dataset.Kind, startDay, endDay string) ([]store.DayCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date_day, COUNT(*) AS count
		FROM records
		WHERE kind = $1 AND date_day >= $2 AND date_day <= $3
		GROUP BY date_day
		ORDER BY date_day ASC`,
		string(kind), startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("failed to query day counts: %w", err)
	}
	defer rows.Close()

	var out []store.DayCount
	for rows.Next() {
		var d store.DayCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// StatusCounts returns the status distribution, descending by count.
// NULL statuses group under the empty label.
func (s *Store) StatusCounts(ctx context.Context, kind dataset.Kind) ([]store.CategoryCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(status, ''), COUNT(*) AS value
		FROM records
		WHERE kind = $1
		GROUP BY COALESCE(status, '')
		ORDER BY value DESC, 1 ASC`,
		string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query status counts: %w", err)
	}
	defer rows.Close()

	var out []store.CategoryCount
	for rows.Next() {
		var c store.CategoryCount
		if err := rows.Scan(&c.Label, &c.Value); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LaunchpadStats returns attempt/success stats for launchpads with at
// least one attempt, descending by attempts. The success rate is rounded
// to one decimal place.
func (s *Store) LaunchpadStats(ctx context.Context) ([]store.LaunchpadStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, launch_attempts, COALESCE(launch_successes, 0),
			ROUND(COALESCE(launch_successes, 0) * 100.0 / launch_attempts, 1)
		FROM records
		WHERE kind = $1 AND launch_attempts > 0
		ORDER BY launch_attempts DESC, name ASC`,
		string(dataset.Launchpads))
	if err != nil {
		return nil, fmt.Errorf("failed to query launchpad stats: %w", err)
	}
	defer rows.Close()

	var out []store.LaunchpadStat
	for rows.Next() {
		var st store.LaunchpadStat
		if err := rows.Scan(&st.Name, &st.Attempts, &st.Successes, &st.SuccessRate); err != nil {
			return nil, fmt.Errorf("failed to scan launchpad stat: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
