package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/store"
)

// recordColumns is the full column list in scan order, minus the kind key.
const recordColumns = `id, name, type, category, date_utc, date_day, success, active,
	home_port, year_built, stages, boosters, cost_per_launch, success_rate,
	first_flight, status, reuse_count, water_landings, land_landings, last_update,
	flight_number, full_name, locality, region, launch_attempts, launch_successes,
	latitude, longitude, details, source, created_at, updated_at`

func scanRecord(row pgx.Row) (*store.Record, error) {
	var rec store.Record
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Type, &rec.Category, &rec.DateUTC, &rec.DateDay,
		&rec.Success, &rec.Active, &rec.HomePort, &rec.YearBuilt, &rec.Stages,
		&rec.Boosters, &rec.CostPerLaunch, &rec.SuccessRate, &rec.FirstFlight,
		&rec.Status, &rec.ReuseCount, &rec.WaterLandings, &rec.LandLandings,
		&rec.LastUpdate, &rec.FlightNumber, &rec.FullName, &rec.Locality,
		&rec.Region, &rec.LaunchAttempts, &rec.LaunchSuccesses, &rec.Latitude,
		&rec.Longitude, &rec.Details, &rec.Source, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func recordArgs(kind dataset.Kind, rec *store.Record) []any {
	return []any{
		string(kind), rec.ID, rec.Name, rec.Type, rec.Category, rec.DateUTC,
		rec.DateDay, rec.Success, rec.Active, rec.HomePort, rec.YearBuilt,
		rec.Stages, rec.Boosters, rec.CostPerLaunch, rec.SuccessRate,
		rec.FirstFlight, rec.Status, rec.ReuseCount, rec.WaterLandings,
		rec.LandLandings, rec.LastUpdate, rec.FlightNumber, rec.FullName,
		rec.Locality, rec.Region, rec.LaunchAttempts, rec.LaunchSuccesses,
		rec.Latitude, rec.Longitude, rec.Details, rec.Source, rec.CreatedAt,
		rec.UpdatedAt,
	}
}

// GetRecord fetches one record by id.
func (s *Store) GetRecord(ctx context.Context, kind dataset.Kind, id string) (*store.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE kind = $1 AND id = $2`
	rec, err := scanRecord(s.pool.QueryRow(ctx, query, string(kind), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// InsertRecord writes a new row.
func (s *Store) InsertRecord(ctx context.Context, kind dataset.Kind, rec *store.Record) error {
	query := `
		INSERT INTO records (kind, ` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33)`
	if _, err := s.pool.Exec(ctx, query, recordArgs(kind, rec)...); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// UpdateRecord overwrites all mutable columns of an existing row.
// created_at is deliberately left untouched.
func (s *Store) UpdateRecord(ctx context.Context, kind dataset.Kind, rec *store.Record) error {
	query := `
		UPDATE records SET
			name = $3, type = $4, category = $5, date_utc = $6, date_day = $7,
			success = $8, active = $9, home_port = $10, year_built = $11,
			stages = $12, boosters = $13, cost_per_launch = $14, success_rate = $15,
			first_flight = $16, status = $17, reuse_count = $18, water_landings = $19,
			land_landings = $20, last_update = $21, flight_number = $22,
			full_name = $23, locality = $24, region = $25, launch_attempts = $26,
			launch_successes = $27, latitude = $28, longitude = $29, details = $30,
			source = $31, updated_at = $32
		WHERE kind = $1 AND id = $2`
	tag, err := s.pool.Exec(ctx, query,
		string(kind), rec.ID, rec.Name, rec.Type, rec.Category, rec.DateUTC,
		rec.DateDay, rec.Success, rec.Active, rec.HomePort, rec.YearBuilt,
		rec.Stages, rec.Boosters, rec.CostPerLaunch, rec.SuccessRate,
		rec.FirstFlight, rec.Status, rec.ReuseCount, rec.WaterLandings,
		rec.LandLandings, rec.LastUpdate, rec.FlightNumber, rec.FullName,
		rec.Locality, rec.Region, rec.LaunchAttempts, rec.LaunchSuccesses,
		rec.Latitude, rec.Longitude, rec.Details, rec.Source, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteRecord removes one row by id.
func (s *Store) DeleteRecord(ctx context.Context, kind dataset.Kind, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM records WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListRecords applies filters, sorting and pagination.
func (s *Store) ListRecords(ctx context.Context, kind dataset.Kind, opts store.ListOptions) (*store.ListResult, error) {
	cfg, err := dataset.Lookup(string(kind))
	if err != nil {
		return nil, err
	}

	where := []string{"kind = $1"}
	args := []any{string(kind)}

	appendFilter := func(clause, value string) {
		args = append(args, "%"+value+"%")
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if opts.Category != "" {
		appendFilter("category ILIKE $%d", opts.Category)
	}
	if opts.Source != "" {
		appendFilter("source ILIKE $%d", opts.Source)
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR details ILIKE $%d)", len(args), len(args)))
	}
	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM records ` + whereClause
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	sortCol := cfg.SortColumn(opts.Sort)
	sortOrder := "DESC"
	if strings.EqualFold(opts.Order, "asc") {
		sortOrder = "ASC"
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 50
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(
		`SELECT %s FROM records %s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		recordColumns, whereClause, sortCol, sortOrder, len(args)-1, len(args),
	)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := make([]store.Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return &store.ListResult{Records: records, Total: total}, nil
}

// LatestRecord returns the most recently updated row, or nil when the
// kind has no rows.
func (s *Store) LatestRecord(ctx context.Context, kind dataset.Kind) (*store.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE kind = $1 ORDER BY updated_at DESC LIMIT 1`
	rec, err := scanRecord(s.pool.QueryRow(ctx, query, string(kind)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest record: %w", err)
	}
	return rec, nil
}
