package sync

import (
	"context"
	"errors"
	"time"

	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/dates"
	"github.com/orbitview/spacedata-server/internal/store"
)

// Outcome is the per-record result of an upsert.
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeUpdated  Outcome = "updated"
	OutcomeSkipped  Outcome = "skipped"
)

// upserter applies the change detector's verdict for records arriving
// from upstream. Rows it writes always carry source=external: a synced id
// wins over any local row with the same id, manual or not.
type upserter struct {
	store store.Store
}

// upsert inserts, updates or skips one normalized record. Unchanged
// records produce no write at all, which is what makes a repeat sync of
// unchanged upstream data a true no-op.
func (u *upserter) upsert(ctx context.Context, kind dataset.Kind, n *normalized, now time.Time) (Outcome, error) {
	existing, err := u.store.GetRecord(ctx, kind, n.record.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	rec := n.record
	if n.resolveDate {
		var pair *dates.Info
		if existing != nil && existing.DateUTC != "" && existing.DateDay != "" {
			pair = &dates.Info{UTC: existing.DateUTC, Day: existing.DateDay}
		}
		info := dates.Resolve(n.dateInput, pair, now)
		rec.DateUTC, rec.DateDay = info.UTC, info.Day
	}
	rec.Source = store.SourceExternal

	switch detect(kind, &rec, existing) {
	case verdictAbsent:
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if err := u.store.InsertRecord(ctx, kind, &rec); err != nil {
			return "", err
		}
		return OutcomeInserted, nil
	case verdictChanged:
		rec.CreatedAt = existing.CreatedAt
		rec.UpdatedAt = now
		if err := u.store.UpdateRecord(ctx, kind, &rec); err != nil {
			return "", err
		}
		return OutcomeUpdated, nil
	default:
		return OutcomeSkipped, nil
	}
}
