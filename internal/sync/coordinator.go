// Package sync reconciles upstream dataset collections into the local
// store: one coordinator drives fetch, per-record normalization and
// upsert under a global persisted lock.
package sync

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/httpclient"
	"github.com/orbitview/spacedata-server/internal/store"
)

// Result summarizes one completed sync pass.
type Result struct {
	DataType     string `json:"dataType"`
	Inserted     int    `json:"inserted"`
	Updated      int    `json:"updated"`
	Skipped      int    `json:"skipped"`
	LastSync     string `json:"lastSync"`
	TotalFetched int    `json:"totalFetched"`
	DurationMS   int64  `json:"durationMs"`
}

// Status reports the lock state and every kind's last successful sync.
// A nil entry means the kind has never synced.
type Status struct {
	IsLocked bool               `json:"isLocked"`
	LastSync map[string]*string `json:"lastSync"`
}

// Coordinator orchestrates reconciliation passes. All passes, for any
// kind, are serialized by the global lock; analytics reads are not.
type Coordinator struct {
	store    store.Store
	client   httpclient.Client
	lock     *Lock
	upserter *upserter
	baseURL  string
	now      func() time.Time
}

// NewCoordinator creates a coordinator fetching from the given upstream
// base URL.
func NewCoordinator(st store.Store, client httpclient.Client, baseURL string) *Coordinator {
	return &Coordinator{
		store:    st,
		client:   client,
		lock:     NewLock(st),
		upserter: &upserter{store: st},
		baseURL:  baseURL,
		now:      time.Now,
	}
}

// Sync runs one reconciliation pass for the kind. It returns
// dataset.ErrInvalidKind for unknown kinds, ErrSyncInProgress when
// another pass holds the lock, and an *UpstreamError when the fetch
// fails. The lock is always released before an error propagates.
func (c *Coordinator) Sync(ctx context.Context, kindName string) (*Result, error) {
	cfg, err := dataset.Lookup(kindName)
	if err != nil {
		return nil, err
	}

	start := c.now().UTC()

	acquired, err := c.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrSyncInProgress
	}
	defer func() {
		if err := c.lock.Release(ctx); err != nil {
			slog.Error("failed to release sync lock", "kind", cfg.Kind, "error", err)
		}
	}()

	slog.Info("starting sync", "kind", cfg.Kind)

	// The rocket lookup feeds the launch category; losing it degrades
	// every launch to "Unknown" rather than failing the pass.
	var rockets map[string]string
	if cfg.Kind == dataset.Launches {
		rockets = c.rocketNames(ctx)
	}

	body, err := c.client.Get(ctx, c.baseURL+cfg.EndpointPath)
	if err != nil {
		slog.Error("upstream fetch failed", "kind", cfg.Kind, "error", err)
		return nil, &UpstreamError{Kind: cfg.Kind, Err: err}
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(body, &docs); err != nil {
		// Any non-array payload reconciles as an empty collection.
		docs = nil
	}

	slog.Info("upstream response", "kind", cfg.Kind, "count", len(docs))

	result := &Result{
		DataType:     string(cfg.Kind),
		TotalFetched: len(docs),
	}
	for _, doc := range docs {
		n, ok := normalize(cfg.Kind, doc, rockets)
		if !ok {
			continue
		}
		outcome, err := c.upserter.upsert(ctx, cfg.Kind, n, start)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case OutcomeInserted:
			result.Inserted++
		case OutcomeUpdated:
			result.Updated++
		default:
			result.Skipped++
		}
	}

	watermark := start.Format(lockTimeFormat)
	if err := c.store.SetMeta(ctx, cfg.SyncKey, watermark); err != nil {
		return nil, err
	}
	result.LastSync = watermark
	result.DurationMS = c.now().Sub(start).Milliseconds()

	slog.Info("sync completed",
		"kind", cfg.Kind,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"total_fetched", result.TotalFetched,
		"duration_ms", result.DurationMS)

	return result, nil
}

// rocketNames fetches the rocket collection and builds the id-to-name
// lookup for launch categorization. Failures degrade to an empty lookup.
func (c *Coordinator) rocketNames(ctx context.Context) map[string]string {
	cfg, err := dataset.Lookup(string(dataset.Rockets))
	if err != nil {
		return nil
	}

	body, err := c.client.Get(ctx, c.baseURL+cfg.EndpointPath)
	if err != nil {
		slog.Warn("failed to fetch rockets for launch categorization", "error", err)
		return nil
	}

	var docs []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &docs); err != nil {
		slog.Warn("failed to decode rocket collection", "error", err)
		return nil
	}

	names := make(map[string]string, len(docs))
	for _, doc := range docs {
		if doc.ID != "" {
			names[doc.ID] = doc.Name
		}
	}
	return names
}

// SyncStatus reports the lock state and per-kind watermarks.
func (c *Coordinator) SyncStatus(ctx context.Context) (*Status, error) {
	locked, err := c.lock.IsLocked(ctx)
	if err != nil {
		return nil, err
	}

	lastSync := make(map[string]*string, len(dataset.Kinds()))
	for _, cfg := range dataset.All() {
		value, err := c.store.GetMeta(ctx, cfg.SyncKey)
		if err != nil {
			return nil, err
		}
		if value == "" {
			lastSync[string(cfg.Kind)] = nil
			continue
		}
		lastSync[string(cfg.Kind)] = &value
	}

	return &Status{IsLocked: locked, LastSync: lastSync}, nil
}

// Watermark returns the kind's last successful sync instant, or "".
func (c *Coordinator) Watermark(ctx context.Context, kind dataset.Kind) (string, error) {
	cfg, err := dataset.Lookup(string(kind))
	if err != nil {
		return "", err
	}
	return c.store.GetMeta(ctx, cfg.SyncKey)
}
