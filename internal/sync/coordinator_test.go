package sync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/httpclient"
	"github.com/orbitview/spacedata-server/internal/store/inmemory"
)

// fakeUpstream serves canned JSON per collection path.
type fakeUpstream struct {
	mu        sync.Mutex
	responses map[string]string
	statuses  map[string]int
	hits      map[string]int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		responses: make(map[string]string),
		statuses:  make(map[string]int),
		hits:      make(map[string]int),
	}
}

func (f *fakeUpstream) set(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = body
}

func (f *fakeUpstream) fail(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[path] = status
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[r.URL.Path]++
	if status, ok := f.statuses[r.URL.Path]; ok {
		w.WriteHeader(status)
		return
	}
	body, ok := f.responses[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func newTestCoordinator(t *testing.T, upstream *fakeUpstream) (*Coordinator, *inmemory.Store) {
	t.Helper()
	ts := httptest.NewServer(upstream)
	t.Cleanup(ts.Close)

	st := inmemory.New()
	client := httpclient.New(1, 5*time.Second)
	return NewCoordinator(st, client, ts.URL), st
}

func TestSyncInvalidKind(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t, newFakeUpstream())
	_, err := c.Sync(context.Background(), "asteroids")
	assert.ErrorIs(t, err, dataset.ErrInvalidKind)
}

func TestSyncLaunchesEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	upstream := newFakeUpstream()
	upstream.set("/rockets", `[{"id":"r1","name":"Falcon 9"}]`)
	upstream.set("/launches", `[
		{"id":"l1","name":"Demo Mission","date_utc":"2020-05-30T19:22:00.000Z","rocket":"r1","success":null,"details":""},
		{"id":"l2","name":"Starlink","date_utc":"2020-06-13T09:21:00.000Z","rocket":"missing","success":true},
		{"id":"no-date","name":"broken"}
	]`)

	c, st := newTestCoordinator(t, upstream)

	result, err := c.Sync(ctx, "launches")
	require.NoError(t, err)
	assert.Equal(t, "launches", result.DataType)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 3, result.TotalFetched)
	assert.NotEmpty(t, result.LastSync)

	// success=null is stored as null, not zero.
	rec, err := st.GetRecord(ctx, dataset.Launches, "l1")
	require.NoError(t, err)
	assert.Nil(t, rec.Success)
	assert.Equal(t, "Falcon 9", rec.Category)
	assert.Equal(t, "2020-05-30", rec.DateDay)
	assert.Nil(t, rec.Details)
	assert.Equal(t, "external", rec.Source)

	// Unresolvable rocket reference degrades to Unknown.
	rec, err = st.GetRecord(ctx, dataset.Launches, "l2")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", rec.Category)

	// The doc without a date never reached the store.
	_, err = st.GetRecord(ctx, dataset.Launches, "no-date")
	require.Error(t, err)

	// Watermark recorded for the kind.
	watermark, err := c.Watermark(ctx, dataset.Launches)
	require.NoError(t, err)
	assert.Equal(t, result.LastSync, watermark)

	// An identical second pass is a pure no-op.
	again, err := c.Sync(ctx, "launches")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Inserted)
	assert.Equal(t, 0, again.Updated)
	assert.Equal(t, 2, again.Skipped)
	assert.Equal(t, 3, again.TotalFetched)
}

func TestSyncShipsIdempotentWithoutUpstreamDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	upstream := newFakeUpstream()
	upstream.set("/ships", `[{"id":"s1","name":"Of Course I Still Love You","type":"Barge","roles":["ASDS barge"],"active":true,"home_port":"Port of Long Beach"}]`)

	c, st := newTestCoordinator(t, upstream)

	first, err := c.Sync(ctx, "ships")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	rec, err := st.GetRecord(ctx, dataset.Ships, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.DateUTC)
	assert.Equal(t, "ASDS barge", rec.Category)

	// The second pass must reuse the stored date pair instead of
	// resolving a fresh "now", or it would count as updated.
	second, err := c.Sync(ctx, "ships")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 1, second.Skipped)
}

func TestSyncDetectsUpstreamChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	upstream := newFakeUpstream()
	upstream.set("/rockets", `[]`)
	upstream.set("/launches", `[{"id":"l1","name":"Demo","date_utc":"2020-05-30T19:22:00.000Z","success":null}]`)

	c, st := newTestCoordinator(t, upstream)
	_, err := c.Sync(ctx, "launches")
	require.NoError(t, err)

	upstream.set("/launches", `[{"id":"l1","name":"Demo","date_utc":"2020-05-30T19:22:00.000Z","success":true}]`)
	result, err := c.Sync(ctx, "launches")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	rec, err := st.GetRecord(ctx, dataset.Launches, "l1")
	require.NoError(t, err)
	require.NotNil(t, rec.Success)
	assert.Equal(t, int64(1), *rec.Success)
}

func TestSyncRocketLookupFailureIsNonFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	upstream := newFakeUpstream()
	upstream.fail("/rockets", http.StatusInternalServerError)
	upstream.set("/launches", `[{"id":"l1","name":"Demo","date_utc":"2020-05-30T19:22:00.000Z","rocket":"r1"}]`)

	c, st := newTestCoordinator(t, upstream)

	result, err := c.Sync(ctx, "launches")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	rec, err := st.GetRecord(ctx, dataset.Launches, "l1")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", rec.Category)
}

func TestSyncUpstreamFailureReleasesLock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	upstream := newFakeUpstream()
	upstream.fail("/history", http.StatusForbidden)

	c, _ := newTestCoordinator(t, upstream)

	_, err := c.Sync(ctx, "history")
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, dataset.History, upstreamErr.Kind)

	// No watermark was written.
	watermark, err := c.Watermark(ctx, dataset.History)
	require.NoError(t, err)
	assert.Empty(t, watermark)

	// The lock was released on the failure path.
	locked, err := c.lock.IsLocked(ctx)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestSyncMutualExclusion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	upstream := newFakeUpstream()
	upstream.set("/capsules", `[]`)

	c, _ := newTestCoordinator(t, upstream)

	// Simulate another in-flight pass holding the global lock.
	ok, err := c.lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = c.Sync(ctx, "capsules")
	assert.ErrorIs(t, err, ErrSyncInProgress)

	require.NoError(t, c.lock.Release(ctx))

	result, err := c.Sync(ctx, "capsules")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalFetched)
}

func TestSyncNonArrayPayloadCoercesToEmpty(t *testing.T) {
	t.Parallel()
	upstream := newFakeUpstream()
	upstream.set("/rockets", `{"error":"maintenance"}`)

	c, _ := newTestCoordinator(t, upstream)

	result, err := c.Sync(context.Background(), "rockets")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalFetched)
	assert.Equal(t, 0, result.Inserted)
}

func TestSyncStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	upstream := newFakeUpstream()
	upstream.set("/launchpads", `[{"id":"p1","name":"LC-39A","region":"Florida","launch_attempts":10,"launch_successes":9}]`)

	c, _ := newTestCoordinator(t, upstream)

	status, err := c.SyncStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsLocked)
	require.Len(t, status.LastSync, len(dataset.Kinds()))
	for _, v := range status.LastSync {
		assert.Nil(t, v)
	}

	_, err = c.Sync(ctx, "launchpads")
	require.NoError(t, err)

	status, err = c.SyncStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsLocked)
	require.NotNil(t, status.LastSync["launchpads"])
	assert.Nil(t, status.LastSync["launches"])
}
