package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	cfg, err := Lookup("launches")
	require.NoError(t, err)
	assert.Equal(t, Launches, cfg.Kind)
	assert.True(t, cfg.HasDate)
	assert.True(t, cfg.RequiresDate)
	assert.Equal(t, "/launches", cfg.EndpointPath)
	assert.Equal(t, "launches_last_sync", cfg.SyncKey)

	_, err = Lookup("asteroids")
	assert.ErrorIs(t, err, ErrInvalidKind)

	// Kind names are exact, not case-folded.
	_, err = Lookup("Launches")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestKindFlags(t *testing.T) {
	t.Parallel()

	ships, err := Lookup("ships")
	require.NoError(t, err)
	assert.True(t, ships.HasDate)
	assert.False(t, ships.RequiresDate)

	launchpads, err := Lookup("launchpads")
	require.NoError(t, err)
	assert.False(t, launchpads.HasDate)
	assert.False(t, launchpads.RequiresDate)
}

func TestAllCoversEveryKind(t *testing.T) {
	t.Parallel()

	all := All()
	require.Len(t, all, 6)
	assert.Equal(t, Launches, all[0].Kind)
	assert.Equal(t, Launchpads, all[5].Kind)
	assert.Len(t, Kinds(), 6)
}

func TestSortColumn(t *testing.T) {
	t.Parallel()

	cfg, err := Lookup("launches")
	require.NoError(t, err)

	assert.Equal(t, "date_utc", cfg.SortColumn("date_utc"))
	assert.Equal(t, "updated_at", cfg.SortColumn(""))
	assert.Equal(t, "updated_at", cfg.SortColumn("details; DROP TABLE records"))

	// Columns are per kind: flight_number sorts history, not launches.
	assert.Equal(t, "updated_at", cfg.SortColumn("flight_number"))
	history, err := Lookup("history")
	require.NoError(t, err)
	assert.Equal(t, "flight_number", history.SortColumn("flight_number"))
}
