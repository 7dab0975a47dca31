// Package dataset is the registry of entity kinds the service knows how
// to sync and analyze. Each kind carries the configuration that drives
// normalization, storage and aggregation, replacing any need for a
// per-kind type hierarchy.
package dataset

import "errors"

// Kind identifies one of the entity categories.
type Kind string

const (
	Launches   Kind = "launches"
	Ships      Kind = "ships"
	Rockets    Kind = "rockets"
	Capsules   Kind = "capsules"
	History    Kind = "history"
	Launchpads Kind = "launchpads"
)

// ErrInvalidKind is returned when an unknown kind is requested. It is a
// caller error and is never retried.
var ErrInvalidKind = errors.New("invalid data type")

// Config describes one entity kind.
type Config struct {
	Kind Kind

	// SyncKey is the meta-table key holding this kind's last-sync watermark.
	SyncKey string

	// EndpointPath is the upstream collection path, joined to the
	// configured upstream base URL.
	EndpointPath string

	// HasDate marks kinds whose date pair is meaningful for range
	// filtering. Launchpads carry a synthetic "now" date and are
	// excluded from range semantics.
	HasDate bool

	// RequiresDate marks kinds whose upstream records are dropped when
	// the date field is missing or unparseable.
	RequiresDate bool

	// SortColumns are the columns exposed for listing sort.
	SortColumns []string
}

var configs = map[Kind]Config{
	Launches: {
		Kind:         Launches,
		SyncKey:      "launches_last_sync",
		EndpointPath: "/launches",
		HasDate:      true,
		RequiresDate: true,
		SortColumns:  []string{"name", "date_utc", "date_day", "category", "success", "source", "created_at", "updated_at"},
	},
	Ships: {
		Kind:         Ships,
		SyncKey:      "ships_last_sync",
		EndpointPath: "/ships",
		HasDate:      true,
		SortColumns:  []string{"name", "date_utc", "date_day", "type", "category", "active", "home_port", "year_built", "source", "created_at", "updated_at"},
	},
	Rockets: {
		Kind:         Rockets,
		SyncKey:      "rockets_last_sync",
		EndpointPath: "/rockets",
		HasDate:      true,
		SortColumns:  []string{"name", "date_utc", "date_day", "type", "category", "active", "stages", "cost_per_launch", "success_rate", "first_flight", "source", "created_at", "updated_at"},
	},
	Capsules: {
		Kind:         Capsules,
		SyncKey:      "capsules_last_sync",
		EndpointPath: "/capsules",
		HasDate:      true,
		SortColumns:  []string{"name", "date_utc", "date_day", "type", "category", "status", "reuse_count", "source", "created_at", "updated_at"},
	},
	History: {
		Kind:         History,
		SyncKey:      "history_last_sync",
		EndpointPath: "/history",
		HasDate:      true,
		RequiresDate: true,
		SortColumns:  []string{"name", "date_utc", "date_day", "category", "flight_number", "source", "created_at", "updated_at"},
	},
	Launchpads: {
		Kind:         Launchpads,
		SyncKey:      "launchpads_last_sync",
		EndpointPath: "/launchpads",
		SortColumns:  []string{"name", "full_name", "locality", "region", "category", "status", "launch_attempts", "launch_successes", "source", "created_at", "updated_at"},
	},
}

// order fixes the iteration order of All and Kinds.
var order = []Kind{Launches, Ships, Rockets, Capsules, History, Launchpads}

// Lookup resolves a kind name to its configuration.
func Lookup(name string) (Config, error) {
	cfg, ok := configs[Kind(name)]
	if !ok {
		return Config{}, ErrInvalidKind
	}
	return cfg, nil
}

// All returns the configuration for every known kind.
func All() []Config {
	out := make([]Config, 0, len(order))
	for _, k := range order {
		out = append(out, configs[k])
	}
	return out
}

// Kinds returns every known kind name.
func Kinds() []Kind {
	return append([]Kind(nil), order...)
}

// SortColumn validates a requested sort column against the kind's
// allowlist, falling back to updated_at.
func (c Config) SortColumn(requested string) string {
	for _, col := range c.SortColumns {
		if col == requested {
			return col
		}
	}
	return "updated_at"
}
