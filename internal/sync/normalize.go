package sync

import (
	"encoding/json"

	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/dates"
	"github.com/orbitview/spacedata-server/internal/store"
)

// unknownCategory is the fallback when an upstream record carries no
// usable category source.
const unknownCategory = "Unknown"

// historyCategory is the fixed category for history events.
const historyCategory = "Historical Event"

// capsuleCategory is the fallback capsule family.
const capsuleCategory = "Dragon"

// normalized is one upstream record mapped into the common schema. For
// kinds with an optional upstream date the canonical pair is resolved
// later by the upsert engine, which can consult the stored pair.
type normalized struct {
	record store.Record

	// dateInput is the raw primary date value, resolved at upsert time.
	resolveDate bool
	dateInput   string
}

// normalize maps one raw upstream document into the common schema.
// Documents missing their identity, or their date for kinds where the
// date is mandatory, are silently dropped (ok=false): partial upstream
// data quality issues must not abort a pass.
func normalize(kind dataset.Kind, raw json.RawMessage, rockets map[string]string) (*normalized, bool) {
	switch kind {
	case dataset.Launches:
		return normalizeLaunch(raw, rockets)
	case dataset.Ships:
		return normalizeShip(raw)
	case dataset.Rockets:
		return normalizeRocket(raw)
	case dataset.Capsules:
		return normalizeCapsule(raw)
	case dataset.History:
		return normalizeHistory(raw)
	case dataset.Launchpads:
		return normalizeLaunchpad(raw)
	default:
		return nil, false
	}
}

type launchDoc struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	DateUTC string          `json:"date_utc"`
	Rocket  json.RawMessage `json:"rocket"`
	Success *bool           `json:"success"`
	Details string          `json:"details"`
}

func normalizeLaunch(raw json.RawMessage, rockets map[string]string) (*normalized, bool) {
	var doc launchDoc
	if err := json.Unmarshal(raw, &doc); err != nil || doc.ID == "" || doc.DateUTC == "" {
		return nil, false
	}
	info, ok := dates.Parse(doc.DateUTC)
	if !ok {
		return nil, false
	}

	var success *int64
	if doc.Success != nil {
		v := int64(0)
		if *doc.Success {
			v = 1
		}
		success = &v
	}

	return &normalized{
		record: store.Record{
			ID:       doc.ID,
			Name:     orUnknown(doc.Name),
			Category: rocketName(doc.Rocket, rockets),
			DateUTC:  info.UTC,
			DateDay:  info.Day,
			Success:  success,
			Details:  strOrNil(doc.Details),
		},
	}, true
}

// rocketName resolves the launch's rocket reference, which upstream
// delivers either as an id string or an inlined object.
func rocketName(raw json.RawMessage, rockets map[string]string) string {
	if len(raw) == 0 {
		return unknownCategory
	}

	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		if name, ok := rockets[id]; ok && name != "" {
			return name
		}
		return unknownCategory
	}

	var inline struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &inline); err == nil && inline.Name != "" {
		return inline.Name
	}
	return unknownCategory
}

type shipDoc struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Roles     []string `json:"roles"`
	Active    bool     `json:"active"`
	HomePort  string   `json:"home_port"`
	YearBuilt *int64   `json:"year_built"`
	Link      string   `json:"link"`
	URL       string   `json:"url"`
}

func normalizeShip(raw json.RawMessage) (*normalized, bool) {
	var doc shipDoc
	if err := json.Unmarshal(raw, &doc); err != nil || doc.ID == "" {
		return nil, false
	}

	category := unknownCategory
	if len(doc.Roles) > 0 && doc.Roles[0] != "" {
		category = doc.Roles[0]
	}

	details := doc.Link
	if details == "" {
		details = doc.URL
	}

	return &normalized{
		record: store.Record{
			ID:        doc.ID,
			Name:      orUnknown(doc.Name),
			Type:      ptr(orUnknown(doc.Type)),
			Category:  category,
			Active:    boolToInt(doc.Active),
			HomePort:  strOrNil(doc.HomePort),
			YearBuilt: zeroToNil(doc.YearBuilt),
			Details:   strOrNil(details),
		},
		resolveDate: true,
		dateInput:   dates.YearToDate(intAny(doc.YearBuilt)),
	}, true
}

type rocketDoc struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Active        bool   `json:"active"`
	Stages        *int64 `json:"stages"`
	Boosters      *int64 `json:"boosters"`
	CostPerLaunch *int64 `json:"cost_per_launch"`
	SuccessRate   *int64 `json:"success_rate_pct"`
	FirstFlight   string `json:"first_flight"`
	Description   string `json:"description"`
}

func normalizeRocket(raw json.RawMessage) (*normalized, bool) {
	var doc rocketDoc
	if err := json.Unmarshal(raw, &doc); err != nil || doc.ID == "" {
		return nil, false
	}

	return &normalized{
		record: store.Record{
			ID:            doc.ID,
			Name:          orUnknown(doc.Name),
			Type:          ptr(orUnknown(doc.Type)),
			Category:      orUnknown(doc.Name),
			Active:        boolToInt(doc.Active),
			Stages:        zeroToNil(doc.Stages),
			Boosters:      zeroToNil(doc.Boosters),
			CostPerLaunch: zeroToNil(doc.CostPerLaunch),
			SuccessRate:   zeroToNil(doc.SuccessRate),
			FirstFlight:   strOrNil(doc.FirstFlight),
			Details:       strOrNil(doc.Description),
		},
		resolveDate: true,
		dateInput:   doc.FirstFlight,
	}, true
}

type capsuleDoc struct {
	ID            string `json:"id"`
	Serial        string `json:"serial"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	ReuseCount    int64  `json:"reuse_count"`
	WaterLandings int64  `json:"water_landings"`
	LandLandings  int64  `json:"land_landings"`
	LastUpdate    string `json:"last_update"`
}

func normalizeCapsule(raw json.RawMessage) (*normalized, bool) {
	var doc capsuleDoc
	if err := json.Unmarshal(raw, &doc); err != nil || doc.ID == "" {
		return nil, false
	}

	category := doc.Type
	if category == "" {
		category = capsuleCategory
	}

	return &normalized{
		record: store.Record{
			ID:            doc.ID,
			Name:          orUnknown(doc.Serial),
			Type:          ptr(orUnknown(doc.Type)),
			Category:      category,
			Status:        strOrNil(doc.Status),
			ReuseCount:    ptr(doc.ReuseCount),
			WaterLandings: ptr(doc.WaterLandings),
			LandLandings:  ptr(doc.LandLandings),
			LastUpdate:    strOrNil(doc.LastUpdate),
		},
		resolveDate: true,
		dateInput:   doc.LastUpdate,
	}, true
}

type historyDoc struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	EventDateUTC string `json:"event_date_utc"`
	FlightNumber *int64 `json:"flight_number"`
	Details      string `json:"details"`
}

func normalizeHistory(raw json.RawMessage) (*normalized, bool) {
	var doc historyDoc
	if err := json.Unmarshal(raw, &doc); err != nil || doc.ID == "" || doc.EventDateUTC == "" {
		return nil, false
	}
	info, ok := dates.Parse(doc.EventDateUTC)
	if !ok {
		return nil, false
	}

	return &normalized{
		record: store.Record{
			ID:           doc.ID,
			Name:         orUnknown(doc.Title),
			Category:     historyCategory,
			DateUTC:      info.UTC,
			DateDay:      info.Day,
			FlightNumber: zeroToNil(doc.FlightNumber),
			Details:      strOrNil(doc.Details),
		},
	}, true
}

type launchpadDoc struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Locality        string   `json:"locality"`
	Region          string   `json:"region"`
	Status          string   `json:"status"`
	LaunchAttempts  int64    `json:"launch_attempts"`
	LaunchSuccesses int64    `json:"launch_successes"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Details         string   `json:"details"`
}

func normalizeLaunchpad(raw json.RawMessage) (*normalized, bool) {
	var doc launchpadDoc
	if err := json.Unmarshal(raw, &doc); err != nil || doc.ID == "" {
		return nil, false
	}

	category := doc.Region
	if category == "" {
		category = unknownCategory
	}

	return &normalized{
		record: store.Record{
			ID:              doc.ID,
			Name:            orUnknown(doc.Name),
			FullName:        strOrNil(doc.FullName),
			Locality:        strOrNil(doc.Locality),
			Region:          strOrNil(doc.Region),
			Category:        category,
			Status:          strOrNil(doc.Status),
			LaunchAttempts:  ptr(doc.LaunchAttempts),
			LaunchSuccesses: ptr(doc.LaunchSuccesses),
			Latitude:        fzeroToNil(doc.Latitude),
			Longitude:       fzeroToNil(doc.Longitude),
			Details:         strOrNil(doc.Details),
		},
		resolveDate: true,
	}, true
}

func orUnknown(s string) string {
	if s == "" {
		return unknownCategory
	}
	return s
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptr[T any](v T) *T {
	return &v
}

func boolToInt(b bool) *int64 {
	v := int64(0)
	if b {
		v = 1
	}
	return &v
}

// zeroToNil folds absent and zero counters together, matching how the
// upstream omits them interchangeably.
func zeroToNil(p *int64) *int64 {
	if p == nil || *p == 0 {
		return nil
	}
	return p
}

func fzeroToNil(p *float64) *float64 {
	if p == nil || *p == 0 {
		return nil
	}
	return p
}

func intAny(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
