package store

import "time"

// Authorship markers for records. Manual rows are authored through the
// API and are never touched by a sync pass; external rows mirror the
// upstream dataset.
const (
	SourceManual   = "manual"
	SourceExternal = "external"
)

// Record is the normalized shape shared by every entity kind. Kind
// membership lives in the storage key, not the struct; fields that do not
// apply to a kind stay nil.
type Record struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     *string `json:"type,omitempty"`
	Category string  `json:"category"`

	// DateUTC and DateDay form the canonical timestamp pair; DateDay is
	// always the calendar-day projection of DateUTC.
	DateUTC string `json:"date_utc"`
	DateDay string `json:"date_day"`

	// Launches: tri-state outcome, nil when the upstream outcome is
	// unknown.
	Success *int64 `json:"success,omitempty"`

	// Ships and rockets.
	Active    *int64  `json:"active,omitempty"`
	HomePort  *string `json:"home_port,omitempty"`
	YearBuilt *int64  `json:"year_built,omitempty"`

	// Rockets.
	Stages        *int64  `json:"stages,omitempty"`
	Boosters      *int64  `json:"boosters,omitempty"`
	CostPerLaunch *int64  `json:"cost_per_launch,omitempty"`
	SuccessRate   *int64  `json:"success_rate,omitempty"`
	FirstFlight   *string `json:"first_flight,omitempty"`

	// Capsules.
	Status        *string `json:"status,omitempty"`
	ReuseCount    *int64  `json:"reuse_count,omitempty"`
	WaterLandings *int64  `json:"water_landings,omitempty"`
	LandLandings  *int64  `json:"land_landings,omitempty"`
	LastUpdate    *string `json:"last_update,omitempty"`

	// History.
	FlightNumber *int64 `json:"flight_number,omitempty"`

	// Launchpads.
	FullName        *string  `json:"full_name,omitempty"`
	Locality        *string  `json:"locality,omitempty"`
	Region          *string  `json:"region,omitempty"`
	LaunchAttempts  *int64   `json:"launch_attempts,omitempty"`
	LaunchSuccesses *int64   `json:"launch_successes,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`

	Details *string `json:"details,omitempty"`
	Source  string  `json:"source"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy; pointer fields are reallocated so callers
// can mutate the copy freely.
func (r *Record) Clone() *Record {
	out := *r
	out.Type = cloneStr(r.Type)
	out.Success = cloneInt(r.Success)
	out.Active = cloneInt(r.Active)
	out.HomePort = cloneStr(r.HomePort)
	out.YearBuilt = cloneInt(r.YearBuilt)
	out.Stages = cloneInt(r.Stages)
	out.Boosters = cloneInt(r.Boosters)
	out.CostPerLaunch = cloneInt(r.CostPerLaunch)
	out.SuccessRate = cloneInt(r.SuccessRate)
	out.FirstFlight = cloneStr(r.FirstFlight)
	out.Status = cloneStr(r.Status)
	out.ReuseCount = cloneInt(r.ReuseCount)
	out.WaterLandings = cloneInt(r.WaterLandings)
	out.LandLandings = cloneInt(r.LandLandings)
	out.LastUpdate = cloneStr(r.LastUpdate)
	out.FlightNumber = cloneInt(r.FlightNumber)
	out.FullName = cloneStr(r.FullName)
	out.Locality = cloneStr(r.Locality)
	out.Region = cloneStr(r.Region)
	out.LaunchAttempts = cloneInt(r.LaunchAttempts)
	out.LaunchSuccesses = cloneInt(r.LaunchSuccesses)
	out.Latitude = cloneFloat(r.Latitude)
	out.Longitude = cloneFloat(r.Longitude)
	out.Details = cloneStr(r.Details)
	return &out
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
