package sync

import (
	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/store"
)

// verdict is the change detector's answer for one incoming record.
type verdict int

const (
	verdictAbsent verdict = iota
	verdictUnchanged
	verdictChanged
)

// detect compares a normalized incoming record against the stored row
// across the fields relevant to the kind. Nullable text fields fold nil
// and "" together so an upstream that inconsistently omits a field does
// not produce spurious updates; counters compare strictly, keeping the
// null-vs-zero distinction.
func detect(kind dataset.Kind, incoming, existing *store.Record) verdict {
	if existing == nil {
		return verdictAbsent
	}
	if equalForKind(kind, incoming, existing) {
		return verdictUnchanged
	}
	return verdictChanged
}

func equalForKind(kind dataset.Kind, in, ex *store.Record) bool {
	switch kind {
	case dataset.Launches:
		return in.Name == ex.Name &&
			in.DateUTC == ex.DateUTC &&
			in.Category == ex.Category &&
			eqInt(in.Success, ex.Success) &&
			eqText(in.Details, ex.Details)
	case dataset.Ships:
		return in.Name == ex.Name &&
			eqText(in.Type, ex.Type) &&
			in.Category == ex.Category &&
			in.DateUTC == ex.DateUTC &&
			in.DateDay == ex.DateDay &&
			eqInt(in.Active, ex.Active) &&
			eqText(in.HomePort, ex.HomePort) &&
			eqInt(in.YearBuilt, ex.YearBuilt) &&
			eqText(in.Details, ex.Details)
	case dataset.Rockets:
		return in.Name == ex.Name &&
			eqText(in.Type, ex.Type) &&
			in.Category == ex.Category &&
			in.DateUTC == ex.DateUTC &&
			in.DateDay == ex.DateDay &&
			eqInt(in.Active, ex.Active) &&
			eqInt(in.Stages, ex.Stages) &&
			eqInt(in.Boosters, ex.Boosters) &&
			eqInt(in.CostPerLaunch, ex.CostPerLaunch) &&
			eqInt(in.SuccessRate, ex.SuccessRate) &&
			eqText(in.FirstFlight, ex.FirstFlight) &&
			eqText(in.Details, ex.Details)
	case dataset.Capsules:
		return in.Name == ex.Name &&
			in.Category == ex.Category &&
			in.DateUTC == ex.DateUTC &&
			in.DateDay == ex.DateDay &&
			eqText(in.Status, ex.Status) &&
			eqInt(in.ReuseCount, ex.ReuseCount) &&
			eqInt(in.WaterLandings, ex.WaterLandings) &&
			eqInt(in.LandLandings, ex.LandLandings) &&
			eqText(in.LastUpdate, ex.LastUpdate) &&
			eqText(in.Details, ex.Details)
	case dataset.History:
		return in.Name == ex.Name &&
			in.DateUTC == ex.DateUTC &&
			eqInt(in.FlightNumber, ex.FlightNumber)
	case dataset.Launchpads:
		return in.Name == ex.Name &&
			eqText(in.FullName, ex.FullName) &&
			eqText(in.Locality, ex.Locality) &&
			eqText(in.Region, ex.Region) &&
			in.Category == ex.Category &&
			eqText(in.Status, ex.Status) &&
			eqInt(in.LaunchAttempts, ex.LaunchAttempts) &&
			eqInt(in.LaunchSuccesses, ex.LaunchSuccesses) &&
			eqFloat(in.Latitude, ex.Latitude) &&
			eqFloat(in.Longitude, ex.Longitude) &&
			eqText(in.Details, ex.Details)
	default:
		return false
	}
}

// eqText compares nullable strings with nil and "" equivalent.
func eqText(a, b *string) bool {
	av, bv := "", ""
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// eqInt compares counters strictly: nil equals only nil.
func eqInt(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func eqFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
