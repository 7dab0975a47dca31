package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orbitview/spacedata-server/internal/dataset"
	"github.com/orbitview/spacedata-server/internal/dates"
	"github.com/orbitview/spacedata-server/internal/store"
)

// maxPageSize caps the page size of listing requests.
const maxPageSize = 100

var (
	errNameCategoryRequired = errors.New("name and category are required")
	errDateRequired         = errors.New("valid date is required")
)

// Pagination describes the page window of a listing response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// SortInfo echoes the effective sort of a listing response.
type SortInfo struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// ListResponse is the paginated listing envelope.
type ListResponse struct {
	Data       []store.Record `json:"data"`
	Pagination Pagination     `json:"pagination"`
	Sort       SortInfo       `json:"sort"`
}

// CreatedResponse carries the id of a freshly written record.
type CreatedResponse struct {
	ID string `json:"id"`
}

// listRecords handles GET /api/data/{kind}
func (rr *Routes) listRecords(w http.ResponseWriter, r *http.Request) {
	cfg, ok := rr.lookupKind(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	page := parseIntParam(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := parseIntParam(q.Get("limit"), 50)
	if limit < 1 {
		limit = 50
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	sortCol := cfg.SortColumn(q.Get("sort"))
	order := strings.ToLower(q.Get("order"))
	if order != "asc" {
		order = "desc"
	}

	opts := store.ListOptions{
		Page:     page,
		Limit:    limit,
		Sort:     sortCol,
		Order:    order,
		Category: q.Get("category"),
		Source:   q.Get("source"),
		Search:   q.Get("search"),
	}

	result, err := rr.store.ListRecords(r.Context(), cfg.Kind, opts)
	if err != nil {
		slog.Error("failed to list records", "kind", cfg.Kind, "error", err)
		rr.writeErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	totalPages := (result.Total + int64(limit) - 1) / int64(limit)
	rr.writeJSONResponse(w, http.StatusOK, ListResponse{
		Data: result.Records,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      result.Total,
			TotalPages: totalPages,
			HasNext:    int64(page*limit) < result.Total,
			HasPrev:    page > 1,
		},
		Sort: SortInfo{Column: sortCol, Order: order},
	})
}

// getRecord handles GET /api/data/{kind}/{id}
func (rr *Routes) getRecord(w http.ResponseWriter, r *http.Request) {
	cfg, ok := rr.lookupKind(w, r)
	if !ok {
		return
	}

	rec, err := rr.store.GetRecord(r.Context(), cfg.Kind, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rr.writeErrorResponse(w, "not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to get record", "kind", cfg.Kind, "error", err)
		rr.writeErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, http.StatusOK, rec)
}

// createRecord handles POST /api/data/{kind}
func (rr *Routes) createRecord(w http.ResponseWriter, r *http.Request) {
	cfg, ok := rr.lookupKind(w, r)
	if !ok {
		return
	}

	var p recordPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		rr.writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	rec, err := buildManualRecord(cfg, &p, nil, now)
	if err != nil {
		rr.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec.ID = uuid.NewString()
	rec.Source = store.SourceManual
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := rr.store.InsertRecord(r.Context(), cfg.Kind, rec); err != nil {
		slog.Error("failed to create record", "kind", cfg.Kind, "error", err)
		rr.writeErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, http.StatusCreated, CreatedResponse{ID: rec.ID})
}

// updateRecord handles PUT /api/data/{kind}/{id}
func (rr *Routes) updateRecord(w http.ResponseWriter, r *http.Request) {
	cfg, ok := rr.lookupKind(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var p recordPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		rr.writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	existing, err := rr.store.GetRecord(r.Context(), cfg.Kind, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rr.writeErrorResponse(w, "not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to load record", "kind", cfg.Kind, "error", err)
		rr.writeErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	rec, err := buildManualRecord(cfg, &p, existing, now)
	if err != nil {
		rr.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec.ID = id
	rec.Source = existing.Source
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = now

	if err := rr.store.UpdateRecord(r.Context(), cfg.Kind, rec); err != nil {
		slog.Error("failed to update record", "kind", cfg.Kind, "error", err)
		rr.writeErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, http.StatusOK, CreatedResponse{ID: id})
}

// deleteRecord handles DELETE /api/data/{kind}/{id}
func (rr *Routes) deleteRecord(w http.ResponseWriter, r *http.Request) {
	cfg, ok := rr.lookupKind(w, r)
	if !ok {
		return
	}

	err := rr.store.DeleteRecord(r.Context(), cfg.Kind, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rr.writeErrorResponse(w, "not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to delete record", "kind", cfg.Kind, "error", err)
		rr.writeErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rr.writeJSONResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

func (rr *Routes) lookupKind(w http.ResponseWriter, r *http.Request) (*dataset.Config, bool) {
	cfg, err := dataset.Lookup(chi.URLParam(r, "kind"))
	if err != nil {
		rr.writeErrorResponse(w, "Invalid data type", http.StatusBadRequest)
		return nil, false
	}
	return &cfg, true
}

// recordPayload is the request body of manual create and update calls.
// Fields irrelevant to the kind are ignored.
type recordPayload struct {
	Name     string `json:"name"`
	Category string `json:"category"`

	// Date and DateUTC are interchangeable; DateUTC wins when both are set.
	Date    string `json:"date"`
	DateUTC string `json:"date_utc"`

	Success any    `json:"success"`
	Details string `json:"details"`

	Type      string `json:"type"`
	Active    any    `json:"active"`
	HomePort  string `json:"home_port"`
	YearBuilt *int64 `json:"year_built"`

	Stages        *int64 `json:"stages"`
	Boosters      *int64 `json:"boosters"`
	CostPerLaunch *int64 `json:"cost_per_launch"`
	SuccessRate   *int64 `json:"success_rate"`
	FirstFlight   string `json:"first_flight"`

	Status        string `json:"status"`
	ReuseCount    *int64 `json:"reuse_count"`
	WaterLandings *int64 `json:"water_landings"`
	LandLandings  *int64 `json:"land_landings"`
	LastUpdate    string `json:"last_update"`

	FlightNumber *int64 `json:"flight_number"`

	FullName        string   `json:"full_name"`
	Locality        string   `json:"locality"`
	Region          string   `json:"region"`
	LaunchAttempts  *int64   `json:"launch_attempts"`
	LaunchSuccesses *int64   `json:"launch_successes"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

// buildManualRecord validates the payload and maps it onto the common
// schema for the kind. On update the existing row supplies the fallback
// date pair for kinds whose date is optional.
func buildManualRecord(cfg *dataset.Config, p *recordPayload, existing *store.Record, now time.Time) (*store.Record, error) {
	name := strings.TrimSpace(p.Name)
	category := strings.TrimSpace(p.Category)
	if name == "" || category == "" {
		return nil, errNameCategoryRequired
	}

	rec := &store.Record{
		Name:     name,
		Category: category,
		Details:  optStr(p.Details),
	}

	primaryDate := p.DateUTC
	if primaryDate == "" {
		primaryDate = p.Date
	}

	if cfg.RequiresDate {
		info, ok := dates.Parse(primaryDate)
		if !ok {
			return nil, errDateRequired
		}
		rec.DateUTC, rec.DateDay = info.UTC, info.Day
	}

	switch cfg.Kind {
	case dataset.Launches:
		rec.Success = dates.NormalizeSuccess(p.Success)
	case dataset.Ships:
		if primaryDate == "" {
			primaryDate = dates.YearToDate(intAny(p.YearBuilt))
		}
		rec.Type = defaultStr(p.Type, "Unknown")
		rec.Active = dates.NormalizeSuccess(p.Active)
		rec.HomePort = optStr(p.HomePort)
		rec.YearBuilt = optInt(p.YearBuilt)
	case dataset.Rockets:
		if primaryDate == "" {
			primaryDate = p.FirstFlight
		}
		rec.Type = defaultStr(p.Type, "Unknown")
		rec.Active = dates.NormalizeSuccess(p.Active)
		rec.Stages = optInt(p.Stages)
		rec.Boosters = optInt(p.Boosters)
		rec.CostPerLaunch = optInt(p.CostPerLaunch)
		rec.SuccessRate = optInt(p.SuccessRate)
		rec.FirstFlight = optStr(p.FirstFlight)
	case dataset.Capsules:
		if primaryDate == "" {
			primaryDate = p.LastUpdate
		}
		rec.Type = defaultStr(p.Type, "Unknown")
		rec.Status = optStr(p.Status)
		rec.ReuseCount = orZero(p.ReuseCount)
		rec.WaterLandings = orZero(p.WaterLandings)
		rec.LandLandings = orZero(p.LandLandings)
		rec.LastUpdate = optStr(p.LastUpdate)
	case dataset.History:
		rec.FlightNumber = optInt(p.FlightNumber)
	case dataset.Launchpads:
		rec.FullName = optStr(p.FullName)
		rec.Locality = optStr(p.Locality)
		rec.Region = optStr(p.Region)
		rec.Status = optStr(p.Status)
		rec.LaunchAttempts = orZero(p.LaunchAttempts)
		rec.LaunchSuccesses = orZero(p.LaunchSuccesses)
		rec.Latitude = optFloat(p.Latitude)
		rec.Longitude = optFloat(p.Longitude)
	}

	if !cfg.RequiresDate {
		var pair *dates.Info
		if existing != nil && existing.DateUTC != "" && existing.DateDay != "" {
			pair = &dates.Info{UTC: existing.DateUTC, Day: existing.DateDay}
		}
		info := dates.Resolve(primaryDate, pair, now)
		rec.DateUTC, rec.DateDay = info.UTC, info.Day
	}

	return rec, nil
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func defaultStr(s, fallback string) *string {
	if s == "" {
		s = fallback
	}
	return &s
}

func optInt(p *int64) *int64 {
	if p == nil || *p == 0 {
		return nil
	}
	return p
}

func optFloat(p *float64) *float64 {
	if p == nil || *p == 0 {
		return nil
	}
	return p
}

func orZero(p *int64) *int64 {
	if p == nil {
		v := int64(0)
		return &v
	}
	return p
}

func intAny(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
