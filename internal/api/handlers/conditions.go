package handlers

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"parkingpass/internal/core"
	"parkingpass/internal/forecasts"
	"parkingpass/internal/prediction"
	"parkingpass/internal/types"
)

// WeatherSource returns the current weather snapshot, refreshing if stale.
// Peek reads the cache only.
type WeatherSource interface {
	Current(ctx context.Context) types.WeatherSnapshot
	Peek() (types.WeatherSnapshot, bool)
}

// HotspotSource is the proximity table the engine scores against.
type HotspotSource interface {
	Hotspots() []prediction.Hotspot
	Nearest(lat, lon float64) (prediction.Hotspot, float64, bool)
}

// ConditionsHandler exposes the live inputs of the engine: the cached
// weather snapshot, the hotspot table and the forecast grid lookup.
type ConditionsHandler struct {
	weather   WeatherSource
	hotspots  HotspotSource
	validator *core.Validator
	clock     types.Clock
	logger    *slog.Logger
}

// NewConditionsHandler creates a ConditionsHandler. A nil clock uses the
// real clock.
func NewConditionsHandler(weather WeatherSource, hotspots HotspotSource, val *core.Validator, clock types.Clock, logger *slog.Logger) *ConditionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &ConditionsHandler{
		weather:   weather,
		hotspots:  hotspots,
		validator: val,
		clock:     clock,
		logger:    logger,
	}
}

// RegisterRoutes mounts /weather, /hotspots and /grid.
func (h *ConditionsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/weather", h.HandleWeather)
	r.Get("/hotspots", h.HandleHotspots)
	r.Get("/grid", h.HandleGrid)
}

// HandleWeather handles GET /v1/weather. The provider never fails, so a feed
// outage shows up as a snapshot with fallback set.
//
// With ?cached=true the cached snapshot is returned as is and the feed is
// never called. Data is null until the first refresh has run.
func (h *ConditionsHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("cached") == "true" {
		snap, ok := h.weather.Peek()
		resp := core.APIResponse{Meta: map[string]any{"cached": ok}}
		if ok {
			resp.Data = snap
		}
		core.JSON(w, r, http.StatusOK, resp)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: h.weather.Current(r.Context())})
}

// HandleHotspots handles GET /v1/hotspots. Counts reflect the loaded pattern
// summary where it names the dong.
func (h *ConditionsHandler) HandleHotspots(w http.ResponseWriter, r *http.Request) {
	list := h.hotspots.Hotspots()
	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: list,
		Meta: map[string]any{"count": len(list)},
	})
}

type gridQuery struct {
	Lat float64 `json:"lat" validate:"korea_lat"`
	Lon float64 `json:"lon" validate:"korea_lon"`
}

// NearbyHotspot is a hotspot with its distance from the queried point.
type NearbyHotspot struct {
	prediction.Hotspot
	DistanceKm float64 `json:"distance_km"`
}

// GridResponse is the body of GET /v1/grid.
type GridResponse struct {
	Lat            float64        `json:"lat"`
	Lon            float64        `json:"lon"`
	NX             int            `json:"nx"`
	NY             int            `json:"ny"`
	InRange        bool           `json:"in_range"`
	NearestHotspot *NearbyHotspot `json:"nearest_hotspot,omitempty"`
	forecasts.Slot
}

// HandleGrid handles GET /v1/grid?lat=&lon=. It reports the grid cell and
// the issuance slot a feed request made now would use.
func (h *ConditionsHandler) HandleGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := parseCoordinate(q.Get("lat"), "lat", types.ErrCodeValidationInvalidLat)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	lon, err := parseCoordinate(q.Get("lon"), "lon", types.ErrCodeValidationInvalidLon)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(gridQuery{Lat: lat, Lon: lon}); err != nil {
		core.Error(w, r, err)
		return
	}

	cell := forecasts.ToGrid(lat, lon)
	resp := GridResponse{
		Lat:     lat,
		Lon:     lon,
		NX:      cell.NX,
		NY:      cell.NY,
		InRange: cell.InRange(),
		Slot:    forecasts.IssuanceSlot(h.clock.Now()),
	}
	if hs, km, ok := h.hotspots.Nearest(lat, lon); ok {
		resp.NearestHotspot = &NearbyHotspot{Hotspot: hs, DistanceKm: math.Round(km*1000) / 1000}
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

func parseCoordinate(raw, name string, code types.ErrorCode) (float64, error) {
	if raw == "" {
		return 0, types.NewAppError(types.ErrCodeValidationMissingField, name+" query parameter is required", nil)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, types.NewAppError(code, name+" must be a valid number", err)
	}
	return v, nil
}
