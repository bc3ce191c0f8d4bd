package handler

import (
	"context"
	"maps"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/skytrack/pkg/validator"
)

type AircraftService interface {
	Snapshot(ctx context.Context) ([]models.AircraftPosition, error)
	SnapshotNear(ctx context.Context, center models.Position, radiusKm float64) ([]models.AircraftPosition, error)
	Get(ctx context.Context, icao string) (*models.AircraftState, error)
}

type Aircraft struct {
	service     AircraftService
	allowOrigin string
	l           logger.Logger
}

func NewAircraft(service AircraftService, allowOrigin string, l logger.Logger) *Aircraft {
	return &Aircraft{
		service:     service,
		allowOrigin: allowOrigin,
		l:           l,
	}
}

// ListAircraft godoc
// @Summary      Aircraft snapshot
// @Description  Returns every aircraft whose latitude, longitude and heading were reported within the window
// @Tags         Aircraft
// @Produce      json
// @Param        lat        query     number  false  "Center latitude"
// @Param        lon        query     number  false  "Center longitude"
// @Param        radius_km  query     number  false  "Radius around the center in km"
// @Success      200  {array}   models.AircraftPosition
// @Failure      422  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /aircraft [get]
func (h *Aircraft) ListAircraft(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_aircraft")

	headers := h.corsHeaders()

	center, radius, near, errs := parseNear(r.URL.Query())
	if errs != nil {
		maps.Copy(w.Header(), headers)
		failedValidationResponse(w, errs)
		return
	}

	var (
		positions []models.AircraftPosition
		err       error
	)
	if near {
		positions, err = h.service.SnapshotNear(ctx, center, radius)
	} else {
		positions, err = h.service.Snapshot(ctx)
	}
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to load aircraft", err)
		maps.Copy(w.Header(), headers)
		errorCodeResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, positions, headers); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// GetAircraft godoc
// @Summary      Aircraft state
// @Description  Returns the latest known state of one aircraft
// @Tags         Aircraft
// @Produce      json
// @Param        icao  path      string  true  "ICAO address"
// @Success      200   {object}  map[string]models.AircraftState
// @Failure      404   {object}  map[string]string
// @Router       /aircraft/{icao} [get]
func (h *Aircraft) GetAircraft(w http.ResponseWriter, r *http.Request) {
	icao := r.PathValue("icao")
	ctx := wrap.WithIcaoAddress(wrap.WithAction(r.Context(), "get_aircraft"), icao)

	state, err := h.service.Get(ctx, icao)
	if err != nil {
		if GetCode(err) >= http.StatusInternalServerError {
			h.l.Error(wrap.ErrorCtx(ctx, err), "failed to load aircraft", err)
		}
		errorCodeResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"aircraft": state}, h.corsHeaders()); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// parseNear reads the optional lat, lon and radius_km filter. All three must be
// given together.
func parseNear(q url.Values) (models.Position, float64, bool, map[string]string) {
	if !q.Has("lat") && !q.Has("lon") && !q.Has("radius_km") {
		return models.Position{}, 0, false, nil
	}

	v := validator.New()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
	radius, radiusErr := strconv.ParseFloat(q.Get("radius_km"), 64)

	v.Check(latErr == nil && lat >= -90 && lat <= 90, "lat", "must be a number between -90 and 90")
	v.Check(lonErr == nil && lon >= -180 && lon <= 180, "lon", "must be a number between -180 and 180")
	v.Check(radiusErr == nil && radius > 0 && !math.IsInf(radius, 0), "radius_km", "must be a positive number")
	if !v.Valid() {
		return models.Position{}, 0, false, v.Errors
	}

	return models.Position{Latitude: lat, Longitude: lon}, radius, true, nil
}

func (h *Aircraft) corsHeaders() http.Header {
	headers := http.Header{}
	if h.allowOrigin != "" {
		headers.Set("Access-Control-Allow-Origin", h.allowOrigin)
	}
	return headers
}
