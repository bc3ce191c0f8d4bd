package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/internal/service/ingest"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	ws "github.com/Temutjin2k/skytrack/pkg/wsHub"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type fakeAircraft struct {
	positions []models.AircraftPosition
	states    map[string]*models.AircraftState
	err       error

	center models.Position
	radius float64
}

func (f *fakeAircraft) Snapshot(ctx context.Context) ([]models.AircraftPosition, error) {
	return f.positions, f.err
}

func (f *fakeAircraft) SnapshotNear(ctx context.Context, center models.Position, radiusKm float64) ([]models.AircraftPosition, error) {
	f.center, f.radius = center, radiusKm
	return f.positions, f.err
}

func (f *fakeAircraft) Get(ctx context.Context, icao string) (*models.AircraftState, error) {
	if s, ok := f.states[icao]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("aircraft.Get: %w", types.ErrNotFound)
}

func TestListAircraft(t *testing.T) {
	svc := &fakeAircraft{positions: []models.AircraftPosition{
		{IcaoAddress: "3C6444", Latitude: 50.1, Longitude: 8.6, Heading: 270},
	}}
	h := NewAircraft(svc, "http://[::1]", logger.Discard())

	rec := httptest.NewRecorder()
	h.ListAircraft(rec, httptest.NewRequest(http.MethodGet, "/aircraft", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://[::1]" {
		t.Errorf("allow origin = %q", got)
	}

	var got []models.AircraftPosition
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("body is not an array: %v", err)
	}
	if len(got) != 1 || got[0].IcaoAddress != "3C6444" || got[0].Heading != 270 {
		t.Errorf("body = %+v", got)
	}
}

func TestListAircraft_Empty(t *testing.T) {
	h := NewAircraft(&fakeAircraft{positions: []models.AircraftPosition{}}, "", logger.Discard())

	rec := httptest.NewRecorder()
	h.ListAircraft(rec, httptest.NewRequest(http.MethodGet, "/aircraft", nil))

	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestListAircraft_StoreDown(t *testing.T) {
	svc := &fakeAircraft{err: fmt.Errorf("query: %w", types.ErrDatabaseFailed)}
	h := NewAircraft(svc, "*", logger.Discard())

	rec := httptest.NewRecorder()
	h.ListAircraft(rec, httptest.NewRequest(http.MethodGet, "/aircraft", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "query") {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
}

func TestListAircraft_Near(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"?lat=50.03&lon=8.56&radius_km=100", http.StatusOK},
		{"?lat=50.03&lon=8.56", http.StatusUnprocessableEntity},
		{"?lat=91&lon=8.56&radius_km=10", http.StatusUnprocessableEntity},
		{"?lat=50&lon=abc&radius_km=10", http.StatusUnprocessableEntity},
		{"?lat=50&lon=8&radius_km=-1", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		svc := &fakeAircraft{positions: []models.AircraftPosition{}}
		h := NewAircraft(svc, "*", logger.Discard())

		rec := httptest.NewRecorder()
		h.ListAircraft(rec, httptest.NewRequest(http.MethodGet, "/aircraft"+tt.query, nil))

		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.query, rec.Code, tt.want)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("%s: missing allow origin header", tt.query)
		}
		if tt.want == http.StatusOK && (svc.center.Latitude != 50.03 || svc.radius != 100) {
			t.Errorf("%s: filter not passed, center %+v radius %v", tt.query, svc.center, svc.radius)
		}
	}
}

func TestGetAircraft(t *testing.T) {
	svc := &fakeAircraft{states: map[string]*models.AircraftState{
		"3C6444": {IcaoAddress: "3C6444"},
	}}
	h := NewAircraft(svc, "", logger.Discard())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /aircraft/{icao}", h.GetAircraft)

	tests := []struct {
		path string
		want int
	}{
		{"/aircraft/3C6444", http.StatusOK},
		{"/aircraft/ABCDEF", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

type fakeIngest struct {
	got []models.PositionMessage
	err error
}

func (f *fakeIngest) AcceptBatch(ctx context.Context, source types.MessageSource, msgs []models.PositionMessage) (ingest.BatchResult, error) {
	f.got = append(f.got, msgs...)
	if f.err != nil {
		return ingest.BatchResult{}, f.err
	}
	return ingest.BatchResult{Accepted: len(msgs)}, nil
}

type fakeLimiter struct{ allow bool }

func (f fakeLimiter) AllowN(string, int) bool { return f.allow }

func ingestRequest(body string, withFeeder bool) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/ingest/messages", strings.NewReader(body))
	if withFeeder {
		r = r.WithContext(models.WithFeeder(r.Context(), &models.Feeder{ID: "pi-1", Role: types.RoleFeeder}))
	}
	return r
}

func TestUploadMessages(t *testing.T) {
	const valid = `[{"IcaoAddress":"3c6444","Date":"2024/05/01","Time":"12:00:00.000","Latitude":50.1,"Longitude":8.6,"Heading":90}]`

	tests := []struct {
		name       string
		body       string
		withFeeder bool
		allow      bool
		svcErr     error
		want       int
	}{
		{name: "accepted", body: valid, withFeeder: true, allow: true, want: http.StatusAccepted},
		{name: "anonymous", body: valid, allow: true, want: http.StatusUnauthorized},
		{name: "broken json", body: `[{`, withFeeder: true, allow: true, want: http.StatusBadRequest},
		{name: "not an array", body: `{"IcaoAddress":"3C6444"}`, withFeeder: true, allow: true, want: http.StatusUnprocessableEntity},
		{name: "bad address", body: `[{"IcaoAddress":"xyz"}]`, withFeeder: true, allow: true, want: http.StatusUnprocessableEntity},
		{name: "unknown field", body: `[{"IcaoAddress":"3C6444","Foo":1}]`, withFeeder: true, allow: true, want: http.StatusUnprocessableEntity},
		{name: "heading out of range", body: `[{"IcaoAddress":"3C6444","Heading":360}]`, withFeeder: true, allow: true, want: http.StatusUnprocessableEntity},
		{name: "empty batch", body: `[]`, withFeeder: true, allow: true, want: http.StatusUnprocessableEntity},
		{name: "rate limited", body: valid, withFeeder: true, allow: false, want: http.StatusTooManyRequests},
		{name: "broker down", body: valid, withFeeder: true, allow: true, svcErr: types.ErrPublishFailed, want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeIngest{err: tt.svcErr}
			h := NewIngest(svc, fakeLimiter{allow: tt.allow}, logger.Discard())

			rec := httptest.NewRecorder()
			h.UploadMessages(rec, ingestRequest(tt.body, tt.withFeeder))

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestUploadMessages_DecodesBatch(t *testing.T) {
	svc := &fakeIngest{}
	h := NewIngest(svc, fakeLimiter{allow: true}, logger.Discard())

	body := `[{"IcaoAddress":"3C6444","FlightLevel":35000,"Squawk":"7000"},{"IcaoAddress":"4B1805","FlightCode":"SWR12"}]`
	rec := httptest.NewRecorder()
	h.UploadMessages(rec, ingestRequest(body, true))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(svc.got) != 2 {
		t.Fatalf("got %d messages, want 2", len(svc.got))
	}
	if svc.got[0].FlightLevel == nil || *svc.got[0].FlightLevel != 35000 {
		t.Errorf("flight level = %v", svc.got[0].FlightLevel)
	}
	if svc.got[1].FlightCode == nil || *svc.got[1].FlightCode != "SWR12" {
		t.Errorf("flight code = %v", svc.got[1].FlightCode)
	}

	var res ingest.BatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Accepted != 2 {
		t.Errorf("accepted = %d, want 2", res.Accepted)
	}
}

type fakeMarkers struct{ markers []models.Marker }

func (f fakeMarkers) Markers() []models.Marker { return f.markers }

func (f fakeMarkers) Snapshot() models.MarkerMessage {
	return models.MarkerMessage{EventType: types.EventMarkersSnapshot, Data: f.markers}
}

func TestMarkers(t *testing.T) {
	src := fakeMarkers{markers: []models.Marker{{Handle: models.Handle(uuid.New()), Label: "3C6444"}}}
	h := NewMap(src, ws.NewConnHub(logger.Discard()), logger.Discard())

	rec := httptest.NewRecorder()
	h.Markers(rec, httptest.NewRequest(http.MethodGet, "/markers", nil))

	var body struct {
		Markers []models.Marker `json:"markers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Markers) != 1 || body.Markers[0].Label != "3C6444" {
		t.Errorf("markers = %+v", body.Markers)
	}
}

func TestHandleWebSocket_SendsSnapshotThenEvents(t *testing.T) {
	src := fakeMarkers{markers: []models.Marker{{Handle: models.Handle(uuid.New()), Label: "3C6444"}}}
	hub := ws.NewConnHub(logger.Discard())
	h := NewMap(src, hub, logger.Discard())

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first struct {
		EventType types.MarkerEvent `json:"event_type"`
		Data      []models.Marker   `json:"data"`
	}
	if err := c.ReadJSON(&first); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if first.EventType != types.EventMarkersSnapshot || len(first.Data) != 1 {
		t.Fatalf("first message = %+v", first)
	}

	if n := hub.Broadcast(models.MarkerMessage{EventType: types.EventMarkerRemoved}); n != 1 {
		t.Fatalf("broadcast reached %d clients, want 1", n)
	}

	var next models.MarkerMessage
	if err := c.ReadJSON(&next); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if next.EventType != types.EventMarkerRemoved {
		t.Errorf("event = %s", next.EventType)
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", types.ErrNotFound), http.StatusNotFound},
		{types.ErrInvalidMessage, http.StatusUnprocessableEntity},
		{types.ErrRateLimited, http.StatusTooManyRequests},
		{types.ErrPublishFailed, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := GetCode(tt.err); got != tt.want {
			t.Errorf("GetCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
