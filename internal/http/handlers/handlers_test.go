package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "parkhub/internal/http"
	"parkhub/internal/models"
	"parkhub/internal/repository"
	"parkhub/internal/service"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

// stubSessionRepo is a minimal in-memory ledger for handler tests.
type stubSessionRepo struct {
	sessions map[string]models.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]models.Session)}
}

func (r *stubSessionRepo) Create(ctx context.Context, s *models.Session) error {
	r.sessions[s.Token] = *s
	return nil
}

func (r *stubSessionRepo) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	s, ok := r.sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := s
	return &copied, nil
}

func (r *stubSessionRepo) GetActiveByPlate(ctx context.Context, plate string) (*models.Session, error) {
	for _, s := range r.sessions {
		if s.Plate == plate && s.ExitTime == nil {
			copied := s
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubSessionRepo) ListActive(ctx context.Context) ([]models.Session, error) {
	var active []models.Session
	for _, s := range r.sessions {
		if s.ExitTime == nil {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Token < active[j].Token })
	return active, nil
}

func (r *stubSessionRepo) CountActiveByType(ctx context.Context, vehicleType string) (int, error) {
	count := 0
	for _, s := range r.sessions {
		if s.VehicleType == vehicleType && s.ExitTime == nil {
			count++
		}
	}
	return count, nil
}

func (r *stubSessionRepo) UpdateEntryTime(ctx context.Context, token string, entryTime time.Time) error {
	s, ok := r.sessions[token]
	if !ok || s.ExitTime != nil {
		return repository.ErrNotFound
	}
	s.EntryTime = entryTime
	r.sessions[token] = s
	return nil
}

func (r *stubSessionRepo) Close(ctx context.Context, token string, exitTime time.Time, amount float64) error {
	s, ok := r.sessions[token]
	if !ok || s.ExitTime != nil {
		return repository.ErrNotFound
	}
	s.ExitTime = &exitTime
	s.AmountPaid = &amount
	r.sessions[token] = s
	return nil
}

func (r *stubSessionRepo) onDay(day time.Time, pick func(models.Session) *time.Time) []models.Session {
	var matched []models.Session
	for _, s := range r.sessions {
		ts := pick(s)
		if ts == nil {
			continue
		}
		y1, m1, d1 := ts.In(day.Location()).Date()
		y2, m2, d2 := day.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			matched = append(matched, s)
		}
	}
	return matched
}

func (r *stubSessionRepo) ListEnteredOn(ctx context.Context, day time.Time) ([]models.Session, error) {
	return r.onDay(day, func(s models.Session) *time.Time { entry := s.EntryTime; return &entry }), nil
}

func (r *stubSessionRepo) ListExitedOn(ctx context.Context, day time.Time) ([]models.Session, error) {
	return r.onDay(day, func(s models.Session) *time.Time { return s.ExitTime }), nil
}

// stubRateRepo is a minimal in-memory rate table for handler tests.
type stubRateRepo struct {
	nextID int64
	rates  map[int64]models.Rate
}

func newStubRateRepo() *stubRateRepo {
	return &stubRateRepo{rates: make(map[int64]models.Rate)}
}

func (r *stubRateRepo) add(vehicleType string, hourlyRate float64) models.Rate {
	r.nextID++
	rate := models.Rate{ID: r.nextID, VehicleType: vehicleType, HourlyRate: hourlyRate}
	r.rates[rate.ID] = rate
	return rate
}

func (r *stubRateRepo) List(ctx context.Context) ([]models.Rate, error) {
	var rates []models.Rate
	for _, rate := range r.rates {
		rates = append(rates, rate)
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].ID < rates[j].ID })
	return rates, nil
}

func (r *stubRateRepo) GetByID(ctx context.Context, id int64) (*models.Rate, error) {
	rate, ok := r.rates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := rate
	return &copied, nil
}

func (r *stubRateRepo) GetByType(ctx context.Context, vehicleType string) (*models.Rate, error) {
	for _, rate := range r.rates {
		if rate.VehicleType == vehicleType {
			copied := rate
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubRateRepo) Create(ctx context.Context, rate *models.Rate) error {
	r.nextID++
	rate.ID = r.nextID
	r.rates[rate.ID] = *rate
	return nil
}

func (r *stubRateRepo) Update(ctx context.Context, rate *models.Rate) error {
	if _, ok := r.rates[rate.ID]; !ok {
		return repository.ErrNotFound
	}
	r.rates[rate.ID] = *rate
	return nil
}

func (r *stubRateRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.rates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rates, id)
	return nil
}

type stubArtifacts struct{}

func (stubArtifacts) Generate(token string) (string, error) {
	return "/static/qrs/" + token + ".png", nil
}

type apiFixture struct {
	router   http.Handler
	sessions *stubSessionRepo
	rates    *stubRateRepo
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	sessions := newStubSessionRepo()
	rates := newStubRateRepo()
	rates.add("Auto", 20)
	rates.add("Moto", 10)

	n := 0
	tokenGen := func() string {
		n++
		return fmt.Sprintf("tok-%d", n)
	}
	now := func() time.Time { return testNow }

	sessionsService := service.NewSessionsService(sessions, rates, nil, stubArtifacts{}, tokenGen, now, nil)
	ratesService := service.NewRatesService(rates, sessions, nil)
	dashboardService := service.NewDashboardService(sessions, now, nil)

	validate := validator.New()
	router := httpserver.NewRouter(httpserver.Routes{
		Entry:             NewEntryHandler(sessionsService, validate),
		Verify:            NewVerifyHandler(sessionsService),
		Exit:              NewExitHandler(sessionsService, validate),
		UpdateSession:     NewUpdateSessionHandler(sessionsService, validate),
		CalculatorSearch:  NewCalculatorSearchHandler(sessionsService),
		ListVehicleTypes:  NewListVehicleTypesHandler(ratesService),
		CreateVehicleType: NewCreateVehicleTypeHandler(ratesService, validate),
		UpdateVehicleType: NewUpdateVehicleTypeHandler(ratesService, validate),
		DeleteVehicleType: NewDeleteVehicleTypeHandler(ratesService),
		Dashboard:         NewDashboardHandler(dashboardService),
		Health:            NewHealthHandler(),
	})

	return &apiFixture{router: router, sessions: sessions, rates: rates}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func TestEntryEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec, payload := f.do(t, http.MethodPost, "/api/entry", map[string]string{
		"plate":        "ABC-123",
		"vehicle_type": "Auto",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-1", payload["token"])
	assert.Equal(t, "/static/qrs/tok-1.png", payload["qr_url"])
}

func TestEntryEndpointMissingFields(t *testing.T) {
	f := newAPIFixture(t)

	rec, payload := f.do(t, http.MethodPost, "/api/entry", map[string]string{"plate": "ABC-123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing data", payload["error"])
}

func TestVerifyEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.sessions.Create(context.Background(), &models.Session{
		Token: "tok-v", Plate: "VRF-1", VehicleType: "Auto",
		EntryTime: testNow.Add(-45 * time.Minute),
	})

	rec, payload := f.do(t, http.MethodGet, "/api/verify/tok-v", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "VRF-1", payload["plate"])
	assert.Equal(t, "Auto", payload["vehicle_type"])
	assert.InDelta(t, 0.75, payload["duration_hours"].(float64), 0.001)
	assert.InDelta(t, 20.0, payload["amount"].(float64), 0.001)
}

func TestVerifyEndpointClosedSession(t *testing.T) {
	f := newAPIFixture(t)
	exit := testNow.Add(-time.Hour)
	paid := 40.0
	f.sessions.Create(context.Background(), &models.Session{
		Token: "tok-c", Plate: "CLS-1", VehicleType: "Auto",
		EntryTime: testNow.Add(-3 * time.Hour), ExitTime: &exit, AmountPaid: &paid,
	})

	rec, payload := f.do(t, http.MethodGet, "/api/verify/tok-c", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Session already closed", payload["error"])
	assert.Equal(t, "conflict", payload["code"])
	assert.InDelta(t, 40.0, payload["amount_paid"].(float64), 0.001)
}

func TestVerifyEndpointNotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec, payload := f.do(t, http.MethodGet, "/api/verify/tok-none", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", payload["code"])
}

func TestCalculatorSearchEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.sessions.Create(context.Background(), &models.Session{
		Token: "tok-s", Plate: "SRC-1", VehicleType: "Moto",
		EntryTime: testNow.Add(-90 * time.Minute),
	})

	rec, payload := f.do(t, http.MethodGet, "/api/calculator/search?plate=SRC-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-s", payload["token"])
	assert.InDelta(t, 1.5, payload["duration_hours"].(float64), 0.001)
	assert.InDelta(t, 15.0, payload["amount"].(float64), 0.001)

	rec, payload = f.do(t, http.MethodGet, "/api/calculator/search", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing plate parameter", payload["error"])
}

func TestExitEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.sessions.Create(context.Background(), &models.Session{
		Token: "tok-x", Plate: "EXT-1", VehicleType: "Auto",
		EntryTime: testNow.Add(-2 * time.Hour),
	})

	rec, payload := f.do(t, http.MethodPost, "/api/exit", map[string]string{"token": "tok-x"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Exit confirmed", payload["message"])
	assert.InDelta(t, 40.0, payload["amount_paid"].(float64), 0.001)

	// a second exit is rejected but still reports the frozen amount
	rec, payload = f.do(t, http.MethodPost, "/api/exit", map[string]string{"token": "tok-x"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", payload["code"])
	assert.InDelta(t, 40.0, payload["amount_paid"].(float64), 0.001)
}

func TestUpdateSessionEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.sessions.Create(context.Background(), &models.Session{
		Token: "tok-u", Plate: "UPD-1", VehicleType: "Auto",
		EntryTime: testNow.Add(-time.Hour),
	})

	newEntry := testNow.Add(-30 * time.Minute).Format(time.RFC3339)
	rec, payload := f.do(t, http.MethodPut, "/api/sessions/tok-u", map[string]string{"entry_time": newEntry})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Entry time updated", payload["message"])

	rec, payload = f.do(t, http.MethodPut, "/api/sessions/tok-u", map[string]string{
		"entry_time": testNow.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Entry time cannot be in the future", payload["error"])
}

func TestVehicleTypesEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	f.sessions.Create(context.Background(), &models.Session{
		Token: "tok-a", Plate: "ACT-1", VehicleType: "Auto", EntryTime: testNow,
	})

	rec, _ := f.do(t, http.MethodGet, "/api/vehicle-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Auto", listed[0]["vehicle_type"])
	assert.InDelta(t, 1.0, listed[0]["active_sessions"].(float64), 0.001)

	rec, payload := f.do(t, http.MethodPost, "/api/vehicle-types", map[string]interface{}{
		"vehicle_type": "Camion", "hourly_rate": 35.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Camion", payload["vehicle_type"])

	rec, payload = f.do(t, http.MethodPost, "/api/vehicle-types", map[string]interface{}{
		"vehicle_type": "Camion", "hourly_rate": 1.0,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Vehicle type already exists", payload["error"])

	rec, payload = f.do(t, http.MethodPost, "/api/vehicle-types", map[string]interface{}{"vehicle_type": "Bus"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", payload["error"])

	// Auto has an open session, delete is blocked; Moto deletes fine
	rec, payload = f.do(t, http.MethodDelete, "/api/vehicle-types/1", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Cannot delete: active sessions exist", payload["error"])

	rec, payload = f.do(t, http.MethodDelete, "/api/vehicle-types/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Vehicle type deleted successfully", payload["message"])

	rec, _ = f.do(t, http.MethodDelete, "/api/vehicle-types/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	exit := testNow.Add(-time.Hour)
	paid := 40.0
	f.sessions.Create(context.Background(), &models.Session{
		Token: "tok-d1", Plate: "DSH-1", VehicleType: "Auto",
		EntryTime: testNow.Add(-3 * time.Hour), ExitTime: &exit, AmountPaid: &paid,
	})
	f.sessions.Create(context.Background(), &models.Session{
		Token: "tok-d2", Plate: "DSH-2", VehicleType: "Moto", EntryTime: testNow.Add(-time.Hour),
	})

	rec, payload := f.do(t, http.MethodGet, "/api/dashboard?date="+testNow.Format("2006-01-02"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 2.0, payload["entries_count"].(float64), 0.001)
	assert.InDelta(t, 1.0, payload["exits_count"].(float64), 0.001)
	assert.InDelta(t, 40.0, payload["total_revenue"].(float64), 0.001)
	assert.Len(t, payload["active_vehicles"], 1)
	assert.Len(t, payload["stats_by_type"], 2)

	rec, payload = f.do(t, http.MethodGet, "/api/dashboard?date=bogus", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", payload["code"])
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec, payload := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])
}
