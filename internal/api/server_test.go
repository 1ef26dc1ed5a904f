package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skytycoon/internal/auth"
	"skytycoon/internal/game"
	"skytycoon/internal/models"
	"skytycoon/internal/store"
)

var testNow = time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T, opts Options) http.Handler {
	t.Helper()
	st := store.NewMemStore()
	airports, err := game.DefaultAirports()
	if err != nil {
		t.Fatalf("default airports: %v", err)
	}
	if _, err := game.SeedAirports(context.Background(), st, airports); err != nil {
		t.Fatalf("seed airports: %v", err)
	}
	engine := game.NewEngine(st,
		game.WithRand(rand.New(rand.NewSource(7))),
		game.WithClock(func() time.Time { return testNow }),
	)
	return New(engine, opts)
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, want, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, Options{})
	for _, path := range []string{"/health", "/api/health"} {
		rec := do(t, h, http.MethodGet, path, nil, "")
		expectStatus(t, rec, http.StatusOK)
		if body := decodeBody[map[string]string](t, rec); body["status"] != "ok" {
			t.Fatalf("unexpected health body %v", body)
		}
	}
}

func TestGameFlow(t *testing.T) {
	h := newTestHandler(t, Options{})

	rec := do(t, h, http.MethodPost, "/api/players", map[string]string{"username": "skyline", "password": "secret-pw"}, "")
	expectStatus(t, rec, http.StatusCreated)
	p := decodeBody[models.Player](t, rec)
	if p.Money.String() != "10000000.00" || p.Hub != "JFK" {
		t.Fatalf("unexpected player %+v", p)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password leaked: %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/api/players", map[string]string{"username": "skyline", "password": "another-pw"}, "")
	expectStatus(t, rec, http.StatusConflict)

	rec = do(t, h, http.MethodPost, "/api/aircraft", map[string]any{"playerId": p.ID, "model": "A320neo"}, "")
	expectStatus(t, rec, http.StatusBadRequest)
	if body := decodeBody[errorResponse](t, rec); body.Error != "insufficient_funds" || body.Code != 400 {
		t.Fatalf("unexpected error body %+v", body)
	}

	rec = do(t, h, http.MethodPost, "/api/transactions", map[string]any{
		"playerId": p.ID, "amount": "100000000", "type": "revenue", "description": "Series A",
	}, "")
	expectStatus(t, rec, http.StatusCreated)

	rec = do(t, h, http.MethodPost, "/api/aircraft", map[string]any{"playerId": p.ID, "model": "A320neo", "hasWifi": true}, "")
	expectStatus(t, rec, http.StatusCreated)
	ac := decodeBody[models.Aircraft](t, rec)
	if ac.Capacity != 180 || !ac.HasWifi {
		t.Fatalf("unexpected aircraft %+v", ac)
	}

	rec = do(t, h, http.MethodPost, "/api/routes", map[string]any{"playerId": p.ID, "originCode": "jfk", "destinationCode": "lhr"}, "")
	expectStatus(t, rec, http.StatusCreated)
	rt := decodeBody[models.Route](t, rec)
	if rt.Distance != 5540 || rt.Demand != 48 {
		t.Fatalf("unexpected route %+v", rt)
	}
	rec = do(t, h, http.MethodPost, "/api/routes", map[string]any{"playerId": p.ID, "originCode": "JFK", "destinationCode": "LHR"}, "")
	expectStatus(t, rec, http.StatusConflict)

	rec = do(t, h, http.MethodPost, "/api/flights", map[string]any{
		"playerId": p.ID, "routeId": rt.ID, "aircraftId": ac.ID,
		"departureDate": "2025-01-10", "departureTime": "08:00",
	}, "")
	expectStatus(t, rec, http.StatusCreated)
	f := decodeBody[models.Flight](t, rec)
	if f.ArrivalTime != "14:52" || f.Status != models.FlightScheduled {
		t.Fatalf("unexpected flight %+v", f)
	}

	rec = do(t, h, http.MethodGet, "/api/flights/player/1/upcoming", nil, "")
	expectStatus(t, rec, http.StatusOK)
	if upcoming := decodeBody[[]models.Flight](t, rec); len(upcoming) != 1 {
		t.Fatalf("expected one upcoming flight, got %d", len(upcoming))
	}

	rec = do(t, h, http.MethodPost, "/api/game/1/advance-day", nil, "")
	expectStatus(t, rec, http.StatusOK)
	day := decodeBody[game.DayResult](t, rec)
	if day.CompletedFlights != 1 || !day.Revenue.Equal(f.Profit().Decimal) {
		t.Fatalf("unexpected day result %+v", day)
	}
	if day.Player.CurrentDate.String() != "2025-01-11" {
		t.Fatalf("date = %s", day.Player.CurrentDate)
	}
	want := models.MustMoney("110000000").Minus(ac.PurchasePrice).Plus(f.Profit())
	if !day.Player.Money.Equal(want.Decimal) {
		t.Fatalf("money = %s, want %s", day.Player.Money, want)
	}

	rec = do(t, h, http.MethodGet, "/api/transactions/player/1", nil, "")
	expectStatus(t, rec, http.StatusOK)
	txs := decodeBody[[]models.Transaction](t, rec)
	if len(txs) != 3 || txs[0].Type != models.TransactionRevenue || txs[0].Date.String() != "2025-01-11" {
		t.Fatalf("unexpected ledger %+v", txs)
	}

	rec = do(t, h, http.MethodGet, "/api/transactions/player/1/statement", nil, "")
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("statement is not a PDF")
	}

	rec = do(t, h, http.MethodGet, "/api/game/1/events", nil, "")
	expectStatus(t, rec, http.StatusOK)
	if evs := decodeBody[[]map[string]any](t, rec); len(evs) == 0 || evs[len(evs)-1]["kind"] != "day.advanced" {
		t.Fatalf("unexpected events %v", evs)
	}

	rec = do(t, h, http.MethodPost, "/api/game/1/save", nil, "")
	expectStatus(t, rec, http.StatusOK)
}

func TestValidationIssues(t *testing.T) {
	h := newTestHandler(t, Options{})

	rec := do(t, h, http.MethodPost, "/api/players", map[string]string{"username": "ab", "difficulty": "insane"}, "")
	expectStatus(t, rec, http.StatusBadRequest)
	body := decodeBody[errorResponse](t, rec)
	fields := map[string]string{}
	for _, is := range body.Issues {
		fields[is.Field] = is.Message
	}
	if body.Error != "validation" || fields["username"] == "" || fields["password"] != "is required" || fields["difficulty"] == "" {
		t.Fatalf("unexpected issues %+v", body)
	}

	rec = do(t, h, http.MethodPost, "/api/flights", map[string]any{
		"playerId": 1, "routeId": 1, "aircraftId": 1, "departureDate": "10/01/2025", "departureTime": "8pm",
	}, "")
	expectStatus(t, rec, http.StatusBadRequest)
	body = decodeBody[errorResponse](t, rec)
	if len(body.Issues) != 2 || body.Issues[0].Field != "departureDate" || body.Issues[1].Message != "must be a time formatted HH:MM" {
		t.Fatalf("unexpected issues %+v", body.Issues)
	}

	rec = do(t, h, http.MethodPost, "/api/transactions", map[string]any{"playerId": 1, "amount": "lots", "type": "revenue"}, "")
	expectStatus(t, rec, http.StatusBadRequest)

	rec = do(t, h, http.MethodPost, "/api/transactions", map[string]any{"playerId": 1, "amount": "0.005", "type": "revenue"}, "")
	expectStatus(t, rec, http.StatusBadRequest)
	body = decodeBody[errorResponse](t, rec)
	if len(body.Issues) != 1 || body.Issues[0].Field != "amount" {
		t.Fatalf("unexpected issues %+v", body.Issues)
	}

	rec = do(t, h, http.MethodGet, "/api/players/abc", nil, "")
	expectStatus(t, rec, http.StatusBadRequest)

	req := httptest.NewRequest(http.MethodPost, "/api/routes", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	expectStatus(t, rr, http.StatusBadRequest)
}

func TestNotFound(t *testing.T) {
	h := newTestHandler(t, Options{})

	rec := do(t, h, http.MethodGet, "/api/airports/XXX", nil, "")
	expectStatus(t, rec, http.StatusNotFound)
	if body := decodeBody[errorResponse](t, rec); body.Error != "not_found" || body.Code != 404 {
		t.Fatalf("unexpected body %+v", body)
	}
	expectStatus(t, do(t, h, http.MethodPost, "/api/game/42/advance-day", nil, ""), http.StatusNotFound)
	expectStatus(t, do(t, h, http.MethodGet, "/api/players/42", nil, ""), http.StatusNotFound)

	rec = do(t, h, http.MethodGet, "/api/airports/lhr", nil, "")
	expectStatus(t, rec, http.StatusOK)
	if ap := decodeBody[models.Airport](t, rec); ap.Code != "LHR" || ap.LandingFee.String() != "27000.00" {
		t.Fatalf("unexpected airport %+v", ap)
	}
}

func TestFlightStatusPatch(t *testing.T) {
	h := newTestHandler(t, Options{})
	do(t, h, http.MethodPost, "/api/players", map[string]string{"username": "skyline", "password": "secret-pw"}, "")
	do(t, h, http.MethodPost, "/api/transactions", map[string]any{"playerId": 1, "amount": "100000000", "type": "revenue"}, "")
	do(t, h, http.MethodPost, "/api/aircraft", map[string]any{"playerId": 1, "model": "A320neo"}, "")
	do(t, h, http.MethodPost, "/api/routes", map[string]any{"playerId": 1, "originCode": "JFK", "destinationCode": "CDG"}, "")
	rec := do(t, h, http.MethodPost, "/api/flights", map[string]any{
		"playerId": 1, "routeId": 1, "aircraftId": 1, "departureDate": "2025-01-12", "departureTime": "10:00",
	}, "")
	expectStatus(t, rec, http.StatusCreated)

	expectStatus(t, do(t, h, http.MethodPatch, "/api/flights/1", map[string]string{"status": "completed"}, ""), http.StatusBadRequest)
	expectStatus(t, do(t, h, http.MethodPatch, "/api/flights/1", map[string]string{"status": "landed"}, ""), http.StatusBadRequest)

	rec = do(t, h, http.MethodPatch, "/api/flights/1", map[string]string{"status": "cancelled"}, "")
	expectStatus(t, rec, http.StatusOK)
	if f := decodeBody[models.Flight](t, rec); f.Status != models.FlightCancelled {
		t.Fatalf("status = %s", f.Status)
	}
	expectStatus(t, do(t, h, http.MethodPatch, "/api/flights/1", map[string]string{"status": "scheduled"}, ""), http.StatusConflict)

	rec = do(t, h, http.MethodPatch, "/api/aircraft/1", map[string]any{"status": "maintenance", "hasPremiumSeating": true}, "")
	expectStatus(t, rec, http.StatusOK)
	if ac := decodeBody[models.Aircraft](t, rec); ac.Status != models.AircraftMaintenance || !ac.HasPremiumSeating {
		t.Fatalf("unexpected aircraft %+v", ac)
	}

	rec = do(t, h, http.MethodPatch, "/api/players/1", map[string]any{"hub": "DXB", "money": "999999999999"}, "")
	expectStatus(t, rec, http.StatusOK)
	if p := decodeBody[models.Player](t, rec); p.Hub != "DXB" || p.Money.String() == "999999999999.00" {
		t.Fatalf("unexpected player %+v", p)
	}
}

func TestRouteAnalysisEndpoint(t *testing.T) {
	h := newTestHandler(t, Options{})
	rec := do(t, h, http.MethodPost, "/api/routes/analysis", map[string]any{"origin": "JFK", "destination": "LHR"}, "")
	expectStatus(t, rec, http.StatusOK)
	a := decodeBody[game.RouteAnalysis](t, rec)
	if len(a.Results) != 2 || !a.Results[0].Valid || a.Results[0].Model != "A330300" {
		t.Fatalf("unexpected analysis %+v", a)
	}

	rec = do(t, h, http.MethodGet, "/api/aircraft/models", nil, "")
	expectStatus(t, rec, http.StatusOK)
	if list := decodeBody[[]models.AircraftModel](t, rec); len(list) != 2 {
		t.Fatalf("expected 2 catalog models, got %d", len(list))
	}
}

func TestAuthentication(t *testing.T) {
	tokens := auth.NewTokens(strings.Repeat("s", 32), time.Hour)
	h := newTestHandler(t, Options{Tokens: tokens})

	expectStatus(t, do(t, h, http.MethodPost, "/api/players", map[string]string{"username": "alice", "password": "alice-pw"}, ""), http.StatusCreated)
	expectStatus(t, do(t, h, http.MethodPost, "/api/players", map[string]string{"username": "bob", "password": "bob-pw-1"}, ""), http.StatusCreated)

	expectStatus(t, do(t, h, http.MethodGet, "/api/players/1", nil, ""), http.StatusUnauthorized)
	expectStatus(t, do(t, h, http.MethodGet, "/api/players/1", nil, "garbage"), http.StatusUnauthorized)
	expectStatus(t, do(t, h, http.MethodPost, "/api/sessions", map[string]string{"username": "alice", "password": "wrong-pw"}, ""), http.StatusUnauthorized)

	rec := do(t, h, http.MethodPost, "/api/sessions", map[string]string{"username": "alice", "password": "alice-pw"}, "")
	expectStatus(t, rec, http.StatusOK)
	session := decodeBody[sessionResponse](t, rec)
	if session.Token == "" || session.ExpiresAt == nil || session.Player.ID != 1 {
		t.Fatalf("unexpected session %+v", session)
	}

	expectStatus(t, do(t, h, http.MethodGet, "/api/players/1", nil, session.Token), http.StatusOK)
	expectStatus(t, do(t, h, http.MethodGet, "/api/players/2", nil, session.Token), http.StatusForbidden)
	expectStatus(t, do(t, h, http.MethodPost, "/api/game/2/advance-day", nil, session.Token), http.StatusForbidden)
	expectStatus(t, do(t, h, http.MethodPost, "/api/transactions", map[string]any{"playerId": 2, "amount": "1", "type": "revenue"}, session.Token), http.StatusForbidden)

	expectStatus(t, do(t, h, http.MethodGet, "/api/airports", nil, ""), http.StatusOK)
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0.01, BurstSize: 1})
	h := newTestHandler(t, Options{Limiter: limiter})

	expectStatus(t, do(t, h, http.MethodGet, "/health", nil, ""), http.StatusOK)
	rec := do(t, h, http.MethodGet, "/health", nil, "")
	expectStatus(t, rec, http.StatusTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Cleanup(ctx, time.Minute); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
