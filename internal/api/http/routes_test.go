package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/surf-forecast/internal/auth"
	"github.com/i474232898/surf-forecast/internal/store"
	"github.com/i474232898/surf-forecast/internal/weather"
)

var testSecret = []byte("test-secret")

type stubProvider struct {
	points []weather.RawForecastPoint
	err    error
}

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) FetchPoints(_ context.Context, _, _ float64) ([]weather.RawForecastPoint, error) {
	return s.points, s.err
}

func newTestApp(t *testing.T, provider weather.Provider) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	svc := weather.NewService(store.NewMemoryStore(0), provider, 2)
	RegisterRoutes(app, svc, Options{JWTSecret: testSecret, RequestTimeout: time.Second})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, user, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		token, err := auth.SignToken(user, testSecret, time.Hour)
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		req.Header.Set("x-access-token", token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestForecastRequiresToken(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	resp := do(t, app, http.MethodGet, "/api/v1/forecast", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}

	var body struct {
		Code  int    `json:"code"`
		Error string `json:"error"`
	}
	decode(t, resp, &body)
	if body.Code != http.StatusUnauthorized || body.Error == "" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestForecastForUserBeaches(t *testing.T) {
	app := newTestApp(t, stubProvider{points: []weather.RawForecastPoint{
		{Time: "2020-04-26T00:00:00+00:00", Fields: map[string]float64{"waveHeight": 0.47}},
		{Time: "2020-04-26T01:00:00+00:00", Fields: map[string]float64{"waveHeight": 0.46}},
	}})

	for _, body := range []string{
		`{"name":"Manly","lat":-33.792726,"lng":151.289824,"position":"E"}`,
		`{"name":"Dee Why","lat":-33.750919,"lng":151.299726,"position":"E"}`,
	} {
		resp := do(t, app, http.MethodPost, "/api/v1/beaches", "user-1", body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
		}
	}

	resp := do(t, app, http.MethodGet, "/api/v1/forecast", "user-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var forecast []struct {
		Time     string           `json:"time"`
		Forecast []map[string]any `json:"forecast"`
	}
	decode(t, resp, &forecast)

	if len(forecast) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(forecast))
	}
	first := forecast[0]
	if first.Time != "2020-04-26T00:00:00+00:00" || len(first.Forecast) != 2 {
		t.Fatalf("unexpected first bucket %+v", first)
	}
	if first.Forecast[0]["name"] != "Manly" || first.Forecast[1]["name"] != "Dee Why" {
		t.Errorf("unexpected beach order: %v, %v", first.Forecast[0]["name"], first.Forecast[1]["name"])
	}
	want := map[string]any{
		"lat":        -33.792726,
		"lng":        151.289824,
		"position":   "E",
		"rating":     1.0,
		"time":       "2020-04-26T00:00:00+00:00",
		"waveHeight": 0.47,
	}
	for k, v := range want {
		if first.Forecast[0][k] != v {
			t.Errorf("%s = %v, want %v", k, first.Forecast[0][k], v)
		}
	}
}

func TestForecastWithoutBeaches(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	resp := do(t, app, http.MethodGet, "/api/v1/forecast", "user-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var forecast []any
	decode(t, resp, &forecast)
	if forecast == nil || len(forecast) != 0 {
		t.Fatalf("expected empty array, got %v", forecast)
	}
}

func TestForecastProviderFailure(t *testing.T) {
	app := newTestApp(t, stubProvider{err: errors.New("stormglass is down")})

	resp := do(t, app, http.MethodPost, "/api/v1/beaches", "user-1", `{"name":"Manly","lat":-33.79,"lng":151.28,"position":"E"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}

	resp = do(t, app, http.MethodGet, "/api/v1/forecast", "user-1", "")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, resp.StatusCode)
	}
	var body struct {
		Code  int    `json:"code"`
		Error string `json:"error"`
	}
	decode(t, resp, &body)
	if body.Code != 500 || body.Error != "Something went wrong" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestCreateBeachValidation(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing lat", `{"name":"Manly","lng":151.28,"position":"E"}`, http.StatusBadRequest},
		{"bad position", `{"name":"Manly","lat":-33.79,"lng":151.28,"position":"NE"}`, http.StatusBadRequest},
		{"out of range", `{"name":"Manly","lat":-133.79,"lng":151.28,"position":"E"}`, http.StatusBadRequest},
		{"missing name", `{"lat":-33.79,"lng":151.28,"position":"E"}`, http.StatusBadRequest},
		{"malformed", `{"name":`, http.StatusBadRequest},
		{"equator", `{"name":"Null Island","lat":0,"lng":0,"position":"N"}`, http.StatusCreated},
	}
	for _, tt := range tests {
		resp := do(t, app, http.MethodPost, "/api/v1/beaches", "user-1", tt.body)
		if resp.StatusCode != tt.want {
			t.Errorf("%s: expected status %d, got %d", tt.name, tt.want, resp.StatusCode)
		}
	}
}

func TestCreateBeachDuplicate(t *testing.T) {
	app := newTestApp(t, stubProvider{})
	body := `{"name":"Manly","lat":-33.79,"lng":151.28,"position":"E"}`

	if resp := do(t, app, http.MethodPost, "/api/v1/beaches", "user-1", body); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	if resp := do(t, app, http.MethodPost, "/api/v1/beaches", "user-1", body); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestListBeachesIsPerUser(t *testing.T) {
	app := newTestApp(t, stubProvider{})

	resp := do(t, app, http.MethodPost, "/api/v1/beaches", "user-1", `{"name":"Manly","lat":-33.79,"lng":151.28,"position":"E"}`)
	var created weather.Location
	decode(t, resp, &created)
	if created.ID == "" || created.UserID != "user-1" {
		t.Fatalf("unexpected created beach %+v", created)
	}

	var mine, theirs []weather.Location
	decode(t, do(t, app, http.MethodGet, "/api/v1/beaches", "user-1", ""), &mine)
	decode(t, do(t, app, http.MethodGet, "/api/v1/beaches", "user-2", ""), &theirs)

	if len(mine) != 1 || mine[0].ID != created.ID {
		t.Fatalf("unexpected beaches for user-1: %v", mine)
	}
	if len(theirs) != 0 {
		t.Fatalf("unexpected beaches for user-2: %v", theirs)
	}
}
