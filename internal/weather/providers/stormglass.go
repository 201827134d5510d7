package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/surf-forecast/internal/weather"
)

// Fields requested from StormGlass; every kept point carries all of them.
var stormGlassParams = []string{
	"swellDirection",
	"swellHeight",
	"swellPeriod",
	"waveDirection",
	"waveHeight",
	"windDirection",
	"windSpeed",
}

const stormGlassSource = "noaa"

// StormGlassProvider implements weather.Provider for the StormGlass point API.
type StormGlassProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewStormGlassProvider(client *http.Client, apiKey, baseURL string) *StormGlassProvider {
	if baseURL == "" {
		baseURL = "https://api.stormglass.io/v2"
	}
	return &StormGlassProvider{
		name:    "stormglass",
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("stormglass"),
		now:     time.Now,
	}
}

func (p *StormGlassProvider) Name() string {
	return p.name
}

func (p *StormGlassProvider) CircuitState() gobreaker.State {
	return p.circuit.State()
}

// FetchPoints returns the next 24 hours of normalized points for lat/lng.
func (p *StormGlassProvider) FetchPoints(ctx context.Context, lat, lng float64) ([]weather.RawForecastPoint, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.name, errMissingAPIKey)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
		values.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
		values.Set("params", strings.Join(stormGlassParams, ","))
		values.Set("source", stormGlassSource)
		values.Set("end", strconv.FormatInt(p.now().Add(24*time.Hour).Unix(), 10))

		u := fmt.Sprintf("%s/weather/point?%s", p.baseURL, values.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", p.apiKey)
		return req, nil
	}

	body, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Hours []map[string]json.RawMessage `json:"hours"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", p.name, err)
	}

	return normalizeStormGlass(payload.Hours), nil
}

// normalizeStormGlass keeps only hours that have a time and a value from the
// configured source for every requested param.
func normalizeStormGlass(hours []map[string]json.RawMessage) []weather.RawForecastPoint {
	points := make([]weather.RawForecastPoint, 0, len(hours))
	for _, hour := range hours {
		var ts string
		if raw, ok := hour["time"]; !ok || json.Unmarshal(raw, &ts) != nil || ts == "" {
			continue
		}

		fields := make(map[string]float64, len(stormGlassParams))
		for _, param := range stormGlassParams {
			raw, ok := hour[param]
			if !ok {
				break
			}
			var sources map[string]float64
			if err := json.Unmarshal(raw, &sources); err != nil {
				break
			}
			v, ok := sources[stormGlassSource]
			if !ok {
				break
			}
			fields[param] = v
		}
		if len(fields) != len(stormGlassParams) {
			continue
		}

		points = append(points, weather.RawForecastPoint{Time: ts, Fields: fields})
	}
	return points
}
