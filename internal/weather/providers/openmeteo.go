package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/surf-forecast/internal/weather"
)

// Open-Meteo marine hourly variables and the field names they are normalized to.
var openMeteoVariables = []struct {
	api   string
	field string
}{
	{"wave_height", "waveHeight"},
	{"wave_direction", "waveDirection"},
	{"swell_wave_height", "swellHeight"},
	{"swell_wave_direction", "swellDirection"},
	{"swell_wave_period", "swellPeriod"},
}

// OpenMeteoProvider implements the weather.Provider interface for the Open-Meteo marine API.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider needs no API key.
func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://marine-api.open-meteo.com/v1/marine",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) CircuitState() gobreaker.State {
	return p.circuit.State()
}

func (p *OpenMeteoProvider) FetchPoints(ctx context.Context, lat, lng float64) ([]weather.RawForecastPoint, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		vars := make([]string, 0, len(openMeteoVariables))
		for _, v := range openMeteoVariables {
			vars = append(vars, v.api)
		}

		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lng))
		values.Set("hourly", strings.Join(vars, ","))
		values.Set("timezone", "GMT")
		values.Set("forecast_days", "1")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	body, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Hourly map[string]json.RawMessage `json:"hourly"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", p.name, err)
	}

	var times []string
	if raw, ok := payload.Hourly["time"]; ok {
		if err := json.Unmarshal(raw, &times); err != nil {
			return nil, fmt.Errorf("%s: decode hourly time: %w", p.name, err)
		}
	}

	series := make(map[string][]*float64, len(openMeteoVariables))
	for _, v := range openMeteoVariables {
		var values []*float64
		if raw, ok := payload.Hourly[v.api]; ok {
			if err := json.Unmarshal(raw, &values); err != nil {
				return nil, fmt.Errorf("%s: decode hourly %s: %w", p.name, v.api, err)
			}
		}
		series[v.field] = values
	}

	points := make([]weather.RawForecastPoint, 0, len(times))
	for i, t := range times {
		ts, err := time.Parse("2006-01-02T15:04", t)
		if err != nil {
			continue
		}

		fields := make(map[string]float64, len(series))
		for field, values := range series {
			if i < len(values) && values[i] != nil {
				fields[field] = *values[i]
			}
		}
		// Hours missing any variable are dropped, as with StormGlass.
		if len(fields) != len(openMeteoVariables) {
			continue
		}

		points = append(points, weather.RawForecastPoint{Time: formatTime(ts), Fields: fields})
	}

	return points, nil
}
