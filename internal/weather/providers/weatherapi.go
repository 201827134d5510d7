package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/surf-forecast/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for the WeatherAPI.com marine endpoint.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/marine.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) CircuitState() gobreaker.State {
	return p.circuit.State()
}

func (p *WeatherAPIProvider) FetchPoints(ctx context.Context, lat, lng float64) ([]weather.RawForecastPoint, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.name, errMissingAPIKey)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "lat,lon".
		values.Set("q", fmt.Sprintf("%f,%f", lat, lng))
		values.Set("days", "1")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	body, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch       int64   `json:"time_epoch"`
					SigHtMt         float64 `json:"sig_ht_mt"`
					SwellHtMt       float64 `json:"swell_ht_mt"`
					SwellDir        float64 `json:"swell_dir"`
					SwellPeriodSecs float64 `json:"swell_period_secs"`
					WindKph         float64 `json:"wind_kph"`
					WindDegree      float64 `json:"wind_degree"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", p.name, err)
	}

	var points []weather.RawForecastPoint
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			if h.TimeEpoch == 0 {
				continue
			}
			points = append(points, weather.RawForecastPoint{
				Time: formatTime(time.Unix(h.TimeEpoch, 0)),
				Fields: map[string]float64{
					"waveHeight":     h.SigHtMt,
					"swellHeight":    h.SwellHtMt,
					"swellDirection": h.SwellDir,
					"swellPeriod":    h.SwellPeriodSecs,
					"windSpeed":      kphToMS(h.WindKph),
					"windDirection":  h.WindDegree,
				},
			})
		}
	}

	return points, nil
}

// kphToMS converts wind from kph to m/s (approx).
func kphToMS(kph float64) float64 {
	return kph / 3.6
}
