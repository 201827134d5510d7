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

// OpenWeatherProvider implements the weather.Provider interface for the
// OpenWeatherMap 5 day / 3 hour forecast. It has no wave data, only wind.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) CircuitState() gobreaker.State {
	return p.circuit.State()
}

func (p *OpenWeatherProvider) FetchPoints(ctx context.Context, lat, lng float64) ([]weather.RawForecastPoint, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.name, errMissingAPIKey)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lng))
		// 8 x 3h steps covers the next 24 hours.
		values.Set("cnt", "8")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	body, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Wind struct {
				Speed float64 `json:"speed"`
				Deg   float64 `json:"deg"`
				Gust  float64 `json:"gust"`
			} `json:"wind"`
			Main struct {
				Temp     float64 `json:"temp"`
				Pressure float64 `json:"pressure"`
			} `json:"main"`
		} `json:"list"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", p.name, err)
	}

	points := make([]weather.RawForecastPoint, 0, len(payload.List))
	for _, item := range payload.List {
		if item.Dt == 0 {
			continue
		}
		points = append(points, weather.RawForecastPoint{
			Time: formatTime(time.Unix(item.Dt, 0)),
			Fields: map[string]float64{
				"windSpeed":      item.Wind.Speed,
				"windDirection":  item.Wind.Deg,
				"gust":           item.Wind.Gust,
				"airTemperature": item.Main.Temp,
				"pressure":       item.Main.Pressure,
			},
		})
	}

	return points, nil
}
