package providers

import (
	"fmt"
	"net/http"

	"github.com/i474232898/surf-forecast/internal/weather"
)

// Names accepted by New.
const (
	StormGlass  = "stormglass"
	OpenMeteo   = "openmeteo"
	WeatherAPI  = "weatherapi"
	OpenWeather = "openweather"
)

// Options carries the credentials for every supported provider.
type Options struct {
	StormGlassAPIKey  string
	StormGlassBaseURL string
	WeatherAPIKey     string
	OpenWeatherAPIKey string
}

// New builds the provider registered under name.
func New(name string, client *http.Client, opts Options) (weather.Provider, error) {
	switch name {
	case StormGlass:
		return NewStormGlassProvider(client, opts.StormGlassAPIKey, opts.StormGlassBaseURL), nil
	case OpenMeteo:
		return NewOpenMeteoProvider(client), nil
	case WeatherAPI:
		return NewWeatherAPIProvider(client, opts.WeatherAPIKey), nil
	case OpenWeather:
		return NewOpenWeatherProvider(client, opts.OpenWeatherAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown forecast provider %q", name)
	}
}
