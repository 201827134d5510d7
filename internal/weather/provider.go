package weather

import (
	"context"
)

// Provider abstracts a marine forecast source (e.g. StormGlass, Open-Meteo).
type Provider interface {
	Name() string
	FetchPoints(ctx context.Context, lat, lng float64) ([]RawForecastPoint, error)
}

// LocationStore is the contract the beach stores (in-memory, SQLite) must satisfy.
type LocationStore interface {
	SaveLocation(ctx context.Context, loc Location) error
	ListByUser(ctx context.Context, userID string) ([]Location, error)
}
