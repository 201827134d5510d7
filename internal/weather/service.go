package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/surf-forecast/internal/metrics"
)

var errNoProvider = errors.New("no forecast provider configured")

// Service orchestrates per-beach provider fetches and the beach store.
type Service struct {
	store       LocationStore
	provider    Provider
	concurrency int
}

// NewService creates a new Service. A concurrency <= 0 is treated as 1, which
// fetches beaches strictly one at a time.
func NewService(store LocationStore, provider Provider, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		store:       store,
		provider:    provider,
		concurrency: concurrency,
	}
}

// BuildForecast fetches the raw points of every beach, enriches them with the
// beach identity and regroups everything by timestamp.
//
// Fetches run concurrently up to the configured limit but results are merged in
// input order, so the output is identical to fetching one beach after another.
// The first failing fetch cancels the others and is returned wrapped in a
// *ForecastProcessingError; no partial forecast is returned.
func (s *Service) BuildForecast(ctx context.Context, locations []Location) (Forecast, error) {
	log.Printf("INFO: preparing the forecast for %d beaches", len(locations))
	start := time.Now()

	if len(locations) == 0 {
		return Forecast{}, nil
	}
	if s.provider == nil {
		log.Printf("ERROR: %v", errNoProvider)
		metrics.ForecastBuilds.WithLabelValues("error").Inc()
		return nil, &ForecastProcessingError{Err: errNoProvider}
	}

	perLocation := make([][]EnrichedForecastPoint, len(locations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, loc := range locations {
		i, loc := i, loc
		g.Go(func() error {
			points, err := s.provider.FetchPoints(gctx, loc.Lat, loc.Lng)
			if err != nil {
				return fmt.Errorf("fetch points for %q: %w", loc.Name, err)
			}
			perLocation[i] = Enrich(points, loc)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("ERROR: forecast processing failed with provider %s: %v", s.provider.Name(), err)
		metrics.ForecastBuilds.WithLabelValues("error").Inc()
		return nil, &ForecastProcessingError{Err: err}
	}

	total := 0
	for _, points := range perLocation {
		total += len(points)
	}
	all := make([]EnrichedForecastPoint, 0, total)
	for _, points := range perLocation {
		all = append(all, points...)
	}

	metrics.ForecastBuilds.WithLabelValues("ok").Inc()
	metrics.ForecastBuildDuration.Observe(time.Since(start).Seconds())
	return GroupByTime(all), nil
}

// ForecastForUser builds the forecast for every beach saved by userID.
func (s *Service) ForecastForUser(ctx context.Context, userID string) (Forecast, error) {
	locs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list beaches: %w", err)
	}
	return s.BuildForecast(ctx, locs)
}

// AddLocation assigns an ID to loc and saves it for its owner.
func (s *Service) AddLocation(ctx context.Context, loc Location) (Location, error) {
	if loc.UserID == "" {
		return Location{}, fmt.Errorf("beach owner is required")
	}
	if err := loc.Validate(); err != nil {
		return Location{}, fmt.Errorf("invalid beach: %w", err)
	}
	loc.ID = uuid.NewString()
	if err := s.store.SaveLocation(ctx, loc); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// ListLocations delegates to the underlying store.
func (s *Service) ListLocations(ctx context.Context, userID string) ([]Location, error) {
	return s.store.ListByUser(ctx, userID)
}
