package store

import (
	"context"
	"errors"
	"sync"

	"github.com/i474232898/surf-forecast/internal/weather"
)

var (
	// ErrDuplicate is returned when the user already saved a beach with the same name and coordinates.
	ErrDuplicate = errors.New("beach already exists for user")

	// ErrLimitReached is returned when a user has saved the maximum number of beaches.
	ErrLimitReached = errors.New("beach limit reached for user")
)

// MemoryStore is a concurrency-safe in-memory implementation of weather.LocationStore.
type MemoryStore struct {
	mu sync.RWMutex

	// key: user id, value: beaches in insertion order
	data map[string][]weather.Location

	maxPerUser int // max number of beaches per user
}

// NewMemoryStore creates a new MemoryStore.
// If maxPerUser is <= 0, it is treated as unlimited.
func NewMemoryStore(maxPerUser int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]weather.Location),
		maxPerUser: maxPerUser,
	}
}

// SaveLocation appends a beach to its owner's list.
func (s *MemoryStore) SaveLocation(_ context.Context, loc weather.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[loc.UserID]
	for _, l := range existing {
		if sameBeach(l, loc) {
			return ErrDuplicate
		}
	}
	if s.maxPerUser > 0 && len(existing) >= s.maxPerUser {
		return ErrLimitReached
	}

	s.data[loc.UserID] = append(existing, loc)
	return nil
}

// ListByUser returns a copy of the user's beaches; a user without beaches gets an empty list.
func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	locs := s.data[userID]
	out := make([]weather.Location, len(locs))
	copy(out, locs)
	return out, nil
}

func sameBeach(a, b weather.Location) bool {
	return a.Name == b.Name && a.Lat == b.Lat && a.Lng == b.Lng
}
