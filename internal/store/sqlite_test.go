package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/i474232898/surf-forecast/internal/weather"
)

func setupTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "beaches.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreSaveAndList(t *testing.T) {
	s := setupTestSQLite(t)
	ctx := context.Background()

	locs := []weather.Location{
		{ID: "b", UserID: "u1", Lat: -33.792726, Lng: 151.289824, Name: "Manly", Position: weather.PositionEast},
		{ID: "a", UserID: "u1", Lat: -33.890842, Lng: 151.274292, Name: "Bondi", Position: weather.PositionEast},
		{ID: "c", UserID: "u2", Lat: 21.664, Lng: -158.053, Name: "Pipeline", Position: weather.PositionNorth},
	}
	for _, loc := range locs {
		if err := s.SaveLocation(ctx, loc); err != nil {
			t.Fatalf("save %s: %v", loc.Name, err)
		}
	}

	got, err := s.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 beaches, got %d", len(got))
	}
	// Insertion order, not id order.
	if got[0] != locs[0] || got[1] != locs[1] {
		t.Fatalf("unexpected beaches: %v", got)
	}

	none, err := s.ListByUser(ctx, "nobody")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list, got %v, %v", none, err)
	}
}

func TestSQLiteStoreDuplicate(t *testing.T) {
	s := setupTestSQLite(t)
	ctx := context.Background()

	loc := weather.Location{ID: "1", UserID: "u1", Lat: 1, Lng: 2, Name: "A", Position: weather.PositionEast}
	if err := s.SaveLocation(ctx, loc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc.ID = "2"
	if err := s.SaveLocation(ctx, loc); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestSQLiteStoreMigrateIsIdempotent(t *testing.T) {
	s := setupTestSQLite(t)
	if err := s.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
