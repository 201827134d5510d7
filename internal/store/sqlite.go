package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/i474232898/surf-forecast/internal/weather"
)

// SQLiteStore persists beaches in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	s := NewSQLiteStore(db)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS beaches (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			name TEXT NOT NULL,
			position TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, name, lat, lng)
		);
		CREATE INDEX IF NOT EXISTS idx_beaches_user ON beaches(user_id);
	`)
	return err
}

func (s *SQLiteStore) SaveLocation(ctx context.Context, loc weather.Location) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO beaches (id, user_id, lat, lng, name, position)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, name, lat, lng) DO NOTHING
	`, loc.ID, loc.UserID, loc.Lat, loc.Lng, loc.Name, string(loc.Position))
	if err != nil {
		return fmt.Errorf("insert beach: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert beach: %w", err)
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]weather.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, lat, lng, name, position
		FROM beaches
		WHERE user_id = ?
		ORDER BY rowid ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locs := []weather.Location{}
	for rows.Next() {
		var loc weather.Location
		var position string
		if err := rows.Scan(&loc.ID, &loc.UserID, &loc.Lat, &loc.Lng, &loc.Name, &position); err != nil {
			return nil, err
		}
		loc.Position = weather.Position(position)
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
