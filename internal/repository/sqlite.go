package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	// SQLite leaves foreign_keys off unless asked; the pragma applies per
	// pooled connection, so it has to ride on the DSN.
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS stations (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			river TEXT,
			province TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			geom TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS water_level_measurements (
			station_code TEXT NOT NULL,
			measured_at DATETIME NOT NULL,
			level REAL NOT NULL,
			PRIMARY KEY (station_code, measured_at),
			FOREIGN KEY (station_code) REFERENCES stations(code)
		);

		CREATE TABLE IF NOT EXISTS flow_measurements (
			station_code TEXT NOT NULL,
			measured_at DATETIME NOT NULL,
			flow REAL NOT NULL,
			PRIMARY KEY (station_code, measured_at),
			FOREIGN KEY (station_code) REFERENCES stations(code)
		);

		CREATE TABLE IF NOT EXISTS hydro_warnings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			published_at DATETIME NOT NULL,
			severity TEXT NOT NULL,
			valid_from DATETIME NOT NULL,
			valid_to DATETIME NOT NULL,
			probability TEXT NOT NULL,
			number TEXT NOT NULL,
			office TEXT NOT NULL,
			event TEXT NOT NULL,
			description TEXT NOT NULL,
			comment TEXT
		);

		CREATE TABLE IF NOT EXISTS warning_areas (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			warning_id INTEGER NOT NULL,
			province TEXT NOT NULL,
			description TEXT NOT NULL,
			catchment_codes TEXT NOT NULL,
			FOREIGN KEY (warning_id) REFERENCES hydro_warnings(id)
		);

		CREATE INDEX IF NOT EXISTS idx_water_level_measured_at ON water_level_measurements(measured_at);
		CREATE INDEX IF NOT EXISTS idx_flow_measured_at ON flow_measurements(measured_at);
		CREATE INDEX IF NOT EXISTS idx_warning_areas_warning_id ON warning_areas(warning_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

// Ping reports whether the underlying database is reachable.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
