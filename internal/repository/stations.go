package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/radini5948/Bieszczady/internal/models"
)

func (s *SQLiteDB) GetOrCreate(ctx context.Context, station *models.Station) (*models.Station, error) {
	existing, err := s.GetByCode(ctx, station.Code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrStationNotFound) {
		return nil, err
	}

	created := *station
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO stations (code, name, river, province, latitude, longitude, geom, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO NOTHING`,
		created.Code, created.Name, created.River, created.Province,
		created.Latitude, created.Longitude, created.Geometry(), created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error inserting station %s: %w", created.Code, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		// Lost a concurrent-insert race; the row exists now, return it.
		return s.GetByCode(ctx, station.Code)
	}

	return &created, nil
}

func (s *SQLiteDB) GetByCode(ctx context.Context, code string) (*models.Station, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT code, name, river, province, latitude, longitude, created_at
		FROM stations WHERE code = ?`, code)

	var st models.Station
	var river sql.NullString
	err := row.Scan(&st.Code, &st.Name, &river, &st.Province, &st.Latitude, &st.Longitude, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying station %s: %w", code, err)
	}
	st.River = river.String

	return &st, nil
}

func (s *SQLiteDB) ListStations(ctx context.Context) ([]models.Station, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, river, province, latitude, longitude, created_at
		FROM stations`)
	if err != nil {
		return nil, fmt.Errorf("error listing stations: %w", err)
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var st models.Station
		var river sql.NullString
		if err := rows.Scan(&st.Code, &st.Name, &river, &st.Province, &st.Latitude, &st.Longitude, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning station row: %w", err)
		}
		st.River = river.String
		stations = append(stations, st)
	}

	return stations, rows.Err()
}
