package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/radini5948/Bieszczady/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func (s *SQLiteDB) AddWaterLevel(ctx context.Context, stationCode string, measuredAt time.Time, level float64) (bool, error) {
	return s.insertMeasurement(ctx, "water_level_measurements", "level", stationCode, measuredAt, level)
}

func (s *SQLiteDB) AddFlow(ctx context.Context, stationCode string, measuredAt time.Time, flow float64) (bool, error) {
	return s.insertMeasurement(ctx, "flow_measurements", "flow", stationCode, measuredAt, flow)
}

// insertMeasurement is a single atomic insert-ignore-conflict: a concurrent
// sync run inserting the same (station, timestamp) key simply reads back
// zero rows affected, so no check-then-act window exists.
func (s *SQLiteDB) insertMeasurement(ctx context.Context, table, column, stationCode string, measuredAt time.Time, value float64) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (station_code, measured_at, %s)
		VALUES (?, ?, ?)
		ON CONFLICT(station_code, measured_at) DO NOTHING`, table, column)

	res, err := s.db.ExecContext(ctx, query, stationCode, measuredAt, value)
	if err != nil {
		// Measurements reference stations by foreign key; an unknown
		// station code must not leave orphan rows behind.
		var serr *sqlite.Error
		if errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return false, fmt.Errorf("station %s: %w", stationCode, ErrStationNotFound)
		}
		return false, fmt.Errorf("error inserting into %s: %w", table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}

	return affected > 0, nil
}

func (s *SQLiteDB) GetMeasurements(ctx context.Context, stationCode string, since time.Time) (*models.StationMeasurements, error) {
	waterLevels, err := s.queryWaterLevels(ctx, stationCode, since)
	if err != nil {
		return nil, err
	}

	flows, err := s.queryFlows(ctx, stationCode, since)
	if err != nil {
		return nil, err
	}

	return &models.StationMeasurements{
		WaterLevels: waterLevels,
		Flows:       flows,
	}, nil
}

func (s *SQLiteDB) queryWaterLevels(ctx context.Context, stationCode string, since time.Time) ([]models.WaterLevelMeasurement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT station_code, measured_at, level
		FROM water_level_measurements
		WHERE station_code = ? AND measured_at >= ?`, stationCode, since)
	if err != nil {
		return nil, fmt.Errorf("error querying water levels for %s: %w", stationCode, err)
	}
	defer rows.Close()

	measurements := []models.WaterLevelMeasurement{}
	for rows.Next() {
		var m models.WaterLevelMeasurement
		if err := rows.Scan(&m.StationCode, &m.MeasuredAt, &m.Level); err != nil {
			return nil, fmt.Errorf("error scanning water level row: %w", err)
		}
		measurements = append(measurements, m)
	}

	return measurements, rows.Err()
}

func (s *SQLiteDB) queryFlows(ctx context.Context, stationCode string, since time.Time) ([]models.FlowMeasurement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT station_code, measured_at, flow
		FROM flow_measurements
		WHERE station_code = ? AND measured_at >= ?`, stationCode, since)
	if err != nil {
		return nil, fmt.Errorf("error querying flows for %s: %w", stationCode, err)
	}
	defer rows.Close()

	measurements := []models.FlowMeasurement{}
	for rows.Next() {
		var m models.FlowMeasurement
		if err := rows.Scan(&m.StationCode, &m.MeasuredAt, &m.Flow); err != nil {
			return nil, fmt.Errorf("error scanning flow row: %w", err)
		}
		measurements = append(measurements, m)
	}

	return measurements, rows.Err()
}
