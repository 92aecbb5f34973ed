package repository

import (
	"context"
	"errors"
	"time"

	"github.com/radini5948/Bieszczady/internal/models"
)

// ErrStationNotFound is returned when a lookup by station code matches no row.
var ErrStationNotFound = errors.New("station not found")

type StationRepository interface {
	// GetOrCreate returns the stored station for station.Code, creating it
	// if absent. An existing row's attributes are never modified; on a
	// concurrent-insert race the now-existing row is fetched and returned.
	GetOrCreate(ctx context.Context, station *models.Station) (*models.Station, error)
	GetByCode(ctx context.Context, code string) (*models.Station, error)
	ListStations(ctx context.Context) ([]models.Station, error)
}

type MeasurementRepository interface {
	// AddWaterLevel inserts a water-level row. It returns true only when a
	// new row was durably created; an existing (station, timestamp) row
	// yields false without error and without modification.
	AddWaterLevel(ctx context.Context, stationCode string, measuredAt time.Time, level float64) (bool, error)
	// AddFlow behaves like AddWaterLevel for flow rows.
	AddFlow(ctx context.Context, stationCode string, measuredAt time.Time, flow float64) (bool, error)
	// GetMeasurements returns all rows for a station with timestamp >= since,
	// partitioned by kind. No ordering is guaranteed.
	GetMeasurements(ctx context.Context, stationCode string, since time.Time) (*models.StationMeasurements, error)
}

type WarningRepository interface {
	// ReplaceWarnings swaps the whole warnings dataset for the given set,
	// areas included, and returns the number of warnings stored.
	ReplaceWarnings(ctx context.Context, warnings []models.HydroWarning) (int, error)
	ListWarnings(ctx context.Context) ([]models.HydroWarning, error)
}
