package models

import (
	"fmt"
	"time"
)

// Station is a fixed hydrological monitoring point from the IMGW network,
// identified by its station code. Rows are created on first sighting and
// their attributes are never updated afterwards.
type Station struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	River     string    `json:"river,omitempty"` // empty when the station is not on a river
	Province  string    `json:"province"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	CreatedAt time.Time `json:"-"`
}

// Geometry derives the station's point geometry from (longitude, latitude),
// rendered as WKT.
func (s *Station) Geometry() string {
	return fmt.Sprintf("POINT(%v %v)", s.Longitude, s.Latitude)
}

// WaterLevelMeasurement is a timestamped water-level observation at a
// station, in centimeters. Unique on (station, timestamp).
type WaterLevelMeasurement struct {
	StationCode string    `json:"station_code"`
	MeasuredAt  time.Time `json:"measured_at"`
	Level       float64   `json:"level"`
}

// FlowMeasurement is a timestamped flow observation at a station, in cubic
// meters per second. Unique on (station, timestamp).
type FlowMeasurement struct {
	StationCode string    `json:"station_code"`
	MeasuredAt  time.Time `json:"measured_at"`
	Flow        float64   `json:"flow"`
}

// StationMeasurements partitions a station's rows by measurement kind. No
// ordering is guaranteed; callers sort for display.
type StationMeasurements struct {
	WaterLevels []WaterLevelMeasurement `json:"water_levels"`
	Flows       []FlowMeasurement       `json:"flows"`
}
