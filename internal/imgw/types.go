package imgw

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/radini5948/Bieszczady/internal/models"
)

// apiFloat decodes the numeric fields the IMGW API serves sometimes as JSON
// numbers and sometimes as quoted strings.
type apiFloat float64

func (f *apiFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		// Absent value; callers decide whether zero is acceptable.
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %q: %w", data, err)
	}
	*f = apiFloat(v)
	return nil
}

// stationRecord is one entry of the upstream station-list payload.
type stationRecord struct {
	Code     string   `json:"kod_stacji"`
	Name     string   `json:"nazwa_stacji"`
	River    string   `json:"rzeka"`
	Province string   `json:"wojewodztwo"`
	Lat      apiFloat `json:"lat"`
	Lon      apiFloat `json:"lon"`
}

// readingRecord is one entry of the upstream per-station payload. The API
// wraps at most one current reading in a single-element list. The flow value
// and its timestamp are spelled inconsistently upstream (przelyw vs
// przeplyw_data); both tags match the feed as served.
type readingRecord struct {
	Code      string    `json:"kod_stacji"`
	Level     *apiFloat `json:"stan"`
	LevelDate string    `json:"stan_data"`
	Flow      *apiFloat `json:"przelyw"`
	FlowDate  string    `json:"przeplyw_data"`
}

// warningRecord is one entry of the upstream hydrological-warnings payload.
type warningRecord struct {
	PublishedAt string              `json:"opublikowano"`
	Severity    string              `json:"stopien"`
	ValidFrom   string              `json:"data_od"`
	ValidTo     string              `json:"data_do"`
	Probability string              `json:"prawdopodobienstwo"`
	Number      string              `json:"numer"`
	Office      string              `json:"biuro"`
	Event       string              `json:"zdarzenie"`
	Description string              `json:"przebieg"`
	Comment     string              `json:"komentarz"`
	Areas       []warningAreaRecord `json:"obszary"`
}

type warningAreaRecord struct {
	Province       string   `json:"wojewodztwo"`
	Description    string   `json:"opis"`
	CatchmentCodes []string `json:"kod_zlewni"`
}

// StationError records one station a sync batch could not process.
type StationError struct {
	StationCode string `json:"station_code"`
	Err         string `json:"error"`
}

// Reading is the observation echoed back after a station sync.
type Reading struct {
	StationCode  string     `json:"station_code"`
	WaterLevel   *float64   `json:"water_level,omitempty"`
	WaterLevelAt *time.Time `json:"water_level_at,omitempty"`
	Flow         *float64   `json:"flow,omitempty"`
	FlowAt       *time.Time `json:"flow_at,omitempty"`
}

// FetchResult is the terminal outcome of one station's fetch-and-store
// attempt, with the persisted reading when one exists.
type FetchResult struct {
	Outcome models.SyncOutcome `json:"outcome"`
	Reading *Reading           `json:"reading,omitempty"`
}
