// Package imgw consumes the public IMGW hydrological API and reconciles its
// payloads with the local store.
package imgw

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/radini5948/Bieszczady/internal/config"
	"github.com/radini5948/Bieszczady/internal/models"
	"github.com/radini5948/Bieszczady/internal/repository"
	"github.com/radini5948/Bieszczady/internal/timeutil"
)

type Client struct {
	baseURL      string
	warningsURL  string
	httpClient   *http.Client
	stations     repository.StationRepository
	measurements repository.MeasurementRepository
}

func NewClient(cfg config.IMGWConfig, stations repository.StationRepository, measurements repository.MeasurementRepository) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		warningsURL: cfg.WarningsURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		stations:     stations,
		measurements: measurements,
	}
}

// ListStations fetches the upstream station list and upserts every entry via
// the station store. Transport failures, bad statuses and malformed payloads
// all yield an empty list (logged): callers treat empty as "nothing to
// sync", not "zero stations exist". Stations that could not be upserted are
// collected into the returned error list without stopping the rest.
func (c *Client) ListStations(ctx context.Context) ([]models.Station, []StationError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		slog.Error("error creating station list request", "error", err)
		return nil, nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("error fetching station list", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("station list request failed", "status", resp.StatusCode)
		return nil, nil
	}

	var records []stationRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		slog.Error("error decoding station list", "error", err)
		return nil, nil
	}

	stations := make([]models.Station, 0, len(records))
	var failed []StationError
	for _, rec := range records {
		if rec.Code == "" || (rec.Lat == 0 && rec.Lon == 0) {
			slog.Warn("skipping station with incomplete record", "station", rec.Code)
			failed = append(failed, StationError{StationCode: rec.Code, Err: "incomplete station record"})
			continue
		}

		st := &models.Station{
			Code:      rec.Code,
			Name:      rec.Name,
			River:     rec.River,
			Province:  rec.Province,
			Latitude:  float64(rec.Lat),
			Longitude: float64(rec.Lon),
		}
		persisted, err := c.stations.GetOrCreate(ctx, st)
		if err != nil {
			slog.Error("error saving station", "station", rec.Code, "error", err)
			failed = append(failed, StationError{StationCode: rec.Code, Err: err.Error()})
			continue
		}
		stations = append(stations, *persisted)
	}

	return stations, failed
}

// GetStationData fetches the current reading for one station and persists it
// idempotently. Absence of data, a non-200 status or a malformed payload
// yield an empty result (logged), never an error; a reading whose timestamp
// the normalizer rejects is dropped (logged). Only unexpected store failures
// surface as errors. The days parameter mirrors the trigger surface; the
// upstream serves a single current reading regardless of the window.
func (c *Client) GetStationData(ctx context.Context, stationCode string, days int) (FetchResult, error) {
	empty := FetchResult{Outcome: models.SyncEmpty}

	url := fmt.Sprintf("%s/id/%s", c.baseURL, stationCode)
	slog.Debug("fetching station data", "station", stationCode, "days", days)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Error("error creating station data request", "station", stationCode, "error", err)
		return empty, nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("error fetching station data", "station", stationCode, "error", err)
		return empty, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("station data request failed", "station", stationCode, "status", resp.StatusCode)
		return empty, nil
	}

	var records []readingRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		slog.Error("error decoding station data", "station", stationCode, "error", err)
		return empty, nil
	}
	if len(records) == 0 {
		slog.Warn("no data received for station", "station", stationCode)
		return empty, nil
	}

	return c.storeReading(ctx, stationCode, records[0])
}

func (c *Client) storeReading(ctx context.Context, stationCode string, rec readingRecord) (FetchResult, error) {
	now := time.Now()
	reading := &Reading{StationCode: stationCode}

	var stored, duplicate, rejected bool

	if rec.Level != nil {
		at, err := timeutil.Normalize(rec.LevelDate, now)
		switch {
		case err != nil:
			slog.Warn("dropping water level reading", "station", stationCode, "timestamp", rec.LevelDate, "error", err)
			rejected = true
		case at.IsZero():
			// Reading carries no timestamp; nothing to store.
		default:
			created, err := c.measurements.AddWaterLevel(ctx, stationCode, at, float64(*rec.Level))
			if err != nil {
				return FetchResult{}, fmt.Errorf("error storing water level for %s: %w", stationCode, err)
			}
			level := float64(*rec.Level)
			reading.WaterLevel = &level
			reading.WaterLevelAt = &at
			if created {
				stored = true
				slog.Info("stored new water level", "station", stationCode, "measured_at", at)
			} else {
				duplicate = true
				slog.Info("water level already stored", "station", stationCode, "measured_at", at)
			}
		}
	}

	if rec.Flow != nil {
		at, err := timeutil.Normalize(rec.FlowDate, now)
		switch {
		case err != nil:
			slog.Warn("dropping flow reading", "station", stationCode, "timestamp", rec.FlowDate, "error", err)
			rejected = true
		case at.IsZero():
		default:
			created, err := c.measurements.AddFlow(ctx, stationCode, at, float64(*rec.Flow))
			if err != nil {
				return FetchResult{}, fmt.Errorf("error storing flow for %s: %w", stationCode, err)
			}
			flow := float64(*rec.Flow)
			reading.Flow = &flow
			reading.FlowAt = &at
			if created {
				stored = true
				slog.Info("stored new flow", "station", stationCode, "measured_at", at)
			} else {
				duplicate = true
			}
		}
	}

	switch {
	case stored:
		return FetchResult{Outcome: models.SyncStored, Reading: reading}, nil
	case duplicate:
		return FetchResult{Outcome: models.SyncDuplicate, Reading: reading}, nil
	case rejected:
		return FetchResult{Outcome: models.SyncRejected}, nil
	default:
		slog.Warn("no usable reading for station", "station", stationCode)
		return FetchResult{Outcome: models.SyncEmpty}, nil
	}
}

// FetchWarnings fetches the hydrological warnings dataset. Unlike the
// station endpoints this surfaces transport and decode failures: the
// warnings sync is synchronous from the caller's perspective. Warnings with
// unparseable timestamps are skipped and logged.
func (c *Client) FetchWarnings(ctx context.Context) ([]models.HydroWarning, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.warningsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating warnings request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching warnings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("warnings request failed with status %d", resp.StatusCode)
	}

	var records []warningRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("error decoding warnings: %w", err)
	}

	now := time.Now()
	warnings := make([]models.HydroWarning, 0, len(records))
	for _, rec := range records {
		published, err := timeutil.Normalize(rec.PublishedAt, now)
		if err != nil || published.IsZero() {
			slog.Warn("skipping warning with bad publication time", "number", rec.Number, "timestamp", rec.PublishedAt)
			continue
		}

		// Validity windows legitimately extend into the future; parse
		// without the future-date policy.
		validFrom, err := parseValidity(rec.ValidFrom)
		if err != nil {
			slog.Warn("skipping warning with bad validity start", "number", rec.Number, "timestamp", rec.ValidFrom)
			continue
		}
		validTo, err := parseValidity(rec.ValidTo)
		if err != nil {
			slog.Warn("skipping warning with bad validity end", "number", rec.Number, "timestamp", rec.ValidTo)
			continue
		}

		w := models.HydroWarning{
			PublishedAt: published,
			Severity:    rec.Severity,
			ValidFrom:   validFrom,
			ValidTo:     validTo,
			Probability: rec.Probability,
			Number:      rec.Number,
			Office:      rec.Office,
			Event:       rec.Event,
			Description: rec.Description,
			Comment:     rec.Comment,
		}
		for _, a := range rec.Areas {
			w.Areas = append(w.Areas, models.WarningArea{
				Province:       a.Province,
				Description:    a.Description,
				CatchmentCodes: a.CatchmentCodes,
			})
		}
		warnings = append(warnings, w)
	}

	return warnings, nil
}

func parseValidity(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("validity timestamp %q matches no known layout", raw)
}
