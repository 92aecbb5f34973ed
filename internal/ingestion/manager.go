// Package ingestion drives the IMGW synchronization pipeline: it fans
// station fetches out of bulk sync runs, records per-run tallies, and keeps
// one bad station from aborting a batch.
package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/radini5948/Bieszczady/internal/config"
	"github.com/radini5948/Bieszczady/internal/imgw"
	"github.com/radini5948/Bieszczady/internal/models"
	"github.com/radini5948/Bieszczady/internal/repository"
	"github.com/radini5948/Bieszczady/internal/worker"
)

// Upstream is the slice of the IMGW client the orchestrator drives.
type Upstream interface {
	ListStations(ctx context.Context) ([]models.Station, []imgw.StationError)
	GetStationData(ctx context.Context, stationCode string, days int) (imgw.FetchResult, error)
	FetchWarnings(ctx context.Context) ([]models.HydroWarning, error)
}

type syncRun struct {
	jobID    string
	stations []models.Station
	days     int
}

type Manager struct {
	cfg      *config.Config
	client   Upstream
	warnings repository.WarningRepository
	jobs     *jobRegistry
	pool     *worker.Pool[*syncRun]
}

func NewManager(cfg *config.Config, client Upstream, warnings repository.WarningRepository) *Manager {
	return &Manager{
		cfg:      cfg,
		client:   client,
		warnings: warnings,
		jobs:     newJobRegistry(),
	}
}

// Start brings up the pool that executes queued sync runs. The context
// bounds all background work; runs interrupted by its cancellation finish
// in the failed state.
func (m *Manager) Start(ctx context.Context) {
	m.pool = worker.NewPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, m.runSync)
	m.pool.Start(ctx)
}

func (m *Manager) Stop() {
	m.pool.Stop()
	slog.Info("ingestion manager stopped")
}

// StartSyncAll lists the stations synchronously (upserting each via the
// station store), records a job for the bulk run and queues it. The caller
// gets the job back immediately and polls Job for progress.
func (m *Manager) StartSyncAll(ctx context.Context, days int) *SyncJob {
	if days <= 0 {
		days = m.cfg.Sync.Days
	}

	stations, listErrors := m.client.ListStations(ctx)
	job := m.jobs.create(len(stations), listErrors)

	m.pool.Submit(&syncRun{jobID: job.ID, stations: stations, days: days})

	slog.Info("scheduled bulk sync", "job", job.ID, "stations", len(stations))
	return job
}

// Job returns a point-in-time copy of a sync job's record.
func (m *Manager) Job(id string) (*SyncJob, bool) {
	return m.jobs.get(id)
}

// runSync processes one bulk run's stations sequentially. A station's
// failure is recorded and iteration continues; there are no in-run retries.
func (m *Manager) runSync(ctx context.Context, run *syncRun) {
	for _, st := range run.stations {
		if ctx.Err() != nil {
			m.finish(run.jobID, JobFailed)
			slog.Warn("bulk sync interrupted", "job", run.jobID)
			return
		}

		result, err := m.client.GetStationData(ctx, st.Code, run.days)
		if err != nil {
			slog.Error("station sync failed", "job", run.jobID, "station", st.Code, "error", err)
			m.jobs.update(run.jobID, func(j *SyncJob) {
				j.Errors = append(j.Errors, imgw.StationError{StationCode: st.Code, Err: err.Error()})
			})
			continue
		}

		m.jobs.update(run.jobID, func(j *SyncJob) {
			switch result.Outcome {
			case models.SyncStored:
				j.Stored++
			case models.SyncDuplicate:
				j.Duplicates++
			case models.SyncRejected:
				j.Rejected++
			default:
				j.Empty++
			}
		})
	}

	m.finish(run.jobID, JobSucceeded)

	if job, ok := m.jobs.get(run.jobID); ok {
		slog.Info("bulk sync finished",
			"job", job.ID,
			"stations", job.StationsScheduled,
			"stored", job.Stored,
			"duplicates", job.Duplicates,
			"rejected", job.Rejected,
			"empty", job.Empty,
			"errors", len(job.Errors),
		)
	}
}

func (m *Manager) finish(jobID string, state JobState) {
	m.jobs.update(jobID, func(j *SyncJob) {
		now := time.Now()
		j.State = state
		j.FinishedAt = &now
	})
}

// SyncStation syncs a single station synchronously. Errors surface to the
// caller: this path reports failures instead of swallowing them.
func (m *Manager) SyncStation(ctx context.Context, stationCode string, days int) (imgw.FetchResult, error) {
	if days <= 0 {
		days = m.cfg.Sync.Days
	}
	return m.client.GetStationData(ctx, stationCode, days)
}

// SyncWarnings replaces the stored warnings dataset with the upstream's
// current one and returns the number of warnings stored.
func (m *Manager) SyncWarnings(ctx context.Context) (int, error) {
	warnings, err := m.client.FetchWarnings(ctx)
	if err != nil {
		return 0, err
	}

	count, err := m.warnings.ReplaceWarnings(ctx, warnings)
	if err != nil {
		return 0, err
	}

	slog.Info("warnings synchronized", "count", count)
	return count, nil
}
