package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/radini5948/Bieszczady/internal/config"
	"github.com/radini5948/Bieszczady/internal/imgw"
	"github.com/radini5948/Bieszczady/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeUpstream implements Upstream with canned per-station behavior.
type fakeUpstream struct {
	mu         sync.Mutex
	stations   []models.Station
	listErrors []imgw.StationError
	results    map[string]imgw.FetchResult
	failures   map[string]error
	warnings   []models.HydroWarning
	fetched    []string
}

func (f *fakeUpstream) ListStations(ctx context.Context) ([]models.Station, []imgw.StationError) {
	return f.stations, f.listErrors
}

func (f *fakeUpstream) GetStationData(ctx context.Context, stationCode string, days int) (imgw.FetchResult, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, stationCode)
	f.mu.Unlock()

	if err, ok := f.failures[stationCode]; ok {
		return imgw.FetchResult{}, err
	}
	if res, ok := f.results[stationCode]; ok {
		return res, nil
	}
	return imgw.FetchResult{Outcome: models.SyncEmpty}, nil
}

func (f *fakeUpstream) FetchWarnings(ctx context.Context) ([]models.HydroWarning, error) {
	return f.warnings, nil
}

func (f *fakeUpstream) fetchedCodes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

// fakeWarningRepo counts what ReplaceWarnings receives.
type fakeWarningRepo struct {
	replaced int
}

func (f *fakeWarningRepo) ReplaceWarnings(ctx context.Context, warnings []models.HydroWarning) (int, error) {
	f.replaced = len(warnings)
	return len(warnings), nil
}

func (f *fakeWarningRepo) ListWarnings(ctx context.Context) ([]models.HydroWarning, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Sync: config.SyncConfig{Days: 7},
		Worker: config.WorkerConfig{
			Count:      1,
			BufferSize: 4,
		},
	}
}

func stations(codes ...string) []models.Station {
	out := make([]models.Station, 0, len(codes))
	for _, code := range codes {
		out = append(out, models.Station{Code: code})
	}
	return out
}

func waitForJob(t *testing.T, mgr *Manager, id string) *SyncJob {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := mgr.Job(id)
		if !ok {
			t.Fatalf("job %s disappeared", id)
		}
		if job.State != JobRunning {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never finished", id)
	return nil
}

func TestStartSyncAll_TalliesOutcomes(t *testing.T) {
	upstream := &fakeUpstream{
		stations: stations("a", "b", "c", "d"),
		results: map[string]imgw.FetchResult{
			"a": {Outcome: models.SyncStored},
			"b": {Outcome: models.SyncDuplicate},
			"c": {Outcome: models.SyncRejected},
			"d": {Outcome: models.SyncEmpty},
		},
	}

	mgr := NewManager(testConfig(), upstream, &fakeWarningRepo{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	job := mgr.StartSyncAll(ctx, 7)
	if job.StationsScheduled != 4 {
		t.Errorf("expected 4 stations scheduled, got %d", job.StationsScheduled)
	}

	done := waitForJob(t, mgr, job.ID)
	if done.State != JobSucceeded {
		t.Errorf("expected job succeeded, got %s", done.State)
	}
	if done.Stored != 1 || done.Duplicates != 1 || done.Rejected != 1 || done.Empty != 1 {
		t.Errorf("unexpected tallies: %+v", done)
	}
	if done.FinishedAt == nil {
		t.Error("expected FinishedAt to be set")
	}
}

func TestStartSyncAll_OneBadStationDoesNotAbort(t *testing.T) {
	upstream := &fakeUpstream{
		stations: stations("bad", "good1", "good2"),
		failures: map[string]error{
			"bad": errors.New("store exploded"),
		},
		results: map[string]imgw.FetchResult{
			"good1": {Outcome: models.SyncStored},
			"good2": {Outcome: models.SyncStored},
		},
	}

	mgr := NewManager(testConfig(), upstream, &fakeWarningRepo{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	job := mgr.StartSyncAll(ctx, 7)
	done := waitForJob(t, mgr, job.ID)

	if done.Stored != 2 {
		t.Errorf("expected both good stations synced, got %d", done.Stored)
	}
	if len(done.Errors) != 1 || done.Errors[0].StationCode != "bad" {
		t.Errorf("expected the bad station's error collected, got %v", done.Errors)
	}

	fetched := upstream.fetchedCodes()
	if len(fetched) != 3 {
		t.Errorf("expected all 3 stations attempted, got %v", fetched)
	}
}

func TestStartSyncAll_CarriesListErrors(t *testing.T) {
	upstream := &fakeUpstream{
		stations:   stations("a"),
		listErrors: []imgw.StationError{{StationCode: "broken", Err: "incomplete station record"}},
		results: map[string]imgw.FetchResult{
			"a": {Outcome: models.SyncStored},
		},
	}

	mgr := NewManager(testConfig(), upstream, &fakeWarningRepo{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	job := mgr.StartSyncAll(ctx, 7)
	done := waitForJob(t, mgr, job.ID)

	if len(done.Errors) != 1 || done.Errors[0].StationCode != "broken" {
		t.Errorf("expected list-sync error carried into the job, got %v", done.Errors)
	}
}

func TestJob_UnknownID(t *testing.T) {
	mgr := NewManager(testConfig(), &fakeUpstream{}, &fakeWarningRepo{})

	if _, ok := mgr.Job("nope"); ok {
		t.Error("expected unknown job to report not found")
	}
}

func TestSyncStation_PropagatesErrors(t *testing.T) {
	upstream := &fakeUpstream{
		failures: map[string]error{
			"a": errors.New("store exploded"),
		},
	}
	mgr := NewManager(testConfig(), upstream, &fakeWarningRepo{})

	if _, err := mgr.SyncStation(context.Background(), "a", 7); err == nil {
		t.Error("expected error to surface on the synchronous path")
	}
}

func TestSyncWarnings_ReplacesDataset(t *testing.T) {
	upstream := &fakeUpstream{
		warnings: []models.HydroWarning{{Number: "HYDRO/1"}, {Number: "HYDRO/2"}},
	}
	warningRepo := &fakeWarningRepo{}
	mgr := NewManager(testConfig(), upstream, warningRepo)

	count, err := mgr.SyncWarnings(context.Background())
	if err != nil {
		t.Fatalf("SyncWarnings failed: %v", err)
	}
	if count != 2 || warningRepo.replaced != 2 {
		t.Errorf("expected 2 warnings replaced, got count=%d replaced=%d", count, warningRepo.replaced)
	}
}

func TestManager_GracefulStop(t *testing.T) {
	upstream := &fakeUpstream{stations: stations("a", "b")}
	mgr := NewManager(testConfig(), upstream, &fakeWarningRepo{})

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	mgr.StartSyncAll(ctx, 7)

	cancel()

	done := make(chan struct{})
	go func() {
		mgr.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("manager.Stop() timed out - possible goroutine leak")
	}
}
