// flood-sync runs the IMGW synchronization on a cron schedule, or once with
// -once. It shares the store with the flood-monitor server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/radini5948/Bieszczady/internal/config"
	"github.com/radini5948/Bieszczady/internal/imgw"
	"github.com/radini5948/Bieszczady/internal/ingestion"
	"github.com/radini5948/Bieszczady/internal/logging"
	"github.com/radini5948/Bieszczady/internal/models"
	"github.com/radini5948/Bieszczady/internal/repository"
)

func main() {
	once := flag.Bool("once", false, "run a single sync and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := imgw.NewClient(cfg.IMGW, db, db)
	mgr := ingestion.NewManager(cfg, client, db)

	if *once || cfg.Sync.Schedule == "" {
		runSync(ctx, cfg, client, mgr)
		return
	}

	// Sync immediately on startup, then on the configured schedule.
	runSync(ctx, cfg, client, mgr)

	c := cron.New()
	if _, err := c.AddFunc(cfg.Sync.Schedule, func() {
		runSync(ctx, cfg, client, mgr)
	}); err != nil {
		logging.Fatalf("Failed to set up cron job: %v", err)
	}

	slog.Info("sync scheduled", "schedule", cfg.Sync.Schedule)
	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")
	cancel()
	<-c.Stop().Done()
}

// runSync performs one full pass: station list, every station's current
// reading, then the warnings dataset. Per-station failures never stop the
// pass.
func runSync(ctx context.Context, cfg *config.Config, client *imgw.Client, mgr *ingestion.Manager) {
	stations, listErrors := client.ListStations(ctx)
	slog.Info("station list synchronized", "stations", len(stations), "errors", len(listErrors))

	var stored, duplicates, rejected, empty, failed int
	for _, st := range stations {
		result, err := client.GetStationData(ctx, st.Code, cfg.Sync.Days)
		if err != nil {
			slog.Error("station sync failed", "station", st.Code, "error", err)
			failed++
			continue
		}
		switch result.Outcome {
		case models.SyncStored:
			stored++
		case models.SyncDuplicate:
			duplicates++
		case models.SyncRejected:
			rejected++
		default:
			empty++
		}
	}

	slog.Info("measurement sync finished",
		"stations", len(stations),
		"stored", stored,
		"duplicates", duplicates,
		"rejected", rejected,
		"empty", empty,
		"failed", failed,
	)

	if _, err := mgr.SyncWarnings(ctx); err != nil {
		slog.Error("warnings sync failed", "error", err)
	}
}
