package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/radini5948/Bieszczady/internal/imgw"
	"github.com/radini5948/Bieszczady/internal/ingestion"
	"github.com/radini5948/Bieszczady/internal/repository"
)

// Syncer is the slice of the ingestion manager the HTTP surface drives.
type Syncer interface {
	StartSyncAll(ctx context.Context, days int) *ingestion.SyncJob
	Job(id string) (*ingestion.SyncJob, bool)
	SyncStation(ctx context.Context, stationCode string, days int) (imgw.FetchResult, error)
	SyncWarnings(ctx context.Context) (int, error)
}

// Pinger reports store reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	stations     repository.StationRepository
	measurements repository.MeasurementRepository
	warnings     repository.WarningRepository
	syncer       Syncer
	pinger       Pinger
	defaultDays  int
}

func NewHandler(
	stations repository.StationRepository,
	measurements repository.MeasurementRepository,
	warnings repository.WarningRepository,
	syncer Syncer,
	pinger Pinger,
	defaultDays int,
) *Handler {
	return &Handler{
		stations:     stations,
		measurements: measurements,
		warnings:     warnings,
		syncer:       syncer,
		pinger:       pinger,
		defaultDays:  defaultDays,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.root)
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/stations", h.getStations)
	api.GET("/stations/:id", h.getStationMeasurements)
	api.GET("/warnings", h.getWarnings)
	api.POST("/sync/all", h.syncAll)
	api.GET("/sync/jobs/:id", h.getSyncJob)
	api.POST("/sync/station/:id", h.syncStation)
	api.POST("/sync/warnings", h.syncWarnings)
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Flood Monitoring System API"})
}

func (h *Handler) health(c *gin.Context) {
	status := gin.H{
		"status":   "healthy",
		"database": "connected",
	}

	if h.pinger != nil {
		if err := h.pinger.Ping(c.Request.Context()); err != nil {
			status["status"] = "unhealthy"
			status["database"] = "error: " + err.Error()
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) getStations(c *gin.Context) {
	stations, err := h.stations.ListStations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch stations",
		})
		return
	}

	fc := toGeoJSON(stations)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) getStationMeasurements(c *gin.Context) {
	stationCode := c.Param("id")
	days := h.queryDays(c)
	since := time.Now().AddDate(0, 0, -days)

	if _, err := h.stations.GetByCode(c.Request.Context(), stationCode); err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown station"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	measurements, err := h.measurements.GetMeasurements(c.Request.Context(), stationCode, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, measurements)
}

func (h *Handler) getWarnings(c *gin.Context) {
	warnings, err := h.warnings.ListWarnings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch warnings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"warnings": warnings})
}

func (h *Handler) syncAll(c *gin.Context) {
	job := h.syncer.StartSyncAll(c.Request.Context(), h.queryDays(c))

	c.JSON(http.StatusAccepted, gin.H{
		"message":            "bulk synchronization started",
		"job_id":             job.ID,
		"stations_scheduled": job.StationsScheduled,
	})
}

func (h *Handler) getSyncJob(c *gin.Context) {
	job, ok := h.syncer.Job(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *Handler) syncStation(c *gin.Context) {
	stationCode := c.Param("id")

	result, err := h.syncer.SyncStation(c.Request.Context(), stationCode, h.queryDays(c))
	if err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown station"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"station": stationCode,
		"outcome": result.Outcome,
		"reading": result.Reading,
	})
}

func (h *Handler) syncWarnings(c *gin.Context) {
	count, err := h.syncer.SyncWarnings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "hydrological warnings synchronized",
		"count":   count,
	})
}

func (h *Handler) queryDays(c *gin.Context) int {
	if d := c.Query("days"); d != "" {
		if days, err := strconv.Atoi(d); err == nil && days > 0 && days <= 365 {
			return days
		}
	}
	return h.defaultDays
}
