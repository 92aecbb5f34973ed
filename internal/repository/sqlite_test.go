package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/radini5948/Bieszczady/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testStation() *models.Station {
	return &models.Station{
		Code:      "150190050",
		Name:      "SANOK",
		River:     "San",
		Province:  "podkarpackie",
		Latitude:  49.5577,
		Longitude: 22.2047,
	}
}

func TestGetOrCreate_CreatesStation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, err := db.GetOrCreate(ctx, testStation())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if created.Code != "150190050" {
		t.Errorf("expected code 150190050, got %s", created.Code)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := db.GetByCode(ctx, "150190050")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if got.Name != "SANOK" || got.River != "San" || got.Province != "podkarpackie" {
		t.Errorf("unexpected station attributes: %+v", got)
	}
}

func TestGetOrCreate_NeverMutatesExisting(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetOrCreate(ctx, testStation()); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	// Same code, differing incidental attributes: the original row wins.
	altered := testStation()
	altered.Name = "SANNOK"
	altered.Latitude = 0.1

	got, err := db.GetOrCreate(ctx, altered)
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if got.Name != "SANOK" {
		t.Errorf("expected original name SANOK, got %s", got.Name)
	}
	if got.Latitude != 49.5577 {
		t.Errorf("expected original latitude, got %v", got.Latitude)
	}
}

func TestGetByCode_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetByCode(context.Background(), "nonexistent")
	if !errors.Is(err, ErrStationNotFound) {
		t.Errorf("expected ErrStationNotFound, got %v", err)
	}
}

func TestListStations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := testStation()
	second := testStation()
	second.Code = "150190060"
	second.Name = "LESKO"

	for _, st := range []*models.Station{first, second} {
		if _, err := db.GetOrCreate(ctx, st); err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
	}

	stations, err := db.ListStations(ctx)
	if err != nil {
		t.Fatalf("ListStations failed: %v", err)
	}
	if len(stations) != 2 {
		t.Errorf("expected 2 stations, got %d", len(stations))
	}
}

func TestAddWaterLevel_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetOrCreate(ctx, testStation()); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	measuredAt := time.Date(2024, 1, 15, 8, 0, 0, 0, time.Local)

	created, err := db.AddWaterLevel(ctx, "150190050", measuredAt, 123.4)
	if err != nil {
		t.Fatalf("AddWaterLevel failed: %v", err)
	}
	if !created {
		t.Error("expected first insert to report a new row")
	}

	created, err = db.AddWaterLevel(ctx, "150190050", measuredAt, 123.4)
	if err != nil {
		t.Fatalf("second AddWaterLevel failed: %v", err)
	}
	if created {
		t.Error("expected duplicate insert to report not newly added")
	}

	got, err := db.GetMeasurements(ctx, "150190050", measuredAt.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("GetMeasurements failed: %v", err)
	}
	if len(got.WaterLevels) != 1 {
		t.Fatalf("expected exactly 1 water level row, got %d", len(got.WaterLevels))
	}
	if got.WaterLevels[0].Level != 123.4 {
		t.Errorf("expected level 123.4, got %v", got.WaterLevels[0].Level)
	}
	if !got.WaterLevels[0].MeasuredAt.Equal(measuredAt) {
		t.Errorf("expected measured_at %v, got %v", measuredAt, got.WaterLevels[0].MeasuredAt)
	}
}

func TestAddWaterLevel_UnknownStationRejected(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	measuredAt := time.Date(2024, 1, 15, 8, 0, 0, 0, time.Local)

	created, err := db.AddWaterLevel(ctx, "999999999", measuredAt, 123.4)
	if created {
		t.Error("expected no row for a station that does not exist")
	}
	if !errors.Is(err, ErrStationNotFound) {
		t.Errorf("expected ErrStationNotFound, got %v", err)
	}

	got, err := db.GetMeasurements(ctx, "999999999", measuredAt.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("GetMeasurements failed: %v", err)
	}
	if len(got.WaterLevels) != 0 {
		t.Errorf("expected no orphan rows, got %d", len(got.WaterLevels))
	}
}

func TestAddFlow_IndependentOfWaterLevel(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetOrCreate(ctx, testStation()); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	measuredAt := time.Date(2024, 1, 15, 8, 0, 0, 0, time.Local)

	// Same (station, timestamp) key in both kinds stores two rows.
	if created, err := db.AddWaterLevel(ctx, "150190050", measuredAt, 123.4); err != nil || !created {
		t.Fatalf("AddWaterLevel = (%v, %v)", created, err)
	}
	if created, err := db.AddFlow(ctx, "150190050", measuredAt, 45.6); err != nil || !created {
		t.Fatalf("AddFlow = (%v, %v)", created, err)
	}

	got, err := db.GetMeasurements(ctx, "150190050", measuredAt.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("GetMeasurements failed: %v", err)
	}
	if len(got.WaterLevels) != 1 || len(got.Flows) != 1 {
		t.Errorf("expected 1 row of each kind, got %d water levels and %d flows",
			len(got.WaterLevels), len(got.Flows))
	}
	if got.Flows[0].Flow != 45.6 {
		t.Errorf("expected flow 45.6, got %v", got.Flows[0].Flow)
	}
}

func TestGetMeasurements_WindowFilter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetOrCreate(ctx, testStation()); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	now := time.Now()
	recent := now.Add(-2 * time.Hour)
	stale := now.AddDate(0, 0, -30)

	for _, at := range []time.Time{recent, stale} {
		if _, err := db.AddWaterLevel(ctx, "150190050", at, 100); err != nil {
			t.Fatalf("AddWaterLevel failed: %v", err)
		}
	}

	got, err := db.GetMeasurements(ctx, "150190050", now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("GetMeasurements failed: %v", err)
	}
	if len(got.WaterLevels) != 1 {
		t.Errorf("expected stale row filtered out, got %d rows", len(got.WaterLevels))
	}
}

func TestGetMeasurements_EmptyStation(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetMeasurements(context.Background(), "150190050", time.Now().AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("GetMeasurements failed: %v", err)
	}
	if got.WaterLevels == nil || got.Flows == nil {
		t.Error("expected empty slices, not nil")
	}
	if len(got.WaterLevels) != 0 || len(got.Flows) != 0 {
		t.Error("expected no rows for an unused station")
	}
}

func testWarning(number string) models.HydroWarning {
	return models.HydroWarning{
		PublishedAt: time.Date(2024, 1, 14, 10, 0, 0, 0, time.Local),
		Severity:    "2",
		ValidFrom:   time.Date(2024, 1, 14, 12, 0, 0, 0, time.Local),
		ValidTo:     time.Date(2024, 1, 16, 12, 0, 0, 0, time.Local),
		Probability: "80",
		Number:      number,
		Office:      "Biuro Prognoz Hydrologicznych w Krakowie",
		Event:       "gwałtowne wzrosty stanów wody",
		Description: "W obszarach występowania prognozowanych opadów burzowych...",
		Areas: []models.WarningArea{
			{
				Province:       "podkarpackie",
				Description:    "zlewnia Sanu",
				CatchmentCodes: []string{"223", "224"},
			},
		},
	}
}

func TestReplaceWarnings_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	count, err := db.ReplaceWarnings(ctx, []models.HydroWarning{testWarning("HYDRO/1"), testWarning("HYDRO/2")})
	if err != nil {
		t.Fatalf("ReplaceWarnings failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 warnings stored, got %d", count)
	}

	warnings, err := db.ListWarnings(ctx)
	if err != nil {
		t.Fatalf("ListWarnings failed: %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}
	if len(warnings[0].Areas) != 1 {
		t.Fatalf("expected 1 area, got %d", len(warnings[0].Areas))
	}
	area := warnings[0].Areas[0]
	if area.Province != "podkarpackie" {
		t.Errorf("unexpected area province: %s", area.Province)
	}
	if len(area.CatchmentCodes) != 2 || area.CatchmentCodes[0] != "223" {
		t.Errorf("unexpected catchment codes: %v", area.CatchmentCodes)
	}
}

func TestReplaceWarnings_ReplacesDataset(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.ReplaceWarnings(ctx, []models.HydroWarning{testWarning("HYDRO/1"), testWarning("HYDRO/2")}); err != nil {
		t.Fatalf("ReplaceWarnings failed: %v", err)
	}
	if _, err := db.ReplaceWarnings(ctx, []models.HydroWarning{testWarning("HYDRO/3")}); err != nil {
		t.Fatalf("second ReplaceWarnings failed: %v", err)
	}

	warnings, err := db.ListWarnings(ctx)
	if err != nil {
		t.Fatalf("ListWarnings failed: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning after replace, got %d", len(warnings))
	}
	if warnings[0].Number != "HYDRO/3" {
		t.Errorf("expected HYDRO/3, got %s", warnings[0].Number)
	}
}
