package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/radini5948/Bieszczady/internal/models"
)

func (s *SQLiteDB) ReplaceWarnings(ctx context.Context, warnings []models.HydroWarning) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM warning_areas`); err != nil {
		return 0, fmt.Errorf("error clearing warning areas: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM hydro_warnings`); err != nil {
		return 0, fmt.Errorf("error clearing warnings: %w", err)
	}

	for _, w := range warnings {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO hydro_warnings (published_at, severity, valid_from, valid_to, probability, number, office, event, description, comment)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			w.PublishedAt, w.Severity, w.ValidFrom, w.ValidTo,
			w.Probability, w.Number, w.Office, w.Event, w.Description, w.Comment,
		)
		if err != nil {
			return 0, fmt.Errorf("error inserting warning %s: %w", w.Number, err)
		}

		warningID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("error reading warning id: %w", err)
		}

		for _, a := range w.Areas {
			codes, err := json.Marshal(a.CatchmentCodes)
			if err != nil {
				return 0, fmt.Errorf("error encoding catchment codes: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO warning_areas (warning_id, province, description, catchment_codes)
				VALUES (?, ?, ?, ?)`,
				warningID, a.Province, a.Description, string(codes),
			); err != nil {
				return 0, fmt.Errorf("error inserting warning area: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing warnings: %w", err)
	}

	return len(warnings), nil
}

func (s *SQLiteDB) ListWarnings(ctx context.Context) ([]models.HydroWarning, error) {
	warnings, index, err := s.queryWarnings(ctx)
	if err != nil {
		return nil, err
	}

	areas, err := s.queryWarningAreas(ctx)
	if err != nil {
		return nil, err
	}

	for _, a := range areas {
		if i, ok := index[a.WarningID]; ok {
			warnings[i].Areas = append(warnings[i].Areas, a)
		}
	}

	return warnings, nil
}

func (s *SQLiteDB) queryWarnings(ctx context.Context) ([]models.HydroWarning, map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, published_at, severity, valid_from, valid_to, probability, number, office, event, description, comment
		FROM hydro_warnings`)
	if err != nil {
		return nil, nil, fmt.Errorf("error listing warnings: %w", err)
	}
	defer rows.Close()

	warnings := []models.HydroWarning{}
	index := make(map[int64]int)
	for rows.Next() {
		var w models.HydroWarning
		if err := rows.Scan(&w.ID, &w.PublishedAt, &w.Severity, &w.ValidFrom, &w.ValidTo,
			&w.Probability, &w.Number, &w.Office, &w.Event, &w.Description, &w.Comment); err != nil {
			return nil, nil, fmt.Errorf("error scanning warning row: %w", err)
		}
		w.Areas = []models.WarningArea{}
		index[w.ID] = len(warnings)
		warnings = append(warnings, w)
	}

	return warnings, index, rows.Err()
}

func (s *SQLiteDB) queryWarningAreas(ctx context.Context) ([]models.WarningArea, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, warning_id, province, description, catchment_codes
		FROM warning_areas`)
	if err != nil {
		return nil, fmt.Errorf("error listing warning areas: %w", err)
	}
	defer rows.Close()

	var areas []models.WarningArea
	for rows.Next() {
		var a models.WarningArea
		var codes string
		if err := rows.Scan(&a.ID, &a.WarningID, &a.Province, &a.Description, &codes); err != nil {
			return nil, fmt.Errorf("error scanning warning area row: %w", err)
		}
		if err := json.Unmarshal([]byte(codes), &a.CatchmentCodes); err != nil {
			return nil, fmt.Errorf("error decoding catchment codes: %w", err)
		}
		areas = append(areas, a)
	}

	return areas, rows.Err()
}
