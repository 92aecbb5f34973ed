package models

import "time"

// HydroWarning is an advisory issued by IMGW covering a validity window,
// severity degree and a set of affected areas. The warnings dataset is
// replaced wholesale on each sync.
type HydroWarning struct {
	ID          int64         `json:"id"`
	PublishedAt time.Time     `json:"published_at"`
	Severity    string        `json:"severity"`
	ValidFrom   time.Time     `json:"valid_from"`
	ValidTo     time.Time     `json:"valid_to"`
	Probability string        `json:"probability"`
	Number      string        `json:"number"`
	Office      string        `json:"office"`
	Event       string        `json:"event"`
	Description string        `json:"description"`
	Comment     string        `json:"comment,omitempty"`
	Areas       []WarningArea `json:"areas"`
}

// WarningArea is one province-level area covered by a warning, with the
// catchment codes it affects.
type WarningArea struct {
	ID             int64    `json:"-"`
	WarningID      int64    `json:"-"`
	Province       string   `json:"province"`
	Description    string   `json:"description"`
	CatchmentCodes []string `json:"catchment_codes"`
}
