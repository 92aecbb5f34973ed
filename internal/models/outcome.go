package models

// SyncOutcome is the terminal state of one station's sync attempt.
type SyncOutcome string

const (
	// SyncStored means a new measurement row was durably created.
	SyncStored SyncOutcome = "stored"
	// SyncDuplicate means the reading already existed for (station, timestamp).
	SyncDuplicate SyncOutcome = "duplicate"
	// SyncRejected means the reading's timestamp was future-dated or unparseable.
	SyncRejected SyncOutcome = "rejected"
	// SyncEmpty means the upstream returned no usable data or a bad status.
	SyncEmpty SyncOutcome = "empty"
)
