// Package timeutil normalizes the heterogeneous timestamp strings the IMGW
// feed emits into canonical timestamps.
package timeutil

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrUnparseable signals that no known layout matched the input.
	ErrUnparseable = errors.New("timestamp matches no known layout")
	// ErrFutureDated signals a timestamp later than the evaluation instant.
	ErrFutureDated = errors.New("timestamp is in the future")
)

// Layouts the feed has been observed to emit. The plain space-separated form
// is by far the most common and is tried first. The fractional-second digits
// are optional when parsing, so these also cover the unfractioned ISO forms.
var layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z",
}

// Normalize parses raw into a canonical timestamp. Empty input yields the
// zero time and no error ("no value"). A timestamp after now is rejected
// with ErrFutureDated: the feed occasionally emits garbage future dates that
// would otherwise poison charts and statistics.
func Normalize(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	cleaned := strings.TrimSuffix(strings.TrimSpace(raw), "+00:00")

	var parsed time.Time
	matched := false
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, cleaned, now.Location())
		if err == nil {
			parsed = t
			matched = true
			break
		}
	}
	if !matched {
		return time.Time{}, ErrUnparseable
	}

	if parsed.After(now) {
		return time.Time{}, ErrFutureDated
	}

	return parsed, nil
}
