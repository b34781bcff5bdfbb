package csvload

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrParse marks a malformed row or header; the message carries the line number.
	ErrParse = errors.New("parse score data")
	// ErrEmpty is returned when the input has no header row.
	ErrEmpty = errors.New("empty score data")
)
