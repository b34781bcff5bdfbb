package toolchain

import "errors"

// Sentinel errors for external tools.
var (
	// ErrNotFound is returned when a tool is not on PATH.
	ErrNotFound = errors.New("tool not found on PATH")
	// ErrFailed is returned when a tool exits non-zero or cannot start.
	ErrFailed = errors.New("tool failed")
)
