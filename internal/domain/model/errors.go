package model

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrIncompleteRecord is returned when a record lacks a score for one of the axes.
	ErrIncompleteRecord = errors.New("incomplete record")
	// ErrInvalidRecord is returned when a record cannot be constructed.
	ErrInvalidRecord = errors.New("invalid record")
)
