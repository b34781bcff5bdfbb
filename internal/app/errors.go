package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrNoRecords is returned when no complete record is left to chart.
	ErrNoRecords = errors.New("no complete score records")
	// ErrUnknownGraphType is returned for a graph type other than radar or scatter.
	ErrUnknownGraphType = errors.New("unknown graph type")
	// ErrUnknownRecord is returned when a requested identifier is not in the data.
	ErrUnknownRecord = errors.New("unknown record")
)
