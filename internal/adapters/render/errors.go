package render

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidSettings is returned by New when chart settings are unusable.
	ErrInvalidSettings = errors.New("invalid chart settings")
	// ErrInvalidColor is returned for a colour that is not #rgb or #rrggbb.
	ErrInvalidColor = errors.New("invalid colour")
	// ErrEncode wraps failures while producing the PNG.
	ErrEncode = errors.New("encode chart")
)
