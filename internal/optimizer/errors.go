package optimizer

import "errors"

// Sentinel errors for the optimiser.
var (
	// ErrMissingTool is returned before any file is touched when a required
	// external tool is not installed.
	ErrMissingTool = errors.New("required tool missing")
	// ErrInvalidSettings is returned for an unusable mode, extension or tool name.
	ErrInvalidSettings = errors.New("invalid optimizer settings")
	// ErrQuantize marks a file whose quantisation failed; the original is kept.
	ErrQuantize = errors.New("quantize failed")
	// ErrDiscover is returned when a root cannot be walked, for example
	// because it does not exist.
	ErrDiscover = errors.New("cannot discover files")
)
