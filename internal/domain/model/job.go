package model

// Job is a single file queued for optimisation.
type Job struct {
	ID   string // unique id, also used for temporary artefact names
	Path string // file to optimise in place
	Size int64  // size in bytes at discovery time
}
