// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Team average identity used for the synthetic profile.
const (
	TeamAverageID   = "Team Average"
	TeamAverageNote = "Team Average Profile"
	unnamedSafeName = "unnamed"
)

// ScoreRecord is one individual's scores across the four axes.
// It is immutable once built; use NewScoreRecord to create one.
type ScoreRecord struct {
	id      string
	note    string
	scores  [len(Axes)]float64
	present [len(Axes)]bool
}

// NewScoreRecord builds a record. Axes absent from scores are recorded as
// missing; the record is still valid but Complete reports false.
func NewScoreRecord(id, note string, scores map[Axis]float64) (ScoreRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ScoreRecord{}, fmt.Errorf("%w: empty identifier", ErrInvalidRecord)
	}

	r := ScoreRecord{id: id, note: strings.TrimSpace(note)}
	for axis, v := range scores {
		if axis < 0 || int(axis) >= len(Axes) {
			return ScoreRecord{}, fmt.Errorf("%w: %s: unknown axis %d", ErrInvalidRecord, id, int(axis))
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return ScoreRecord{}, fmt.Errorf("%w: %s: %s score %v must be a non-negative number", ErrInvalidRecord, id, axis, v)
		}
		r.scores[axis] = v
		r.present[axis] = true
	}
	return r, nil
}

// ID returns the record identifier.
func (r ScoreRecord) ID() string { return r.id }

// Note returns the optional dominant-trait note.
func (r ScoreRecord) Note() string { return r.note }

// Score returns the score for an axis and whether it was supplied.
func (r ScoreRecord) Score(axis Axis) (float64, bool) {
	if axis < 0 || int(axis) >= len(Axes) {
		return 0, false
	}
	return r.scores[axis], r.present[axis]
}

// Complete reports whether every axis has a score.
func (r ScoreRecord) Complete() bool {
	for _, ok := range r.present {
		if !ok {
			return false
		}
	}
	return true
}

// Missing returns the axes without a score, in declaration order.
func (r ScoreRecord) Missing() []Axis {
	var out []Axis
	for _, a := range Axes {
		if !r.present[a] {
			out = append(out, a)
		}
	}
	return out
}

// Title is the chart caption and scatter label: the id, followed by the
// note after a space when one exists.
func (r ScoreRecord) Title() string {
	if r.note == "" {
		return r.id
	}
	return r.id + " " + r.note
}

// TeamAverage returns the per-axis mean over complete records. The second
// return value is false when there is no complete record to average.
func TeamAverage(records []ScoreRecord) (ScoreRecord, bool) {
	var sums [len(Axes)]float64
	n := 0
	for _, r := range records {
		if !r.Complete() {
			continue
		}
		for _, a := range Axes {
			sums[a] += r.scores[a]
		}
		n++
	}
	if n == 0 {
		return ScoreRecord{}, false
	}

	avg := ScoreRecord{id: TeamAverageID, note: TeamAverageNote}
	for _, a := range Axes {
		avg.scores[a] = sums[a] / float64(n)
		avg.present[a] = true
	}
	return avg, true
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SafeName turns an identifier into a string usable as part of a file name.
func SafeName(id string) string {
	s := unsafeNameChars.ReplaceAllString(strings.TrimSpace(id), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return unnamedSafeName
	}
	return s
}
