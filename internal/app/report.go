package service

import (
	"context"
	"fmt"

	"github.com/okian/birdplot/internal/domain/geometry"
	"github.com/okian/birdplot/internal/domain/model"
	"github.com/okian/birdplot/pkg/logger"
	"github.com/okian/birdplot/pkg/metrics"
)

// PairOverlap is the overlap between two records' score polygons.
type PairOverlap struct {
	A       string  `yaml:"a"`
	B       string  `yaml:"b"`
	Percent float64 `yaml:"percent"`
}

// Report lists every unordered pair of complete records.
type Report struct {
	Pairs   []PairOverlap `yaml:"pairs"`
	Skipped []Skipped     `yaml:"skipped,omitempty"`
}

// OverlapReport computes the overlap of every pair of complete records in
// input order (i < j).
func (s *Service) OverlapReport(ctx context.Context, records []model.ScoreRecord) (Report, error) {
	complete, skipped := s.partition(ctx, records)
	rep := Report{Skipped: skipped}
	if len(complete) == 0 {
		return rep, ErrNoRecords
	}
	for i := 0; i < len(complete); i++ {
		for j := i + 1; j < len(complete); j++ {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			pct, err := geometry.Overlap(s.axes, complete[i], complete[j])
			if err != nil {
				return rep, err
			}
			metrics.RecordOverlap(pct)
			rep.Pairs = append(rep.Pairs, PairOverlap{A: complete[i].ID(), B: complete[j].ID(), Percent: pct})
		}
	}
	return rep, nil
}

// PairOverlap looks up records a and b by id and returns their overlap.
func (s *Service) PairOverlap(ctx context.Context, records []model.ScoreRecord, a, b string) (PairOverlap, error) {
	ra, err := find(records, a)
	if err != nil {
		return PairOverlap{}, err
	}
	rb, err := find(records, b)
	if err != nil {
		return PairOverlap{}, err
	}
	pct, err := geometry.Overlap(s.axes, ra, rb)
	if err != nil {
		return PairOverlap{}, fmt.Errorf("overlap %s/%s: %w", a, b, err)
	}
	metrics.RecordOverlap(pct)
	s.logger.Debug(ctx, "pair overlap",
		logger.String("a", ra.ID()),
		logger.String("b", rb.ID()),
		logger.Float64("percent", pct),
	)
	return PairOverlap{A: ra.ID(), B: rb.ID(), Percent: pct}, nil
}

func find(records []model.ScoreRecord, id string) (model.ScoreRecord, error) {
	for _, r := range records {
		if r.ID() == id {
			return r, nil
		}
	}
	return model.ScoreRecord{}, fmt.Errorf("%w: %q", ErrUnknownRecord, id)
}
