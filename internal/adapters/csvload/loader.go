// Package csvload reads score records from CSV files.
package csvload

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/birdplot/internal/domain/model"
	"github.com/okian/birdplot/pkg/logger"
	"github.com/okian/birdplot/pkg/metrics"
)

// Column names understood in the header row. Matching ignores case.
const (
	columnName = "name"
	columnNote = "note"
)

// Loader turns CSV input into score records.
type Loader struct {
	log   logger.Logger
	comma rune
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithComma sets the field delimiter. The default is ','.
func WithComma(r rune) Option {
	return func(ld *Loader) {
		if r != 0 {
			ld.comma = r
		}
	}
}

// New returns a Loader.
func New(opts ...Option) *Loader {
	ld := &Loader{log: logger.Discard(), comma: ','}
	for _, o := range opts {
		o(ld)
	}
	return ld
}

// Load opens path and reads every record from it.
func (ld *Loader) Load(ctx context.Context, path string) ([]model.ScoreRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open score data: %w", err)
	}
	defer func() { _ = f.Close() }()

	recs, err := ld.Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ld.log.Info(ctx, "loaded score data", logger.String("path", path), logger.Int("records", len(recs)))
	return recs, nil
}

// header maps column positions to their meaning.
type header struct {
	name int
	note int
	axes map[model.Axis]int
}

// Read parses CSV from r. The first row is the header; rows after it become
// records in input order. A missing axis column or an empty cell leaves that
// axis unset on the record rather than failing the load.
func (ld *Loader) Read(ctx context.Context, r io.Reader) ([]model.ScoreRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = ld.comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	row, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	h, err := parseHeader(row)
	if err != nil {
		return nil, err
	}
	for _, a := range model.Axes {
		if _, ok := h.axes[a]; !ok {
			ld.log.Warn(ctx, "score column missing, records will be incomplete", logger.String("axis", a.String()))
		}
	}

	var out []model.ScoreRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := h.record(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrParse, line, err)
		}
		out = append(out, rec)
	}
	metrics.RecordRecordsLoaded(len(out))
	return out, nil
}

func parseHeader(row []string) (header, error) {
	h := header{name: -1, note: -1, axes: make(map[model.Axis]int, len(model.Axes))}
	seen := make(map[string]bool, len(row))
	for i, col := range row {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if key == "" {
			continue
		}
		if seen[key] {
			return header{}, fmt.Errorf("%w: line 1: duplicate column %q", ErrParse, col)
		}
		seen[key] = true

		switch key {
		case columnName:
			h.name = i
		case columnNote:
			h.note = i
		default:
			if a, ok := model.ParseAxis(key); ok {
				h.axes[a] = i
			}
		}
	}
	if h.name < 0 {
		return header{}, fmt.Errorf("%w: line 1: no Name column", ErrParse)
	}
	return h, nil
}

func (h header) record(row []string) (model.ScoreRecord, error) {
	name := cell(row, h.name)
	if name == "" {
		return model.ScoreRecord{}, errors.New("empty Name")
	}

	scores := make(map[model.Axis]float64, len(h.axes))
	for _, a := range model.Axes {
		i, ok := h.axes[a]
		if !ok {
			continue
		}
		raw := cell(row, i)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.ScoreRecord{}, fmt.Errorf("%s: %s score %q is not a number", name, a, raw)
		}
		scores[a] = v
	}
	return model.NewScoreRecord(name, cell(row, h.note), scores)
}

// cell returns the trimmed value at i, or "" when the row is short or i < 0.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
