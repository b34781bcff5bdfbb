package optimizer

import (
	"fmt"
	"runtime"
	"strings"
)

// Mode selects the per-file pipeline.
type Mode string

// Supported modes.
const (
	// ModeQuantize runs the palette quantiser, then the lossless re-compressor.
	ModeQuantize Mode = "quantize"
	// ModeStrip strips metadata, caps the size and reduces bit depth in place.
	ModeStrip Mode = "strip"
)

// ParseMode accepts quantize or strip in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeQuantize, ModeStrip:
		return m, nil
	default:
		return "", fmt.Errorf("%w: mode %q (want quantize or strip)", ErrInvalidSettings, s)
	}
}

// Settings configures an Optimizer.
type Settings struct {
	Mode            Mode
	Extension       string // matched case-insensitively, with or without the dot
	Quantizer       string
	Quality         string // pngquant --quality range, e.g. "65-80"
	Compressor      string
	CompressorLevel int
	Stripper        string
	MaxDimension    int // longest side after strip mode, in pixels
	Workers         int
	QueueSize       int
}

// DefaultSettings returns the stock tool chain.
func DefaultSettings() Settings {
	return Settings{
		Mode:            ModeQuantize,
		Extension:       ".png",
		Quantizer:       "pngquant",
		Quality:         "65-80",
		Compressor:      "oxipng",
		CompressorLevel: 4,
		Stripper:        "mogrify",
		MaxDimension:    1024,
		Workers:         runtime.NumCPU(),
		QueueSize:       256,
	}
}

// Validate checks the settings and normalises the extension.
func (s *Settings) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	ext := strings.TrimSpace(s.Extension)
	if ext == "" || ext == "." {
		return fmt.Errorf("%w: empty extension", ErrInvalidSettings)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	s.Extension = strings.ToLower(ext)

	if s.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidSettings, s.Workers)
	}
	if s.QueueSize < 1 {
		return fmt.Errorf("%w: queue size must be positive, got %d", ErrInvalidSettings, s.QueueSize)
	}
	switch s.Mode {
	case ModeQuantize:
		if s.Quantizer == "" || s.Compressor == "" {
			return fmt.Errorf("%w: quantize mode needs a quantizer and a compressor", ErrInvalidSettings)
		}
		if s.CompressorLevel < 0 || s.CompressorLevel > 6 {
			return fmt.Errorf("%w: compressor level %d outside 0..6", ErrInvalidSettings, s.CompressorLevel)
		}
	case ModeStrip:
		if s.Stripper == "" {
			return fmt.Errorf("%w: strip mode needs a stripper", ErrInvalidSettings)
		}
		if s.MaxDimension < 1 {
			return fmt.Errorf("%w: max dimension must be positive, got %d", ErrInvalidSettings, s.MaxDimension)
		}
	}
	return nil
}

// tools lists the executables the mode needs.
func (s Settings) tools() []string {
	if s.Mode == ModeStrip {
		return []string{s.Stripper}
	}
	return []string{s.Quantizer, s.Compressor}
}
