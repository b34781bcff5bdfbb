// Package toolchain runs the external image tools the optimiser drives.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/okian/birdplot/pkg/logger"
	"github.com/okian/birdplot/pkg/metrics"
)

// maxOutput caps how much tool output is kept for error messages.
const maxOutput = 4 << 10

// Runner starts external commands.
type Runner interface {
	// Run executes name with args and returns its combined stdout and
	// stderr. A non-zero exit wraps ErrFailed and carries the output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath resolves name on PATH, wrapping ErrNotFound on failure.
	LookPath(name string) (string, error)
}

// Exec implements Runner with os/exec.
type Exec struct {
	logger logger.Logger
}

// Option configures Exec.
type Option func(*Exec)

// WithLogger sets the logger used for tool invocations.
func WithLogger(l logger.Logger) Option {
	return func(e *Exec) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExec returns a Runner backed by os/exec.
func NewExec(opts ...Option) *Exec {
	e := &Exec{logger: logger.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the command. Cancelling ctx kills the process.
func (e *Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	took := time.Since(start)
	metrics.RecordToolLatency(name, float64(took.Milliseconds()))
	e.logger.Debug(ctx, "tool finished",
		logger.String("tool", name),
		logger.String("args", strings.Join(args, " ")),
		logger.Duration("took", took),
	)

	if err == nil {
		return out.Bytes(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out.Bytes(), fmt.Errorf("%w: %s: %w", ErrFailed, name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.Bytes(), fmt.Errorf("%w: %s exited with %d: %s",
			ErrFailed, name, exitErr.ExitCode(), tail(out.Bytes()))
	}
	return out.Bytes(), fmt.Errorf("%w: %s: %w", ErrFailed, name, err)
}

// LookPath resolves name on PATH.
func (e *Exec) LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}

// tail returns the last maxOutput bytes of b, trimmed.
func tail(b []byte) string {
	if len(b) > maxOutput {
		b = b[len(b)-maxOutput:]
	}
	return strings.TrimSpace(string(b))
}
