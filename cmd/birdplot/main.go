// birdplot draws bird-personality charts from a score CSV and shrinks PNG
// files in bulk.
//
// Usage:
//
//	birdplot chart    [--data data.csv] [--graph-type scatter|radar] [--output-dir DIR]
//	birdplot overlap  [--data data.csv] [--a NAME --b NAME] [--format text|yaml]
//	birdplot optimize [ROOT...] [--mode quantize|strip] [--workers N]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/birdplot/internal/adapters/toolchain"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{
		out:    os.Stdout,
		logOut: os.Stdout,
		runner: toolchain.NewExec(),
	}
	err := newRootCmd(a).ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "birdplot:", err)
	}
	stop()
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}
