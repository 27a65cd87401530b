// Command oxywgsl pre-processes the shader programs named in an HCL manifest and writes
// the resulting WGSL, and optionally SPIR-V, to the manifest's output directory.
//
// Usage:
//
//	oxywgsl [-manifest shaders.hcl] [-compile] [-watch] [-log-level info] [-log-format text]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
