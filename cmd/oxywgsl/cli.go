package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// config holds the parsed command line.
type config struct {
	Manifest  string
	Compile   bool
	Validate  bool
	Watch     bool
	LogLevel  string
	LogFormat string
}

// parseArgs processes command-line arguments. It returns the config, whether the program
// should exit cleanly (help was requested), or an ExitError with code 2.
func parseArgs(args []string, output io.Writer) (*config, bool, error) {
	flagSet := flag.NewFlagSet("oxywgsl", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
oxywgsl - WGSL #include/#define pre-processor.

Usage:
  oxywgsl [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	cfg := &config{}
	flagSet.StringVar(&cfg.Manifest, "manifest", "shaders.hcl", "Path to the HCL manifest.")
	flagSet.BoolVar(&cfg.Compile, "compile", false, "Also compile every staged program to SPIR-V.")
	flagSet.BoolVar(&cfg.Validate, "validate", true, "Validate modules before generating SPIR-V.")
	flagSet.BoolVar(&cfg.Watch, "watch", false, "Rebuild whenever the shader directory changes.")
	flagSet.StringVar(&cfg.LogLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.StringVar(&cfg.LogFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q", flagSet.Arg(0))}
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	return cfg, false, nil
}
