package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-wgsl/common"
	"github.com/Carmen-Shannon/oxy-wgsl/engine/loader"
	"github.com/Carmen-Shannon/oxy-wgsl/engine/manifest"
	"github.com/Carmen-Shannon/oxy-wgsl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-wgsl/engine/renderer/shader"
)

// run is the whole program minus process exit handling. In watch mode it blocks until ctx
// is cancelled.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, shouldExit, err := parseArgs(args, stdout)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, stderr)

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if cfg.Watch && within(m.ShaderDir, m.OutputDir) {
		return &ExitError{Code: 2, Message: fmt.Sprintf("output_dir %s is inside shader_dir %s, refusing to watch", m.OutputDir, m.ShaderDir)}
	}

	prof := profiler.NewProfiler(profiler.WithLogger(logger))
	l := loader.NewLoader(loader.BackendTypeDir,
		loader.WithSourceMapOptions(m.SourceMapOptions()...),
		loader.WithLoaderLogger(logger),
	)
	builds := shader.NewBatchBuilder(m.Workers)
	defer builds.Close()

	b := &batch{
		manifest: m,
		builds:   builds,
		compile:  cfg.Compile,
		compiler: shader.NewCompiler(shader.WithValidation(cfg.Validate), shader.WithCompilerLogger(logger)),
		logger:   logger,
		profiler: prof,
	}

	sm, err := l.Load(m.ShaderDir)
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	if err := b.run(sm); err != nil {
		if !cfg.Watch {
			return &ExitError{Code: 1, Message: err.Error()}
		}
		logger.Error("build failed", slog.Any("error", err))
	}

	if !cfg.Watch {
		logSummary(logger, prof.Summary())
		return nil
	}

	w, err := loader.NewWatcher(m.ShaderDir, func(sm shader.SourceMap) {
		if err := b.run(sm); err != nil {
			logger.Error("build failed", slog.Any("error", err))
		}
		prof.Tick()
	}, loader.WithSourceLoader(l), loader.WithLogger(logger))
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	logger.Info("watching for changes", slog.String("dir", m.ShaderDir))

	<-ctx.Done()
	logSummary(logger, prof.Summary())
	return w.Close()
}

// batch builds every program of a manifest and writes the results.
type batch struct {
	manifest *manifest.Manifest
	builds   shader.BatchBuilder
	compile  bool
	compiler shader.Compiler
	logger   *slog.Logger
	profiler *profiler.Profiler
}

func (b *batch) run(sm shader.SourceMap) error {
	builders, err := b.manifest.Builders(shader.WithLogger(b.logger))
	if err != nil {
		return err
	}

	var sources map[string]string
	err = b.profiler.Time("batch", func() (int, error) {
		var err error
		sources, err = b.builds.BuildSources(sm, builders)
		size := 0
		for _, src := range sources {
			size += len(src)
		}
		return size, err
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(b.manifest.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var errs []error
	for _, name := range common.SortedKeys(sources) {
		src := sources[name]
		path := filepath.Join(b.manifest.OutputDir, name+".wgsl")
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		b.logger.Info("shader written", slog.String("program", name), slog.String("path", path), slog.Int("bytes", len(src)))

		if b.compile {
			if err := b.compileProgram(name, src); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// compileProgram writes <name>.spv for programs that declare a stage.
func (b *batch) compileProgram(name, src string) error {
	program := b.manifest.Program(name)
	stage, ok := program.ShaderType()
	if !ok {
		b.logger.Debug("program has no stage, skipping compile", slog.String("program", name))
		return nil
	}

	var code []byte
	err := b.profiler.Time(name, func() (int, error) {
		refl, err := b.compiler.Compile(name, src)
		if err != nil {
			return 0, err
		}
		if _, ok := refl.EntryPoint(stage); !ok {
			return 0, fmt.Errorf("no %s entry point", stage)
		}
		code = refl.SPIRV
		return len(code), nil
	})
	if err != nil {
		return err
	}

	path := filepath.Join(b.manifest.OutputDir, name+".spv")
	if err := os.WriteFile(path, code, 0o644); err != nil {
		return err
	}
	b.logger.Info("shader compiled", slog.String("program", name), slog.String("path", path), slog.Int("bytes", len(code)))
	return nil
}

func logSummary(logger *slog.Logger, s profiler.Stats) {
	logger.Info("done",
		slog.Int("builds", s.Builds),
		slog.Duration("total", s.Total),
		slog.String("slowest", s.Slowest),
		slog.Duration("slowest_duration", s.SlowestDuration),
		slog.Int("bytes", s.Bytes),
	)
}

// within reports whether child is parent or lies below it.
func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
