package esbuildhost

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/adapters/esbuild"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/refresh"
	"go.trai.ch/zerr"
)

// RefreshRuntimeName is the output name of the refresh runtime in static builds.
const RefreshRuntimeName = "react-refresh"

// BuildConfig describes a bundle build.
type BuildConfig struct {
	Config
	EntryPoints []string
	Outdir      string
	// Sourcemap emits linked .map files next to the chunks.
	Sourcemap bool
	// RefreshRuntime emits the refresh runtime as RefreshRuntimeName.js so a page
	// preamble can import it. Code shared with the entry points is split into
	// common chunks, which keeps a single runtime instance per page.
	RefreshRuntime bool
}

// OutputFile is one file written by a build.
type OutputFile struct {
	Path string
	Size int
}

// Result summarizes a successful build.
type Result struct {
	Outputs  []OutputFile
	Warnings []string
	Duration time.Duration
}

// Builder runs the same esbuild context repeatedly. The plugin session is created by
// the first build and reused by every rebuild.
type Builder struct {
	build  api.BuildContext
	outdir string
}

// NewBuilder prepares an esbuild context running plugin.
func NewBuilder(ctx context.Context, plugin *app.Plugin, cfg BuildConfig) (*Builder, error) {
	if len(cfg.EntryPoints) == 0 {
		return nil, domain.ErrNoEntryPoints
	}

	sourcemap := api.SourceMapNone
	if cfg.Sourcemap {
		sourcemap = api.SourceMapLinked
	}

	entries := make([]api.EntryPoint, 0, len(cfg.EntryPoints)+1)
	for _, entry := range cfg.EntryPoints {
		entries = append(entries, api.EntryPoint{InputPath: entry})
	}
	if cfg.RefreshRuntime {
		entries = append(entries, api.EntryPoint{InputPath: refresh.ModuleID, OutputPath: RefreshRuntimeName})
	}

	build, ctxErr := api.Context(api.BuildOptions{
		AbsWorkingDir:       cfg.Root,
		EntryPointsAdvanced: entries,
		Bundle:              true,
		Splitting:           cfg.RefreshRuntime,
		Outdir:              cfg.Outdir,
		Format:              api.FormatESModule,
		Platform:            api.PlatformBrowser,
		Sourcemap:           sourcemap,
		Write:               false,
		LogLevel:            api.LogLevelSilent,
		Plugins:             []api.Plugin{New(ctx, plugin, cfg.Config)},
	})
	if ctxErr != nil {
		return nil, buildError(ctxErr.Errors)
	}

	return &Builder{build: build, outdir: cfg.Outdir}, nil
}

// Build runs one build and writes its output files.
func (b *Builder) Build() (*Result, error) {
	start := time.Now()

	res := b.build.Rebuild()
	if len(res.Errors) > 0 {
		return nil, buildError(res.Errors)
	}

	outputs, err := writeOutputs(res.OutputFiles)
	if err != nil {
		return nil, err
	}

	return &Result{
		Outputs:  outputs,
		Warnings: esbuild.FormatMessages(res.Warnings),
		Duration: time.Since(start),
	}, nil
}

// Close releases the esbuild context.
func (b *Builder) Close() {
	b.build.Dispose()
}

func writeOutputs(files []api.OutputFile) ([]OutputFile, error) {
	outputs := make([]OutputFile, 0, len(files))
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.Path), 0o750); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", f.Path)
		}
		if err := os.WriteFile(f.Path, f.Contents, 0o600); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to write output file"), "path", f.Path)
		}
		outputs = append(outputs, OutputFile{Path: f.Path, Size: len(f.Contents)})
	}
	slices.SortFunc(outputs, func(a, b OutputFile) int { return strings.Compare(a.Path, b.Path) })
	return outputs, nil
}

func buildError(msgs []api.Message) error {
	err := errors.Join(domain.ErrBuildFailed, errors.New(strings.Join(esbuild.FormatMessages(msgs), "\n")))
	return zerr.With(err, "errors", len(msgs))
}
