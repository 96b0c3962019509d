package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.trai.ch/kiln/internal/adapters/esbuildhost"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/refresh"
	"go.trai.ch/kiln/internal/ui/style"
	"go.trai.ch/zerr"
)

// WatchCacheSize is the transform cache used by --watch when the config sets none.
const WatchCacheSize = 1024

const metricsShutdownTimeout = 5 * time.Second

type buildFlags struct {
	outdir      string
	dev         bool
	watch       bool
	minify      bool
	sourcemap   bool
	html        string
	metricsAddr string
}

func (c *CLI) newBuildCmd() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build [entries...]",
		Short: "Bundle entry points through the kiln pipeline",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.outdir, "outdir", "o", "dist", "Directory to write the bundle to")
	cmd.Flags().BoolVar(&flags.dev, "dev", false, "Build for development with fast refresh")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "Rebuild when sources change")
	cmd.Flags().BoolVar(&flags.minify, "minify", false, "Minify the generated chunks")
	cmd.Flags().BoolVar(&flags.sourcemap, "sourcemap", false, "Emit source maps")
	cmd.Flags().StringVar(&flags.html, "html", "", "HTML entry to copy into outdir, with the refresh preamble in dev builds")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, args []string, flags buildFlags) error {
	ctx := cmd.Context()

	root, err := os.Getwd()
	if err != nil {
		return zerr.Wrap(err, "failed to get working directory")
	}

	opts, err := c.components.ConfigLoader.Load(root)
	if err != nil {
		return err
	}
	applyBuildFlags(cmd.Flags(), flags, &opts)

	command := domain.CommandBuild
	if flags.dev {
		command = domain.CommandServe
	}
	outdir := absPath(root, flags.outdir)
	entries := make([]string, 0, len(args))
	for _, arg := range args {
		entries = append(entries, absPath(root, arg))
	}

	if flags.metricsAddr != "" {
		stop, err := c.serveMetrics(flags.metricsAddr)
		if err != nil {
			return err
		}
		defer stop()
	}

	resolved := domain.ResolveOptions(opts, flags.dev)
	// A static page has no serving host for the runtime, so it is emitted next to the bundle.
	emitRuntime := flags.dev && flags.html != "" && resolved.ReactRefresh

	plugin := c.components.NewPlugin(opts)
	builder, err := esbuildhost.NewBuilder(ctx, plugin, esbuildhost.BuildConfig{
		Config:         esbuildhost.Config{Command: command, Root: root, FailFast: true},
		EntryPoints:    entries,
		Outdir:         outdir,
		Sourcemap:      resolved.Sourcemap,
		RefreshRuntime: emitRuntime,
	})
	if err != nil {
		return err
	}
	defer builder.Close()

	rebuild := func() error {
		res, err := builder.Build()
		if c.components.Builds != nil {
			c.components.Builds.IncBuild(err == nil)
		}
		if err != nil {
			return err
		}
		if flags.html != "" {
			page, err := writeHTML(ctx, plugin, absPath(root, flags.html), outdir, emitRuntime)
			if err != nil {
				return err
			}
			res.Outputs = append(res.Outputs, page)
		}
		for _, warning := range res.Warnings {
			c.components.Logger.Warn(warning)
		}
		printSummary(cmd.OutOrStdout(), res, outdir)
		return nil
	}

	if err := rebuild(); err != nil {
		if !flags.watch {
			return err
		}
		printFailure(cmd.OutOrStdout())
		c.components.Logger.Error(err)
	}
	if !flags.watch {
		return nil
	}

	return c.watch(ctx, cmd.OutOrStdout(), root, outdir, rebuild)
}

func applyBuildFlags(fs *pflag.FlagSet, flags buildFlags, opts *domain.Options) {
	if fs.Changed("minify") {
		toggle := domain.Off[domain.MinifyOptions]()
		if flags.minify {
			toggle = domain.On[domain.MinifyOptions]()
			if opts.Minify != nil && opts.Minify.State == domain.Configured {
				toggle = *opts.Minify
			}
		}
		opts.Minify = &toggle
	}
	if fs.Changed("sourcemap") {
		sourcemap := flags.sourcemap
		opts.Sourcemap = &sourcemap
	}
	if flags.watch && opts.CacheSize == 0 {
		opts.CacheSize = WatchCacheSize
	}
}

func (c *CLI) watch(ctx context.Context, stdout io.Writer, root, outdir string, rebuild func() error) error {
	w, err := c.components.NewWatcher(outdir)
	if err != nil {
		return err
	}
	if err := w.Start(ctx, root); err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	var mu sync.Mutex
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		c.components.Logger.Info(fmt.Sprintf("%d file(s) changed, rebuilding", len(paths)))
		if err := rebuild(); err != nil {
			printFailure(stdout)
			c.components.Logger.Error(err)
		}
	})

	c.components.Logger.Info("watching " + root + " for changes")
	for event := range w.Events() {
		c.components.Logger.Debug(event.Operation.String() + " " + event.Path)
		debouncer.Add(event.Path)
	}
	return nil
}

func (c *CLI) serveMetrics(addr string) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to listen for metrics"), "addr", addr)
	}

	handler := c.components.MetricsHandler
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.components.Logger.Error(zerr.Wrap(err, "metrics server stopped"))
		}
	}()
	c.components.Logger.Info("serving metrics on http://" + listener.Addr().String() + "/metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}

// writeHTML copies the HTML entry into outdir. With relocate set, the preamble
// imports the runtime emitted by the build instead of the served virtual module.
func writeHTML(ctx context.Context, plugin *app.Plugin, src, outdir string, relocate bool) (esbuildhost.OutputFile, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return esbuildhost.OutputFile{}, zerr.With(zerr.Wrap(err, "failed to read HTML entry"), "path", src)
	}

	document, err := plugin.TransformIndexHTML(ctx, string(data))
	if err != nil {
		return esbuildhost.OutputFile{}, err
	}
	if relocate {
		document = refresh.RelocatePreamble(document, "./"+esbuildhost.RefreshRuntimeName+".js")
	}

	dst := filepath.Join(outdir, filepath.Base(src))
	if err := os.MkdirAll(outdir, 0o750); err != nil {
		return esbuildhost.OutputFile{}, zerr.Wrap(err, "failed to create output directory")
	}
	if err := os.WriteFile(dst, []byte(document), 0o600); err != nil {
		return esbuildhost.OutputFile{}, zerr.With(zerr.Wrap(err, "failed to write HTML entry"), "path", dst)
	}
	return esbuildhost.OutputFile{Path: dst, Size: len(document)}, nil
}

func printSummary(w io.Writer, res *esbuildhost.Result, outdir string) {
	title := fmt.Sprintf("built %d files in %s", len(res.Outputs), res.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "%s %s\n", style.Success.Render(style.Check), style.Title.Render(title))

	for _, out := range res.Outputs {
		name, err := filepath.Rel(outdir, out.Path)
		if err != nil {
			name = out.Path
		}
		_, _ = fmt.Fprintf(w, "  %s %s\n", style.FileName.Render(filepath.ToSlash(name)), style.Muted.Render(formatSize(out.Size)))
	}
}

func printFailure(w io.Writer) {
	_, _ = fmt.Fprintf(w, "%s %s\n", style.Failure.Render(style.Cross), style.Title.Render("build failed"))
}

func formatSize(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f KiB", float64(n)/unit)
}

func absPath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
