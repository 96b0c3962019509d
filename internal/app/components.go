package app

import (
	"io"
	"log/slog"
	"net/http"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// LogOutput controls where and how logs are written.
type LogOutput interface {
	SetOutput(w io.Writer)
	SetJSON(enable bool)
	SetLevel(level slog.Level)
}

// BuildCounter counts finished builds.
type BuildCounter interface {
	IncBuild(success bool)
}

// Components groups everything the CLI needs to build plugins and run builds.
type Components struct {
	Logger         ports.Logger
	LogOutput      LogOutput
	ConfigLoader   ports.ConfigLoader
	Transformer    ports.Transformer
	Resolvers      ports.ResolverFactory
	Minifiers      ports.MinifierLoader
	Tracer         ports.Tracer
	Metrics        ports.Metrics
	Builds         BuildCounter
	MetricsHandler http.Handler
	// NewWatcher returns an unstarted watcher that skips the ignored directories.
	NewWatcher func(ignore ...string) (ports.Watcher, error)
}

// NewPlugin creates a Plugin backed by the shared engines.
func (c *Components) NewPlugin(opts domain.Options) *Plugin {
	return NewPlugin(opts, Deps{
		Transformer: c.Transformer,
		Resolvers:   c.Resolvers,
		Minifiers:   c.Minifiers,
		Logger:      c.Logger,
		Tracer:      c.Tracer,
		Metrics:     c.Metrics,
	})
}
