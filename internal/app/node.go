package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/config"       //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/esbuild"      //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/logger"       //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/metrics"      //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/noderesolver" //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/telemetry"    //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/watcher"      //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/core/ports"
)

// ComponentsNodeID is the unique identifier for the App components Graft node.
const ComponentsNodeID graft.ID = "app.components"

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			config.NodeID,
			esbuild.TransformerNodeID,
			esbuild.MinifierNodeID,
			noderesolver.NodeID,
			telemetry.NodeID,
			metrics.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	log, err := graft.Dep[*logger.Logger](ctx)
	if err != nil {
		return nil, err
	}

	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	transformer, err := graft.Dep[ports.Transformer](ctx)
	if err != nil {
		return nil, err
	}

	minifiers, err := graft.Dep[ports.MinifierLoader](ctx)
	if err != nil {
		return nil, err
	}

	resolvers, err := graft.Dep[ports.ResolverFactory](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[*metrics.Recorder](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		Logger:         log,
		LogOutput:      log,
		ConfigLoader:   loader,
		Transformer:    transformer,
		Resolvers:      resolvers,
		Minifiers:      minifiers,
		Tracer:         tracer,
		Metrics:        recorder,
		Builds:         recorder,
		MetricsHandler: recorder.Handler(),
		NewWatcher: func(ignore ...string) (ports.Watcher, error) {
			return watcher.NewWatcher(log, ignore...)
		},
	}, nil
}
