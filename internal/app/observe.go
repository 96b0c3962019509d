package app

import (
	"context"
	"time"

	"go.trai.ch/kiln/internal/core/ports"
)

// hookRun tracks one hook invocation in traces and metrics.
type hookRun struct {
	hook    string
	start   time.Time
	span    ports.Span
	metrics ports.Metrics
}

func (p *Plugin) track(ctx context.Context, hook string) (context.Context, *hookRun) {
	run := &hookRun{hook: hook, start: time.Now(), metrics: p.deps.Metrics}
	if p.deps.Tracer != nil {
		ctx, run.span = p.deps.Tracer.Start(ctx, PluginName+"."+hook)
	}
	return ctx, run
}

func (r *hookRun) attr(key string, value any) {
	if r.span != nil {
		r.span.SetAttribute(key, value)
	}
}

func (r *hookRun) done(outcome string, err error) {
	if err != nil {
		outcome = ports.OutcomeError
	}
	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
		}
		r.span.End()
	}
	if r.metrics != nil {
		r.metrics.ObserveHook(r.hook, outcome, time.Since(r.start))
	}
}
