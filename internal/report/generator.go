// Package report turns collected traces into the summary tables and the
// annotated per-trace listing.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"tracereport/internal/aggregate"
	"tracereport/internal/dedup"
	"tracereport/internal/jit"
	"tracereport/internal/metrics"
	"tracereport/internal/observ"
	"tracereport/internal/source"
	"tracereport/internal/trace"
)

// Generator owns a collection session and produces its report exactly once.
type Generator struct {
	collector *jit.Collector
	inst      jit.Instrumentation
	annotator *source.Annotator
	opts      Options
	logger    *slog.Logger
	met       metrics.Recorder
	timer     *observ.Timer

	started atomic.Bool
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithInstrumentation sets the engine switch toggled around generation.
func WithInstrumentation(inst jit.Instrumentation) GeneratorOption {
	return func(g *Generator) {
		if inst != nil {
			g.inst = inst
		}
	}
}

// WithAnnotator sets the source annotator.
func WithAnnotator(a *source.Annotator) GeneratorOption {
	return func(g *Generator) {
		if a != nil {
			g.annotator = a
		}
	}
}

// WithOptions sets the layout options.
func WithOptions(opts Options) GeneratorOption {
	return func(g *Generator) { g.opts = opts }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) GeneratorOption {
	return func(g *Generator) {
		if m != nil {
			g.met = m
		}
	}
}

// NewGenerator creates a generator for the traces gathered by c.
func NewGenerator(c *jit.Collector, opts ...GeneratorOption) *Generator {
	g := &Generator{
		collector: c,
		inst:      jit.NopInstrumentation{},
		opts:      DefaultOptions(),
		logger:    slog.Default(),
		met:       metrics.Nop,
		timer:     observ.NewTimer(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.annotator == nil {
		g.annotator = source.NewAnnotator(source.WithLogger(g.logger))
	}
	return g
}

// Generate writes the report to w and re-enables instrumentation afterwards.
// Only the first call does anything; later or reentrant calls return nil.
func (g *Generator) Generate(ctx context.Context, w io.Writer) error {
	return g.run(ctx, w, true)
}

// Close is the shutdown hook: it writes the report if it has not been
// written yet and leaves instrumentation disabled.
func (g *Generator) Close(ctx context.Context, w io.Writer) error {
	return g.run(ctx, w, false)
}

// Done reports whether the report has been generated or is in progress.
func (g *Generator) Done() bool {
	return g.started.Load()
}

// Timer returns the phase timings of the last generation.
func (g *Generator) Timer() *observ.Timer {
	return g.timer
}

func (g *Generator) run(ctx context.Context, w io.Writer, reenable bool) error {
	if !g.started.CompareAndSwap(false, true) {
		g.logger.Debug("report already generated")
		return nil
	}

	g.inst.SetEnabled(false)
	if reenable {
		defer g.inst.SetEnabled(true)
	}

	began := time.Now()
	ctx, span := trace.StartSpan(ctx, trace.ScopeReport, "report")
	defer span.End("")

	raw := g.collector.Drain()

	reps := phase(ctx, g.timer, "dedup", func() []*jit.Trace {
		return dedup.Traces(raw)
	})

	var byReason, byLocation aggregate.Result
	phase(ctx, g.timer, "aggregate", func() struct{} {
		byReason = aggregate.Aggregate(reps, aggregate.ByReason)
		byLocation = aggregate.Aggregate(reps, aggregate.ByLocation)
		return struct{}{}
	})

	err := phase(ctx, g.timer, "annotate", func() error {
		return g.annotator.Load(ctx, reps)
	})
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	err = phase(ctx, g.timer, "render", func() error {
		r := NewRenderer(w, g.annotator, g.opts)
		r.Summary("Results by reason", byReason)
		r.Summary("Results by location", byLocation)
		for _, t := range reps {
			_, ts := trace.StartSpan(ctx, trace.ScopeTrace, "trace "+strconv.Itoa(t.ID))
			r.Trace(t)
			ts.End("")
		}
		return r.Flush()
	})
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	span.WithExtra("attempts", strconv.Itoa(len(raw))).WithExtra("traces", strconv.Itoa(len(reps)))
	g.met.ReportGenerated(len(raw), len(reps), time.Since(began))
	g.logger.Info("report generated",
		slog.Int("attempts", len(raw)),
		slog.Int("traces", len(reps)),
		slog.Int("reasons", len(byReason.Buckets)),
		slog.Duration("duration", time.Since(began)))
	return nil
}

// phase runs fn inside a timer phase and a trace span.
func phase[T any](ctx context.Context, timer *observ.Timer, name string, fn func() T) T {
	_, span := trace.StartSpan(ctx, trace.ScopePhase, name)
	idx := timer.Begin(name)
	out := fn()
	timer.End(idx, "")
	span.End("")
	return out
}
