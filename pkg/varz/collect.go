package varz

import (
	"context"
	"time"

	"github.com/randalmurphal/varz/pkg/varz/observability"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Reading is the value a var reported during Collect.
type Reading struct {
	Name  string
	Value string
}

// String renders the reading as name=value.
func (r Reading) String() string {
	return r.Name + "=" + r.Value
}

// Collect snapshots the registry and reads every var in it.
//
// Readings are returned in snapshot order. Vars are read one at a time
// unless parallelism is raised with WithCollectParallelism or
// WithParallelism. When ctx is cancelled no further vars are read and
// Collect returns the context error; a var that is already being read
// is not interrupted.
//
// A Var whose Value panics propagates the panic to the caller when vars
// are read one at a time. With parallelism above 1 the panic happens on
// a worker goroutine and cannot be recovered by the caller.
func (r *Registry) Collect(ctx context.Context, opts ...CollectOption) ([]Reading, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	cfg := collectConfig{parallelism: r.parallelism}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	start := time.Now()
	entries := r.Snapshot()

	ctx, span := r.spans.StartCollectSpan(ctx, r.name, r.id, len(entries))
	r.spans.AddSpanEvent(ctx, "snapshot_taken", attribute.Int("entries", len(entries)))
	readings, err := r.readAll(ctx, entries, cfg.parallelism)
	r.spans.EndSpanWithError(span, err)

	elapsed := time.Since(start)
	r.metrics.RecordCollect(ctx, r.name, elapsed, err)
	if err != nil {
		observability.LogCollectError(r.logger, err, len(entries))
		return nil, err
	}
	observability.LogCollect(r.logger, len(readings), float64(elapsed.Microseconds())/1000)
	return readings, nil
}

func (r *Registry) readAll(ctx context.Context, entries []Entry, parallelism int) ([]Reading, error) {
	out := make([]Reading, len(entries))

	if parallelism <= 1 {
		for i, e := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = r.read(ctx, e)
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, e := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = r.read(gctx, e)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Registry) read(ctx context.Context, e Entry) Reading {
	_, span := r.spans.StartReadSpan(ctx, e.Name)
	v := e.Var.Value()
	r.spans.EndSpanWithError(span, nil)
	return Reading{Name: e.Name, Value: v}
}
