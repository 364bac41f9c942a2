package varz

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// testLogHandler captures log records for testing.
type testLogHandler struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	level slog.Level
}

func newTestLogHandler() *testLogHandler {
	return &testLogHandler{level: slog.LevelDebug}
}

func (h *testLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	return json.NewEncoder(&h.buf).Encode(data)
}

func (h *testLogHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *testLogHandler) WithGroup(_ string) slog.Handler { return h }

func (h *testLogHandler) records() []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []map[string]any
	for _, line := range bytes.Split(h.buf.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// messages returns the msg field of every captured record.
func (h *testLogHandler) messages() []string {
	var out []string
	for _, r := range h.records() {
		if msg, ok := r["msg"].(string); ok {
			out = append(out, msg)
		}
	}
	return out
}

// recordingMetrics counts calls to each MetricsRecorder method.
type recordingMetrics struct {
	mu        sync.Mutex
	publishes int
	overwrite int
	dropped   []string
	snapshots []int
	poisoned  []string
	collects  []error
}

func (m *recordingMetrics) RecordPublish(_ context.Context, _ string, overwrite bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishes++
	if overwrite {
		m.overwrite++
	}
}

func (m *recordingMetrics) RecordDropped(_ context.Context, _, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped = append(m.dropped, reason)
}

func (m *recordingMetrics) RecordSnapshot(_ context.Context, _ string, entries int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, entries)
}

func (m *recordingMetrics) RecordPoisoned(_ context.Context, _, op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poisoned = append(m.poisoned, op)
}

func (m *recordingMetrics) RecordCollect(_ context.Context, _ string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collects = append(m.collects, err)
}

// recordingSpans records span names, events and the errors spans ended with.
type recordingSpans struct {
	mu      sync.Mutex
	started []string
	ended   []error
	events  []string
}

func (s *recordingSpans) StartCollectSpan(ctx context.Context, _, _ string, _ int) (context.Context, trace.Span) {
	s.start("varz.collect")
	return ctx, noop.Span{}
}

func (s *recordingSpans) StartReadSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	s.start("varz.read." + name)
	return ctx, noop.Span{}
}

func (s *recordingSpans) EndSpanWithError(_ trace.Span, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = append(s.ended, err)
}

func (s *recordingSpans) AddSpanEvent(_ context.Context, name string, _ ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
}

func (s *recordingSpans) start(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, name)
}

// quietRegistry returns a registry with logging disabled.
func quietRegistry(opts ...Option) *Registry {
	return NewRegistry(append([]Option{WithLogger(nil)}, opts...)...)
}

// resetDefault swaps in a fresh process-wide gate for the duration of t.
// Tests using it must not run in parallel.
func resetDefault(t *testing.T) {
	t.Helper()
	prev := std
	std = new(Gate)
	t.Cleanup(func() { std = prev })
}

// names extracts entry names in order.
func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
