package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records for testing.
type testHandler struct {
	buf    *bytes.Buffer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func newTestHandler() *testHandler {
	return &testHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	// Build a map from the record
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}

	// Add pre-configured attrs
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}

	// Add record attrs
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})

	// Encode as JSON
	enc := json.NewEncoder(h.buf)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return nil
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := &testHandler{
		buf:    h.buf,
		level:  h.level,
		attrs:  make([]slog.Attr, len(h.attrs)+len(attrs)),
		groups: h.groups,
	}
	copy(newH.attrs, h.attrs)
	copy(newH.attrs[len(h.attrs):], attrs)
	return newH
}

func (h *testHandler) WithGroup(name string) slog.Handler {
	newH := &testHandler{
		buf:    h.buf,
		level:  h.level,
		attrs:  h.attrs,
		groups: append(h.groups, name),
	}
	return newH
}

func (h *testHandler) getLastRecord() map[string]any {
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) > 0 {
			var m map[string]any
			if err := json.Unmarshal(lines[i], &m); err == nil {
				return m
			}
		}
	}
	return nil
}

func (h *testHandler) getAllRecords() []map[string]any {
	var records []map[string]any
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for _, line := range lines {
		if len(line) > 0 {
			var m map[string]any
			if err := json.Unmarshal(line, &m); err == nil {
				records = append(records, m)
			}
		}
	}
	return records
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds registry and registry_id", func(t *testing.T) {
		h := newTestHandler()
		logger := slog.New(h)

		enriched := EnrichLogger(logger, "default", "reg-123")
		enriched.Info("test message")

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "default", record["registry"])
		assert.Equal(t, "reg-123", record["registry_id"])
		assert.Equal(t, "test message", record["msg"])
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "default", "reg-123"))
	})
}

func TestLogInit(t *testing.T) {
	h := newTestHandler()
	LogInit(slog.New(h))

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "registry initialized", record["msg"])
}

func TestLogInitRejected(t *testing.T) {
	h := newTestHandler()
	LogInitRejected(slog.New(h), "ready", errors.New("already initialized"))

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "ready", record["state"])
	assert.Equal(t, "already initialized", record["error"])
}

func TestLogPublish(t *testing.T) {
	h := newTestHandler()
	LogPublish(slog.New(h), "requests", true)

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "var published", record["msg"])
	assert.Equal(t, "requests", record["name"])
	assert.Equal(t, true, record["overwrite"])
}

func TestLogDropped(t *testing.T) {
	h := newTestHandler()
	LogDropped(slog.New(h), "", "empty name")

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "publish dropped", record["msg"])
	assert.Equal(t, "empty name", record["reason"])
}

func TestLogSnapshot(t *testing.T) {
	h := newTestHandler()
	LogSnapshot(slog.New(h), 3, 0.25)

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, float64(3), record["entries"]) // JSON decodes ints as float64
	assert.Equal(t, 0.25, record["duration_ms"])
}

func TestLogPoisoned(t *testing.T) {
	h := newTestHandler()
	LogPoisoned(slog.New(h), "set", errors.New("boom"))

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "set", record["operation"])
	assert.Equal(t, "boom", record["error"])
}

func TestLogCollect(t *testing.T) {
	h := newTestHandler()
	logger := slog.New(h)

	LogCollect(logger, 2, 1.5)
	LogCollectError(logger, context.Canceled, 5)

	records := h.getAllRecords()
	require.Len(t, records, 2)
	assert.Equal(t, "collect completed", records[0]["msg"])
	assert.Equal(t, float64(2), records[0]["entries"])
	assert.Equal(t, "WARN", records[1]["level"])
	assert.Equal(t, "context canceled", records[1]["error"])
	assert.Equal(t, float64(5), records[1]["entries"])
}

func TestNilLoggerDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		LogInit(nil)
		LogInitRejected(nil, "ready", errors.New("err"))
		LogPublish(nil, "x", false)
		LogDropped(nil, "x", "nil var")
		LogSnapshot(nil, 0, 0)
		LogPoisoned(nil, "set", errors.New("err"))
		LogCollect(nil, 0, 0)
		LogCollectError(nil, errors.New("err"), 0)
	})
}

func TestTimedOperation(t *testing.T) {
	t.Run("measures duration", func(t *testing.T) {
		done := TimedOperation()
		time.Sleep(10 * time.Millisecond)
		duration := done()

		assert.GreaterOrEqual(t, duration, 10.0)
	})

	t.Run("can be called multiple times", func(t *testing.T) {
		done := TimedOperation()
		time.Sleep(5 * time.Millisecond)
		d1 := done()
		time.Sleep(5 * time.Millisecond)
		d2 := done()

		assert.Greater(t, d2, d1)
	})
}
