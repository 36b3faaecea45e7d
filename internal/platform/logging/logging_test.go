package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/m-mizutani/masq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{ReplaceAttr: NewReplaceAttr()}))
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	return entry
}

// Context

func TestFromContext(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(io.Discard, nil))

	//nolint:staticcheck // nil context is handled explicitly
	assert.Equal(t, defaultLogger, FromContext(nil))
	assert.Equal(t, defaultLogger, FromContext(context.Background()))
	assert.Equal(t, custom, FromContext(WithContext(context.Background(), custom)))
}

func TestContextIDs(t *testing.T) {
	var buf bytes.Buffer

	ctx := WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithTraceID(ctx, "trace-456")
	ctx = WithCorrelationID(ctx, "corr-789")
	ctx = WithSessionID(ctx, "sess-000")

	FromContext(ctx).Info("all ids")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "trace-456", entry["trace_id"])
	assert.Equal(t, "corr-789", entry["correlation_id"])
	assert.Equal(t, "sess-000", entry["session_id"])
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer

	ctx := WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = With(ctx, slog.String("component", "test"), "count", 2)

	FromContext(ctx).Info("enriched")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "test", entry["component"])
	assert.InDelta(t, 2, entry["count"], 0)
}

func TestSetDefault(t *testing.T) {
	original := FromContext(context.Background())
	t.Cleanup(func() { SetDefault(original) })

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	SetDefault(custom)

	assert.Equal(t, custom, FromContext(context.Background()))
	assert.Equal(t, custom, slog.Default())
}

// Logger construction

func TestNew(t *testing.T) {
	assert.NotNil(t, New(&Config{Level: "info", Format: FormatJSON, Service: "quote-generator", Version: "1.0.0"}))
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "info", Format: FormatJSON, Service: "quote-generator", Version: "1.0.0"}, &buf)
	logger.Info("test message", slog.String("key", "value"))

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "quote-generator", entry["service_name"])
	assert.Equal(t, "1.0.0", entry["service_version"])
	assert.Equal(t, "value", entry["key"])
}

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "debug", Format: FormatText, Service: "quote-generator"}, &buf)
	logger.Debug("debug message")

	assert.Contains(t, buf.String(), "debug message")
	assert.Contains(t, buf.String(), "service_name=quote-generator")
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "warn", Format: FormatJSON}, &buf)
	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewWithWriter_TraceLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "trace", Format: FormatJSON}, &buf)
	logger.Log(context.Background(), LevelTrace, "fine detail")

	assert.Contains(t, buf.String(), "fine detail")

	buf.Reset()
	logger = NewWithWriter(&Config{Level: "debug", Format: FormatJSON}, &buf)
	logger.Log(context.Background(), LevelTrace, "fine detail")

	assert.Empty(t, buf.String())
}

func TestNewWithWriter_PrettyFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "info", Format: FormatPretty, Service: "quote-generator"}, &buf)
	logger.Info("pretty message", slog.String("password", "hunter2"))
	logger.Debug("hidden debug")

	output := buf.String()
	assert.Contains(t, output, "pretty message")
	assert.Contains(t, output, "quote-generator")
	assert.NotContains(t, output, "hunter2")
	assert.NotContains(t, output, "hidden debug")
}

func TestNewWithWriter_PrettyTrace(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "trace", Format: FormatPretty}, &buf)
	logger.Log(context.Background(), LevelTrace, "trace in pretty")

	assert.Contains(t, buf.String(), "trace in pretty")
}

func TestNewWithWriter_PrettyGroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "info", Format: FormatPretty}, &buf)
	logger.With(slog.String("token", "abc-secret")).WithGroup("req").Info("grouped", slog.String("path", "/quote"))

	output := buf.String()
	assert.Contains(t, output, "grouped")
	assert.Contains(t, output, "/quote")
	assert.NotContains(t, output, "abc-secret")
}

func TestNewWithWriter_WithFileConfig(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "quotes.log")

	var buf bytes.Buffer

	logger := NewWithWriter(&Config{
		Level:   "info",
		Format:  FormatPretty,
		Service: "quote-generator",
		File: FileConfig{
			Enabled:    true,
			Path:       logFile,
			MaxSizeMB:  1,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}, &buf)

	logger.Info("to both", slog.String("api_key", "k-123"))

	assert.Contains(t, buf.String(), "to both")

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, "to both", entry["msg"])
	assert.NotContains(t, string(content), "k-123")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestSlogToCharmLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    slog.Level
		expected log.Level
	}{
		{"trace maps to debug", LevelTrace, log.DebugLevel},
		{"debug", slog.LevelDebug, log.DebugLevel},
		{"info", slog.LevelInfo, log.InfoLevel},
		{"warn", slog.LevelWarn, log.WarnLevel},
		{"error", slog.LevelError, log.ErrorLevel},
		{"very low maps to debug", slog.Level(-12), log.DebugLevel},
		{"very high maps to error", slog.Level(12), log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slogToCharmLevel(tt.input))
		})
	}
}

// MultiHandler

// failingHandler accepts every record and fails to write it.
type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	return errors.New("disk full")
}

func TestMultiHandler(t *testing.T) {
	var info, debug bytes.Buffer

	multi := NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	assert.True(t, multi.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, multi.Enabled(context.Background(), LevelTrace))

	logger := slog.New(multi).With(slog.String("svc", "q")).WithGroup("g")
	logger.Debug("debug only")
	logger.Info("both", slog.Int("n", 1))

	assert.NotContains(t, info.String(), "debug only")
	assert.Contains(t, debug.String(), "debug only")
	assert.Contains(t, info.String(), `"svc":"q"`)
	assert.Contains(t, info.String(), `"g":{"n":1}`)
	assert.Contains(t, debug.String(), `"g":{"n":1}`)
}

func TestMultiHandler_JoinsErrors(t *testing.T) {
	var buf bytes.Buffer

	multi := NewMultiHandler(
		failingHandler{slog.NewJSONHandler(io.Discard, nil)},
		slog.NewJSONHandler(&buf, nil),
	)

	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "still written", 0)
	err := multi.Handle(context.Background(), r)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, buf.String(), "still written")
}

// Redaction

func TestDefaultRedactOptions(t *testing.T) {
	assert.Greater(t, len(DefaultRedactOptions()), 10)
}

func TestNewReplaceAttr(t *testing.T) {
	tests := []struct {
		field  string
		value  string
		redact bool
	}{
		{"password", "secret123", true},
		{"token", "my-secret-token", true},
		{"api_key", "api-key-value", true},
		{"accessToken", "access-token-value", true},
		{"cookie", "quote_session=abc", true},
		{"privateKey", "private-key-data", true},
		{"secret_config", "sensitive-data", true},
		{"authorization", "Bearer abc123xyz456", true},
		{"auth", "Basic dXNlcjpwYXNz", true},
		{"header", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", true},
		{"author", "Albert Einstein", false},
		{"session_id", "3f1c9a6e", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			var buf bytes.Buffer

			jsonLogger(&buf).Info("test", slog.String(tt.field, tt.value))

			output := buf.String()
			assert.Contains(t, output, tt.field)

			if tt.redact {
				assert.NotContains(t, output, tt.value)
				assert.True(t, strings.Contains(output, "REDACTED") || strings.Contains(output, "***"))
			} else {
				assert.Contains(t, output, tt.value)
			}
		})
	}
}

func TestNewReplaceAttr_CustomOptions(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: NewReplaceAttr(masq.WithFieldName("upstream_key")),
	}))
	logger.Info("test", slog.String("upstream_key", "zzz-111"))

	assert.NotContains(t, buf.String(), "zzz-111")
}

func TestContextWithRedaction(t *testing.T) {
	var buf bytes.Buffer

	ctx := WithRequestID(WithContext(context.Background(), jsonLogger(&buf)), "req-integration-123")
	FromContext(ctx).Info("test message",
		slog.String("username", "john.doe"),
		slog.String("password", "super-secret"),
	)

	output := buf.String()
	assert.Contains(t, output, "req-integration-123")
	assert.Contains(t, output, "john.doe")
	assert.NotContains(t, output, "super-secret")
}
