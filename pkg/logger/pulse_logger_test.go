package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &m))
	return m
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"fatal", LevelFatal},
		{"nonsense", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf, Service: "test"})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	l.WithContext(ctx).
		WithField("source", "public").
		WithError(errors.New("boom")).
		WithDuration(1500*time.Microsecond).
		Info("searched %d posts", 3)

	m := decodeLine(t, &buf)
	assert.Equal(t, "info", m["level"])
	assert.Equal(t, "searched 3 posts", m["message"])
	assert.Equal(t, "test", m["service"])
	assert.Equal(t, "req-1", m["request_id"])
	assert.Equal(t, "public", m["source"])
	assert.Equal(t, "boom", m["error"])
	assert.InDelta(t, 1.5, m["duration_ms"], 1e-9)
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf})

	zl := l.Component("retrieval")
	zl.Info().Str("source", "stub").Msg("attempt")

	m := decodeLine(t, &buf)
	assert.Equal(t, "retrieval", m["component"])
	assert.Equal(t, "stub", m["source"])
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	zl := New(Config{Level: LevelInfo, Output: &buf}).Component("insight")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-9")
	log := Ctx(ctx, zl)
	log.Info().Msg("served")

	m := decodeLine(t, &buf)
	assert.Equal(t, "req-9", m["request_id"])
	assert.Equal(t, "insight", m["component"])

	buf.Reset()
	plain := Ctx(context.Background(), zl)
	plain.Info().Msg("served")
	assert.NotContains(t, decodeLine(t, &buf), "request_id")
}
