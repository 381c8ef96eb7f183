package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestRequestIDFlowsThroughContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Service: "stock-opname", Level: "info", Output: &buf})

	ctx := WithRequestID(context.Background(), base, "req-1")
	FromContext(ctx, base).Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "stock-opname", line["service"])
	assert.Equal(t, "hello", line["message"])
}

func TestFromContextFallsBack(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Output: &buf})

	FromContext(context.Background(), base).Warn().Msg("fallback")
	assert.Contains(t, buf.String(), "fallback")
}

func TestGormWriterLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	w := GormWriter{Logger: New(Options{Level: "debug", Output: &buf})}

	w.Printf("%s [%.3fms] %s", "repo.go:10", 1.5, "SELECT 1")
	assert.Contains(t, buf.String(), `"component":"gorm"`)
	assert.Contains(t, buf.String(), "SELECT 1")
}
