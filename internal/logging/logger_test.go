package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LevelInfo, FormatJSON)
	l.SetOutput(&buf)

	l.WithField("trackerId", "a").WithError(errors.New("boom")).Error("Start tracker error")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry.Level)
	assert.Equal(t, "Start tracker error", entry.Message)
	assert.Equal(t, "a", entry.Fields["trackerId"])
	assert.Equal(t, "boom", entry.Fields["error"])
	assert.NotEmpty(t, entry.Caller)
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LevelWarn, FormatText)
	l.SetOutput(&buf)

	l.Info("hidden")
	l.Debugf("hidden %d", 1)
	l.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "warn: shown")
}

func TestDerivedLoggerSharesSinkButNotFields(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(LevelDebug, FormatText)
	parent.SetOutput(&buf)

	child := parent.WithComponent("store")
	child.Info("child")
	parent.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "component=store")
	assert.NotContains(t, lines[1], "component=store")
}

func TestFromContext(t *testing.T) {
	l := NewNopLogger()
	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, LevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LevelInfo, ParseLogLevel("loud"))
	assert.Equal(t, FormatText, ParseLogFormat("text"))
	assert.Equal(t, FormatJSON, ParseLogFormat("xml"))
}

func TestFatalUsesExitHook(t *testing.T) {
	l := NewNopLogger()
	code := 0
	l.sink.exit = func(c int) { code = c }
	l.Fatal("stop")
	assert.Equal(t, 1, code)
}
