package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, slog.LevelError, levelFromString("ERROR"))
	assert.Equal(t, slog.LevelWarn, levelFromString("warning"))
	assert.Equal(t, slog.LevelDebug, levelFromString(" debug "))
	assert.Equal(t, slog.LevelInfo, levelFromString(""))
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "")

	logger.Debug("hidden")
	logger.Info("fetch complete", "source", "polygon", "inserted", 3)

	var entry map[string]any
	err := json.Unmarshal(buf.Bytes(), &entry)

	assert.Equal(t, nil, err)
	assert.Equal(t, "fetch complete", entry["msg"])
	assert.Equal(t, "polygon", entry["source"])
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "text")

	logger.Info("window done", "from", "2024-05-01")

	assert.Equal(t, true, strings.Contains(buf.String(), "msg=\"window done\""))
}
