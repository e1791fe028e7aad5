package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerInitializers(t *testing.T) {
	if l := Logger(SourceApp); l == nil {
		t.Fatal("Logger returned nil")
	}
}

func TestInit_UpdatesExistingLoggers(t *testing.T) {
	early := Logger(SourceParser)

	var buf bytes.Buffer
	require.NoError(t, Init(&buf, "debug"))
	assert.Equal(t, "debug", Level())

	early.Debug("row rejected", "reason", "no value")
	assert.Contains(t, buf.String(), "row rejected")
	assert.Contains(t, buf.String(), "source=parser")

	buf.Reset()
	require.NoError(t, Init(&buf, "warn"))
	early.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestInit_UpdatesLoggersWithContext(t *testing.T) {
	backend := Logger(SourceStorage, "backend", "postgres")

	var buf bytes.Buffer
	require.NoError(t, Init(&buf, "info"))

	backend.Info("schema ready")
	assert.Contains(t, buf.String(), "schema ready")
	assert.Contains(t, buf.String(), "source=storage")
	assert.Contains(t, buf.String(), "backend=postgres")

	buf.Reset()
	require.NoError(t, Init(&buf, "error"))
	backend.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestInit_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Init(&buf, "verbose"))
}
