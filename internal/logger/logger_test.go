package logger_test

import (
	"bytes"
	"testing"

	"codeberg.org/mutker/gamebar/internal/errors"
	"codeberg.org/mutker/gamebar/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  logger.LogLevel
		valid bool
	}{
		{"debug", logger.DebugLevel, true},
		{"INFO", logger.InfoLevel, true},
		{"", logger.InfoLevel, true},
		{"warning", logger.WarnLevel, true},
		{"warn", logger.WarnLevel, true},
		{"error", logger.ErrorLevel, true},
		{"verbose", logger.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := logger.ParseLevel(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, logger.DebugLevel, true)
	defer logger.InitWithWriter(&bytes.Buffer{}, logger.InfoLevel, true)

	log := logger.Default().With("sessionlog")
	log.Info().Int("rows", 3).Msg("Flushed session rows")
	log.ErrorWithCode(errors.New().New(errors.ErrNoReport)).Msg("Analysis failed")

	out := buf.String()
	assert.Contains(t, out, "Flushed session rows")
	assert.Contains(t, out, "component=sessionlog")
	assert.Contains(t, out, "rows=3")
	assert.Contains(t, out, "error_code=no_report")
	assert.NotContains(t, out, "\x1b[", "buffers are not terminals")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, logger.WarnLevel, true)
	defer logger.InitWithWriter(&bytes.Buffer{}, logger.InfoLevel, true)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
