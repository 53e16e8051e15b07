package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_LevelSelection(t *testing.T) {
	cases := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, c := range cases {
		t.Run("level "+c.level, func(t *testing.T) {
			New(Config{Level: c.level})
			assert.Equal(t, c.want, zerolog.GlobalLevel())
		})
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	logger := New(Config{Level: "error"})

	var buf bytes.Buffer
	logger = logger.Output(&buf)

	logger.Info().Msg("quiet")
	assert.NotContains(t, buf.String(), "quiet")

	logger.Error().Msg("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_PrettyStillLogs(t *testing.T) {
	logger := New(Config{Level: "info", Pretty: true})

	var buf bytes.Buffer
	logger = logger.Output(&buf)
	logger.Info().Str("symbol", "AAPL").Msg("refreshed")

	assert.Contains(t, buf.String(), "refreshed")
}
