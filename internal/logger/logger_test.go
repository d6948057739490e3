package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zerolog.Disabled, parseLevel("DISABLED"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}

func TestInitLoggerWritesConsole(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	defer func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	}()

	var buf bytes.Buffer
	initLogger(&buf, "motor-speed-test", "WARN")

	log.Info().Msg("hidden")
	log.Warn().Str("artifact", "model").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "artifact=")
	assert.Contains(t, out, "model")
	assert.Contains(t, out, "logger_test.go:")
}
