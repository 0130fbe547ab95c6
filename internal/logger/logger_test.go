package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitializeSetsGlobalLevel(t *testing.T) {
	testCases := []struct {
		level string
		want  zerolog.Level
	}{
		{level: "debug", want: zerolog.DebugLevel},
		{level: "info", want: zerolog.InfoLevel},
		{level: "warn", want: zerolog.WarnLevel},
		{level: "error", want: zerolog.ErrorLevel},
		{level: "garbage", want: zerolog.InfoLevel},
		{level: "", want: zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run("level "+tc.level, func(t *testing.T) {
			Initialize(tc.level)
			assert.Equal(t, tc.want, zerolog.GlobalLevel())
		})
	}
}

func TestGetForComponentTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger
	Logger = zerolog.New(&buf)
	defer func() { Logger = prev }()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	componentLogger := GetForComponent("vault_engine")
	componentLogger.Info().Msg("registered")

	assert.Contains(t, buf.String(), `"component":"vault_engine"`)
	assert.Contains(t, buf.String(), "registered")
}

func TestGetReturnsGlobalInstance(t *testing.T) {
	assert.Same(t, &Logger, Get())
}
