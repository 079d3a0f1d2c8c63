package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG", zerolog.InfoLevel))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warning ", zerolog.InfoLevel))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("", zerolog.InfoLevel))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("bogus", zerolog.ErrorLevel))
}

func TestSetup_DisabledByDefault(t *testing.T) {
	logger, closer, err := Setup(Options{})
	require.NoError(t, err)
	require.NotNil(t, closer)
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ghn.log")

	logger, closer, err := Setup(Options{File: path, Level: "debug"})
	require.NoError(t, err)

	logger.Info().Str("thread", "42").Msg("marked read")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"marked read"`)
	assert.Contains(t, string(data), `"thread":"42"`)
}
