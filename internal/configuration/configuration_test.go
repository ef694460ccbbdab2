package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInitializesDefaults(t *testing.T) {
	t.Setenv("PROMPTDECK_OPENAI_API_KEY", "")
	t.Setenv("PROMPTDECK_ENGINE_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.json")

	config, err := Parse(path)
	require.NoError(t, err)

	// The default file is written out for the user to edit.
	_, err = os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, defaultConfig.OpenaiAPIHost, config.OpenaiAPIHost)
	assert.Equal(t, defaultConfig.Chat.DefaultModel, config.Chat.DefaultModel)
	assert.Equal(t, defaultConfig.Image.NumberOfImages, config.Image.NumberOfImages)
	assert.Equal(t, defaultConfig.RequestTimeout, config.RequestTimeout)
}

func TestParseMergesPartialFile(t *testing.T) {
	t.Setenv("PROMPTDECK_OPENAI_API_KEY", "")
	t.Setenv("PROMPTDECK_ENGINE_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.json")
	partial := `{"openai_api_key": "sk-mine", "chat": {"default_model": "gpt-4o", "model_aliases": {"fast": "gpt-4o-mini"}}}`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0644))

	config, err := Parse(path)
	require.NoError(t, err)

	// Fields from the file win; everything else falls back to defaults.
	assert.Equal(t, "sk-mine", config.OpenaiAPIKey)
	assert.Equal(t, "gpt-4o", config.Chat.DefaultModel)
	assert.Equal(t, "gpt-4o-mini", config.Chat.ModelAliases["fast"])
	assert.Equal(t, defaultConfig.OpenaiAPIHost, config.OpenaiAPIHost)
	assert.Equal(t, defaultConfig.Image.DefaultModel, config.Image.DefaultModel)
}

func TestParseEnvironmentOverrides(t *testing.T) {
	t.Setenv("PROMPTDECK_OPENAI_API_KEY", "sk-from-env")
	t.Setenv("PROMPTDECK_ENGINE_API_KEY", "ek-from-env")
	path := filepath.Join(t.TempDir(), "config.json")

	config, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", config.OpenaiAPIKey)
	assert.Equal(t, "ek-from-env", config.EngineAPIKey)
}
