package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 3, config.Fetcher.MaxRetries)
	assert.Equal(t, 3, config.Sync.MaxImages)
	assert.NotEmpty(t, config.Sources.Emlakjet.Districts)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ilansync.toml")

	content := `
environment = "production"

[logging]
level = "debug"

[sync]
enrich_concurrency = 5

[sources.emlakjet]
districts = ["kadikoy", "besiktas"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, 5, config.Sync.EnrichConcurrency)
	assert.Equal(t, []string{"kadikoy", "besiktas"}, config.Sources.Emlakjet.Districts)
	// Untouched sections keep defaults
	assert.Equal(t, 3, config.Fetcher.MaxRetries)
}

func TestLoadFromFileMissingFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/ilansync.toml")
	assert.Error(t, err)
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	config := NewDefaultConfig()
	config.Logging.Level = "loud"

	assert.Error(t, config.Validate())
}

func TestValidateEmbeddingsRequireAPIKey(t *testing.T) {
	config := NewDefaultConfig()
	config.Embeddings.Enabled = true
	config.Embeddings.APIKey = ""

	assert.Error(t, config.Validate())

	config.Embeddings.APIKey = "test-key"
	assert.NoError(t, config.Validate())
}

func TestValidateEmlakjetNeedsDistricts(t *testing.T) {
	config := NewDefaultConfig()
	config.Sources.Emlakjet.Enabled = true
	config.Sources.Emlakjet.Districts = nil

	assert.Error(t, config.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ILANSYNC_LOG_LEVEL", "warn")
	t.Setenv("ILANSYNC_DATA_PATH", "/tmp/ilansync-data")

	config, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "/tmp/ilansync-data", config.Storage.Badger.Path)
}
