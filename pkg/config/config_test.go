package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sequential", cfg.Search.Policy)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Analytics.TopQueries)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
search:
  stopWords: [and, in, on]
  policy: parallel
  corpusFile: corpus.yaml
  removeDuplicates: true
  workers: 4
logging:
  level: debug
  format: text
metrics:
  enabled: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"and", "in", "on"}, cfg.Search.StopWords)
	assert.Equal(t, "parallel", cfg.Search.Policy)
	assert.Equal(t, "corpus.yaml", cfg.Search.CorpusFile)
	assert.True(t, cfg.Search.RemoveDuplicates)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 10000, cfg.Analytics.BufferSize)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SP_SEARCH_STOP_WORDS", "a  the")
	t.Setenv("SP_SEARCH_POLICY", "parallel")
	t.Setenv("SP_SEARCH_REMOVE_DUPLICATES", "true")
	t.Setenv("SP_LOGGING_FORMAT", "text")
	t.Setenv("SP_METRICS_ENABLED", "1")

	cfg, err := Load(writeConfig(t, "search:\n  policy: sequential\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "the"}, cfg.Search.StopWords)
	assert.Equal(t, "parallel", cfg.Search.Policy)
	assert.True(t, cfg.Search.RemoveDuplicates)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "search:\n  policy: fastest\n"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = Load(writeConfig(t, "logging:\n  format: xml\n"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = Load(writeConfig(t, "search: [unclosed"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
