package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_duplicate_questions/internal/core/domain"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "questions.db", cfg.DBPath)
	require.Equal(t, domain.DefaultOptions(), cfg.Engine)
	require.Equal(t, 5*time.Minute, cfg.ReindexInterval)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  read_timeout: 10s
db_path: /tmp/exam.db
reindex_interval: 1m
engine:
  min_length: 10
  stop_word_min_length: 4
  similarity_threshold: 70
  max_results: 5
`), 0o644))

	t.Setenv("DUPES_THRESHOLD", "80")
	t.Setenv("DUPES_FILTER_CORPUS_TOKENS", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	require.Equal(t, "/tmp/exam.db", cfg.DBPath)
	require.Equal(t, time.Minute, cfg.ReindexInterval)
	require.Equal(t, domain.Options{
		MinLength:           10,
		StopWordMinLength:   4,
		SimilarityThreshold: 80,
		MaxResults:          5,
		FilterCorpusTokens:  true,
	}, cfg.Engine)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DUPES_MAX_RESULTS=7\nDUPES_PORT=7000\n"), 0o644))
	t.Cleanup(func() {
		_ = os.Unsetenv("DUPES_MAX_RESULTS")
		_ = os.Unsetenv("DUPES_PORT")
	})
	// Real environment wins over .env.
	t.Setenv("DUPES_PORT", "7100")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Engine.MaxResults)
	require.Equal(t, 7100, cfg.Server.Port)
}

func TestLoadRejectsInvalid(t *testing.T) {
	chdir(t, t.TempDir())

	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "port", env: map[string]string{"DUPES_PORT": "70000"}},
		{name: "threshold", env: map[string]string{"DUPES_THRESHOLD": "101"}},
		{name: "max results", env: map[string]string{"DUPES_MAX_RESULTS": "0"}},
		{name: "reindex", env: map[string]string{"DUPES_REINDEX_INTERVAL": "-1m"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestInvalidEnvFallsBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DUPES_MIN_LENGTH", "twenty")
	t.Setenv("DUPES_REINDEX_INTERVAL", "soon")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, domain.DefaultMinLength, cfg.Engine.MinLength)
	require.Equal(t, 5*time.Minute, cfg.ReindexInterval)
}
