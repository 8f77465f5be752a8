package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docbind/internal/exhibit"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "static", cfg.StorageDir)
	assert.Equal(t, "static", cfg.URLPrefix)
	assert.Equal(t, "localhost:8090", cfg.ExternalHost)
	assert.Equal(t, "http", cfg.ExternalScheme)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.FetchRetries)
	assert.Equal(t, 4, cfg.MaxConcurrentFetch)
	assert.Equal(t, exhibit.SortByOrder, cfg.SortMode)
	assert.True(t, cfg.Bookmarks)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCBIND_PORT", "9000")
	t.Setenv("DOCBIND_FETCH_TIMEOUT", "5s")
	t.Setenv("DOCBIND_FETCH_RETRIES", "4")
	t.Setenv("DOCBIND_SORT_MODE", "LABEL")
	t.Setenv("DOCBIND_BOOKMARKS", "false")
	t.Setenv("DOCBIND_URL_PREFIX", "/files/")
	t.Setenv("DOCBIND_LOG_LEVEL", "debug")
	t.Setenv("RENDER_EXTERNAL_HOSTNAME", "binder.onrender.com")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 4, cfg.FetchRetries)
	assert.Equal(t, exhibit.SortByLabel, cfg.SortMode)
	assert.False(t, cfg.Bookmarks)
	assert.Equal(t, "files", cfg.URLPrefix)
	assert.Equal(t, "binder.onrender.com", cfg.ExternalHost)
	assert.Equal(t, "https", cfg.ExternalScheme)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "10000")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "10000", cfg.Port)
	assert.Equal(t, ":10000", cfg.Addr())
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCBIND_PORT", "9000")
	t.Setenv("DOCBIND_HOST", "127.0.0.1")

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("port", "", "")
	flags.String("host", "", "")
	require.NoError(t, flags.Parse([]string{"--port", "7000"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Host, "unchanged flags must not override the environment")
	assert.Equal(t, "127.0.0.1:7000", cfg.ExternalHost)
}

func TestLoad_ClampsInvalidNumbers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCBIND_MAX_CONCURRENT_FETCH", "0")
	t.Setenv("DOCBIND_FETCH_RETRIES", "-3")
	t.Setenv("DOCBIND_MAX_DOCUMENT_BYTES", "-1")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxConcurrentFetch)
	assert.Equal(t, 0, cfg.FetchRetries)
	assert.Equal(t, int64(104857600), cfg.MaxDocumentBytes)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	content := "storage_dir: /var/lib/docbind\nexternal_host: binder.example.com\nmax_concurrent_fetch: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/docbind", cfg.StorageDir)
	assert.Equal(t, "binder.example.com", cfg.ExternalHost)
	assert.Equal(t, "https", cfg.ExternalScheme)
	assert.Equal(t, 8, cfg.MaxConcurrentFetch)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{SortMode: exhibit.SortByOrder, ExternalScheme: "https", ExternalHost: "h", LogLevel: "info"}
	require.NoError(t, base.Validate())

	bad := base
	bad.SortMode = "alphabetical"
	assert.Error(t, bad.Validate())

	bad = base
	bad.ExternalScheme = "ftp"
	assert.Error(t, bad.Validate())

	bad = base
	bad.ExternalHost = "h/static"
	assert.Error(t, bad.Validate())

	bad = base
	bad.LogLevel = "loud"
	assert.Error(t, bad.Validate())
}
