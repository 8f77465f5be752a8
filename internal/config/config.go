package config

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dgallion1/docbind/internal/exhibit"
)

type Config struct {
	Port string
	Host string

	// Output storage
	StorageDir     string
	ExternalHost   string
	ExternalScheme string
	URLPrefix      string

	// Fetching
	FetchTimeout       time.Duration
	FetchRetries       int
	FetchRetryDelay    time.Duration
	MaxConcurrentFetch int
	MaxDocumentBytes   int64
	UserAgent          string

	// Request limits
	MaxRequestBytes int64

	// Output
	SortMode  exhibit.SortMode
	Bookmarks bool

	// Run state
	RunTTL time.Duration

	LogLevel string
}

const (
	defaultPort               = "8090"
	defaultStorageDir         = "static"
	defaultURLPrefix          = "static"
	defaultFetchTimeout       = 30 * time.Second
	defaultFetchRetries       = 2
	defaultFetchRetryDelay    = 500 * time.Millisecond
	defaultMaxConcurrentFetch = 4
	defaultMaxDocumentBytes   = 104857600 // 100MB
	defaultMaxRequestBytes    = 1048576   // 1MB
	defaultRunTTL             = time.Hour
	defaultUserAgent          = "docbind/1.0 (+https://github.com/dgallion1/docbind)"
)

// flagNames maps settings to the command-line flags that may override them.
var flagNames = map[string]string{
	"host":        "host",
	"port":        "port",
	"storage_dir": "storage-dir",
	"sort_mode":   "sort-by",
}

// Load reads configuration from defaults, an optional YAML file,
// DOCBIND_* environment variables and changed flags in flags, in increasing
// order of precedence. cfgFile may be empty, in which case ./docbind.yaml is
// used if present. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	v.SetDefault("port", defaultPort)
	v.SetDefault("host", "")
	v.SetDefault("storage_dir", defaultStorageDir)
	v.SetDefault("external_host", "")
	v.SetDefault("external_scheme", "https")
	v.SetDefault("url_prefix", defaultURLPrefix)
	v.SetDefault("fetch_timeout", defaultFetchTimeout)
	v.SetDefault("fetch_retries", defaultFetchRetries)
	v.SetDefault("fetch_retry_delay", defaultFetchRetryDelay)
	v.SetDefault("max_concurrent_fetch", defaultMaxConcurrentFetch)
	v.SetDefault("max_document_bytes", defaultMaxDocumentBytes)
	v.SetDefault("max_request_bytes", defaultMaxRequestBytes)
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("sort_mode", string(exhibit.SortByOrder))
	v.SetDefault("bookmarks", true)
	v.SetDefault("run_ttl", defaultRunTTL)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("DOCBIND")
	v.AutomaticEnv()
	// Hosting platforms set these without our prefix.
	if err := v.BindEnv("port", "DOCBIND_PORT", "PORT"); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("external_host", "DOCBIND_EXTERNAL_HOST", "RENDER_EXTERNAL_HOSTNAME"); err != nil {
		return Config{}, err
	}

	if flags != nil {
		for key, name := range flagNames {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docbind")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Port: v.GetString("port"),
		Host: v.GetString("host"),

		StorageDir:     v.GetString("storage_dir"),
		ExternalHost:   v.GetString("external_host"),
		ExternalScheme: strings.ToLower(v.GetString("external_scheme")),
		URLPrefix:      strings.Trim(v.GetString("url_prefix"), "/"),

		FetchTimeout:       v.GetDuration("fetch_timeout"),
		FetchRetries:       v.GetInt("fetch_retries"),
		FetchRetryDelay:    v.GetDuration("fetch_retry_delay"),
		MaxConcurrentFetch: v.GetInt("max_concurrent_fetch"),
		MaxDocumentBytes:   v.GetInt64("max_document_bytes"),
		UserAgent:          v.GetString("user_agent"),

		MaxRequestBytes: v.GetInt64("max_request_bytes"),

		SortMode:  exhibit.SortMode(strings.ToLower(v.GetString("sort_mode"))),
		Bookmarks: v.GetBool("bookmarks"),

		RunTTL: v.GetDuration("run_ttl"),

		LogLevel: v.GetString("log_level"),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = defaultStorageDir
	}
	if cfg.ExternalHost == "" {
		cfg.ExternalHost = net.JoinHostPort(cmp.Or(cfg.Host, "localhost"), cfg.Port)
		if !v.IsSet("external_scheme") {
			cfg.ExternalScheme = "http"
		}
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.FetchRetries < 0 {
		cfg.FetchRetries = 0
	}
	if cfg.FetchRetryDelay <= 0 {
		cfg.FetchRetryDelay = defaultFetchRetryDelay
	}
	if cfg.MaxConcurrentFetch <= 0 {
		cfg.MaxConcurrentFetch = defaultMaxConcurrentFetch
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = defaultMaxDocumentBytes
	}
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = defaultMaxRequestBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = defaultRunTTL
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := exhibit.ParseSortMode(string(c.SortMode)); err != nil {
		return fmt.Errorf("DOCBIND_SORT_MODE: %w", err)
	}
	if c.ExternalScheme != "http" && c.ExternalScheme != "https" {
		return fmt.Errorf("DOCBIND_EXTERNAL_SCHEME must be http or https, got %q", c.ExternalScheme)
	}
	if strings.Contains(c.ExternalHost, "/") {
		return fmt.Errorf("DOCBIND_EXTERNAL_HOST must be a bare host, got %q", c.ExternalHost)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("DOCBIND_LOG_LEVEL: %w", err)
	}
	return nil
}

// Level returns the configured log level, defaulting to info.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
