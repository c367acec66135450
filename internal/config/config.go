package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Config struct {
	AWS           AWSConfig
	Query         QueryConfig
	Download      DownloadConfig
	Observability ObservabilityConfig
}

// AWSConfig names the remote targets. Database has no default: a query
// without a resolved database is a configuration error.
type AWSConfig struct {
	Region         string
	Profile        string
	Catalog        string
	Database       string
	Workgroup      string
	OutputLocation string
}

type QueryConfig struct {
	// ReuseTime is the default result reuse max age.
	ReuseTime    time.Duration
	PollInterval time.Duration
	// WaitDeadline bounds the completion wait; zero waits indefinitely.
	WaitDeadline time.Duration
	PageSize     int
	HistorySize  int
}

type DownloadConfig struct {
	Dir string
	// Endpoint overrides the regional S3 endpoint (for testing against
	// S3-compatible stores).
	Endpoint string
	UseSSL   bool
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv() (Config, error) {
	return Load(os.LookupEnv)
}

func Load(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := defaults()

	if err := applyFirst(lookup, []string{"ATHENACTL_REGION", "AWS_REGION"}, &cfg.AWS.Region); err != nil {
		return Config{}, err
	}
	if err := applyFirst(lookup, []string{"ATHENACTL_PROFILE", "AWS_PROFILE", "AWS_DEFAULT_PROFILE"}, &cfg.AWS.Profile); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ATHENACTL_CATALOG", &cfg.AWS.Catalog); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ATHENACTL_DATABASE", &cfg.AWS.Database); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ATHENACTL_WORKGROUP", &cfg.AWS.Workgroup); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ATHENACTL_OUTPUT_LOCATION", &cfg.AWS.OutputLocation); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ATHENACTL_REUSE_TIME", &cfg.Query.ReuseTime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ATHENACTL_POLL_INTERVAL", &cfg.Query.PollInterval); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ATHENACTL_WAIT_DEADLINE", &cfg.Query.WaitDeadline); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ATHENACTL_PAGE_SIZE", &cfg.Query.PageSize); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ATHENACTL_HISTORY_SIZE", &cfg.Query.HistorySize); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ATHENACTL_DOWNLOAD_DIR", &cfg.Download.Dir); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ATHENACTL_S3_ENDPOINT", &cfg.Download.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ATHENACTL_S3_USE_SSL", &cfg.Download.UseSSL); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ATHENACTL_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "ATHENACTL_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.AWS.Region == "" {
		return Config{}, fmt.Errorf("region is required")
	}
	if cfg.Query.ReuseTime < 0 {
		return Config{}, fmt.Errorf("reuse time must be >= 0")
	}
	if cfg.Query.PageSize <= 0 || cfg.Query.PageSize > 1000 {
		return Config{}, fmt.Errorf("page size must be in [1,1000]")
	}
	if cfg.Query.HistorySize <= 0 {
		return Config{}, fmt.Errorf("history size must be > 0")
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		AWS: AWSConfig{
			Region:         "eu-west-1",
			Catalog:        "AwsDataCatalog",
			Workgroup:      "primary",
			OutputLocation: "s3://aws-athena-query-results",
		},
		Query: QueryConfig{
			ReuseTime:    time.Hour,
			PollInterval: time.Second,
			PageSize:     100,
			HistorySize:  20,
		},
		Download: DownloadConfig{
			Dir:    ".",
			UseSSL: true,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelInfo,
			LogJSON:  false,
		},
	}
}

func applyFirst(lookup LookupFunc, keys []string, dst *string) error {
	for _, key := range keys {
		raw, ok := lookup(key)
		if !ok {
			continue
		}
		*dst = strings.TrimSpace(raw)
		return nil
	}
	return nil
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
