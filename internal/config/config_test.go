package config

import (
	"log/slog"
	"testing"
	"time"
)

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(mapLookup(nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AWS.Region != "eu-west-1" {
		t.Fatalf("region = %q", cfg.AWS.Region)
	}
	if cfg.AWS.Catalog != "AwsDataCatalog" || cfg.AWS.Workgroup != "primary" {
		t.Fatalf("aws defaults = %+v", cfg.AWS)
	}
	if cfg.Query.ReuseTime != time.Hour || cfg.Query.PollInterval != time.Second {
		t.Fatalf("query defaults = %+v", cfg.Query)
	}
	if cfg.Query.PageSize != 100 || cfg.Query.HistorySize != 20 {
		t.Fatalf("query defaults = %+v", cfg.Query)
	}
	if cfg.Query.WaitDeadline != 0 {
		t.Fatalf("wait deadline default = %v, want 0", cfg.Query.WaitDeadline)
	}
	if cfg.Download.Dir != "." || !cfg.Download.UseSSL {
		t.Fatalf("download defaults = %+v", cfg.Download)
	}
	if cfg.Observability.LogLevel != slog.LevelInfo || cfg.Observability.LogJSON {
		t.Fatalf("observability defaults = %+v", cfg.Observability)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(mapLookup(map[string]string{
		"ATHENACTL_REGION":          "us-east-2",
		"ATHENACTL_PROFILE":         "analytics",
		"ATHENACTL_DATABASE":        "sales",
		"ATHENACTL_OUTPUT_LOCATION": "s3://my-results/",
		"ATHENACTL_REUSE_TIME":      "15m",
		"ATHENACTL_POLL_INTERVAL":   "250ms",
		"ATHENACTL_WAIT_DEADLINE":   "10m",
		"ATHENACTL_PAGE_SIZE":       "500",
		"ATHENACTL_HISTORY_SIZE":    "5",
		"ATHENACTL_DOWNLOAD_DIR":    "/tmp/results",
		"ATHENACTL_S3_USE_SSL":      "false",
		"ATHENACTL_LOG_JSON":        "true",
		"ATHENACTL_LOG_LEVEL":       "debug",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AWS.Region != "us-east-2" || cfg.AWS.Profile != "analytics" || cfg.AWS.Database != "sales" {
		t.Fatalf("aws = %+v", cfg.AWS)
	}
	if cfg.Query.ReuseTime != 15*time.Minute || cfg.Query.PollInterval != 250*time.Millisecond {
		t.Fatalf("query = %+v", cfg.Query)
	}
	if cfg.Query.WaitDeadline != 10*time.Minute || cfg.Query.PageSize != 500 || cfg.Query.HistorySize != 5 {
		t.Fatalf("query = %+v", cfg.Query)
	}
	if cfg.Download.Dir != "/tmp/results" || cfg.Download.UseSSL {
		t.Fatalf("download = %+v", cfg.Download)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug || !cfg.Observability.LogJSON {
		t.Fatalf("observability = %+v", cfg.Observability)
	}
}

func TestLoadRegionFallback(t *testing.T) {
	cfg, err := Load(mapLookup(map[string]string{"AWS_REGION": "ap-south-1"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AWS.Region != "ap-south-1" {
		t.Fatalf("region = %q, want ap-south-1", cfg.AWS.Region)
	}

	// The tool-specific key wins over the generic one.
	cfg, err = Load(mapLookup(map[string]string{
		"ATHENACTL_REGION": "us-west-2",
		"AWS_REGION":       "ap-south-1",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AWS.Region != "us-west-2" {
		t.Fatalf("region = %q, want us-west-2", cfg.AWS.Region)
	}
}

func TestLoadProfileFallbackChain(t *testing.T) {
	cfg, err := Load(mapLookup(map[string]string{"AWS_DEFAULT_PROFILE": "shared"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AWS.Profile != "shared" {
		t.Fatalf("profile = %q, want shared", cfg.AWS.Profile)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"empty region", map[string]string{"ATHENACTL_REGION": "  "}},
		{"negative reuse", map[string]string{"ATHENACTL_REUSE_TIME": "-1s"}},
		{"zero page size", map[string]string{"ATHENACTL_PAGE_SIZE": "0"}},
		{"oversized page", map[string]string{"ATHENACTL_PAGE_SIZE": "1001"}},
		{"zero history", map[string]string{"ATHENACTL_HISTORY_SIZE": "0"}},
		{"bad duration", map[string]string{"ATHENACTL_POLL_INTERVAL": "soon"}},
		{"bad bool", map[string]string{"ATHENACTL_LOG_JSON": "yep"}},
		{"bad int", map[string]string{"ATHENACTL_PAGE_SIZE": "many"}},
		{"bad level", map[string]string{"ATHENACTL_LOG_LEVEL": "loud"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(mapLookup(tc.env)); err == nil {
				t.Fatalf("Load() succeeded, want error")
			}
		})
	}
}

func TestLoadNilLookup(t *testing.T) {
	if _, err := Load(nil); err == nil {
		t.Fatalf("Load(nil) succeeded")
	}
}
