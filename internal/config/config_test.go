package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RecordsSource != RecordsSourceFile {
		t.Fatalf("unexpected RecordsSource: %q", cfg.RecordsSource)
	}
	if cfg.TOIFallbackMinutes != nil {
		t.Fatalf("expected null TOI fallback by default, got %v", *cfg.TOIFallbackMinutes)
	}
	if cfg.DefaultHitRateLine != 2.5 {
		t.Fatalf("unexpected DefaultHitRateLine: %v", cfg.DefaultHitRateLine)
	}
	if cfg.DefaultSeason != "20232024" {
		t.Fatalf("unexpected DefaultSeason: %q", cfg.DefaultSeason)
	}
	if !cfg.SeasonStatsLocalFallback {
		t.Fatalf("expected local fallback enabled by default")
	}
	if cfg.NHLStatsTimeout != 5*time.Second {
		t.Fatalf("unexpected NHLStatsTimeout: %s", cfg.NHLStatsTimeout)
	}
	if cfg.PyroscopeAppName != cfg.ServiceName {
		t.Fatalf("expected pyroscope app name to default to service name, got %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_TOIFallbackMinutes(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("configured value", func(t *testing.T) {
		t.Setenv("TOI_FALLBACK_MINUTES", "20")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.TOIFallbackMinutes == nil || *cfg.TOIFallbackMinutes != 20 {
			t.Fatalf("expected TOI fallback 20, got %v", cfg.TOIFallbackMinutes)
		}
	})

	t.Run("negative rejected", func(t *testing.T) {
		t.Setenv("TOI_FALLBACK_MINUTES", "-1")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative TOI_FALLBACK_MINUTES")
		}
	})

	t.Run("nan rejected", func(t *testing.T) {
		t.Setenv("TOI_FALLBACK_MINUTES", "NaN")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for NaN TOI_FALLBACK_MINUTES")
		}
	})
}

func TestLoad_RecordsSourceValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("RECORDS_SOURCE", "mongo")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown RECORDS_SOURCE")
	}
}

func TestLoad_SeasonValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	for _, season := range []string{"2023", "20232025", "abcd2024"} {
		t.Run(season, func(t *testing.T) {
			t.Setenv("NHL_DEFAULT_SEASON", season)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for NHL_DEFAULT_SEASON=%q", season)
			}
		})
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		"WARNING": "warn",
		"error":   "error",
		"":        "info",
		"verbose": "info",
	}
	for in, want := range tests {
		if got := parseLogLevel(in).String(); got != want {
			t.Fatalf("parseLogLevel(%q)=%s want=%s", in, got, want)
		}
	}
}
