package config

import "testing"

func TestLoadIncludesScanDefaults(t *testing.T) {
	t.Setenv("SCORING_STRATEGY", "")
	t.Setenv("RETENTION_FLOOR", "")
	t.Setenv("SENTENCE_TIMEOUT_SECONDS", "")
	t.Setenv("GATEWAY_CALL_INTERVAL_MS", "")
	t.Setenv("FINGERPRINT_WINDOW_SIZE", "")

	cfg := Load()
	if cfg.ScoringStrategy != "ensemble" {
		t.Fatalf("expected default strategy ensemble, got %q", cfg.ScoringStrategy)
	}
	if cfg.RetentionFloor != 15 {
		t.Fatalf("expected default retention floor 15, got %v", cfg.RetentionFloor)
	}
	if cfg.SentenceTimeoutSeconds != 10 {
		t.Fatalf("expected default sentence timeout 10, got %d", cfg.SentenceTimeoutSeconds)
	}
	if cfg.GatewayCallIntervalMS != 120 {
		t.Fatalf("expected default call interval 120, got %d", cfg.GatewayCallIntervalMS)
	}
	if cfg.FingerprintWindowSize != 8 {
		t.Fatalf("expected default window size 8, got %d", cfg.FingerprintWindowSize)
	}
}

func TestLoadParsesScanOverrides(t *testing.T) {
	t.Setenv("SCORING_STRATEGY", "crossref")
	t.Setenv("RETENTION_FLOOR", "22.5")
	t.Setenv("SENTENCE_TIMEOUT_SECONDS", "4")
	t.Setenv("RERANK_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	if cfg.ScoringStrategy != "crossref" {
		t.Fatalf("expected strategy override, got %q", cfg.ScoringStrategy)
	}
	if cfg.RetentionFloor != 22.5 {
		t.Fatalf("expected retention floor 22.5, got %v", cfg.RetentionFloor)
	}
	if cfg.SentenceTimeoutSeconds != 4 {
		t.Fatalf("expected sentence timeout 4, got %d", cfg.SentenceTimeoutSeconds)
	}
	if !cfg.RerankEnabled {
		t.Fatalf("expected rerank enabled")
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("expected redis db 3, got %d", cfg.RedisDB)
	}
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("RETENTION_FLOOR", "not-a-number")
	t.Setenv("SCAN_LOCK_TTL_SECONDS", "2m")

	cfg := Load()
	if cfg.RetentionFloor != 15 {
		t.Fatalf("expected fallback retention floor, got %v", cfg.RetentionFloor)
	}
	if cfg.LockTTLSeconds != 120 {
		t.Fatalf("expected fallback lock ttl, got %d", cfg.LockTTLSeconds)
	}
}
