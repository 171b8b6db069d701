package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.StoreBackend != "memory" {
		t.Fatalf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if cfg.DefaultBuyIn != 50 || cfg.DefaultPrize != 20 {
		t.Fatalf("unexpected money defaults: buy-in %v prize %v", cfg.DefaultBuyIn, cfg.DefaultPrize)
	}
	if cfg.SoftLimitPerMin != 30 || cfg.AuditMax != 200 || !cfg.AllowAnyUnlock {
		t.Fatalf("unexpected season defaults: %+v", cfg)
	}
	if cfg.LockTimezone != "Australia/Brisbane" {
		t.Fatalf("LockTimezone = %q", cfg.LockTimezone)
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DEFAULT_BUY_IN", "25.5")
	t.Setenv("ALLOW_ANY_UNLOCK", "false")
	t.Setenv("NOTIFY_RETRY_BASE_MS", "250")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.StoreBackend != "redis" || cfg.RedisDB != 3 {
		t.Fatalf("unexpected store config: %+v", cfg)
	}
	if cfg.DefaultBuyIn != 25.5 {
		t.Fatalf("DefaultBuyIn = %v, want 25.5", cfg.DefaultBuyIn)
	}
	if cfg.AllowAnyUnlock {
		t.Fatal("AllowAnyUnlock should be false")
	}
	if cfg.NotifyRetryBaseMS != 250 {
		t.Fatalf("NotifyRetryBaseMS = %d, want 250", cfg.NotifyRetryBaseMS)
	}
}

func TestLoadServerRejectsBadInt(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	if _, err := LoadServer(); err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}
