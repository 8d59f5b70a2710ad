package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CORS_ORIGINS", "")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.DefaultOpens != "08:00" || cfg.DefaultCloses != "20:00" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.RequestTimeoutSec != 30 || cfg.PublicRatePerMin != 30 || cfg.ReminderTZ != "Europe/Madrid" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.TrustedProxyHops != 0 {
		t.Errorf("TrustedProxyHops = %d, want 0", cfg.TrustedProxyHops)
	}
	if string(cfg.JWTSecret) != devJWTSecret {
		t.Errorf("dev secret not applied")
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DEFAULT_OPENS", "09:00")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TRUSTED_PROXY_HOPS", "1")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" || cfg.DefaultOpens != "09:00" || cfg.RedisDB != 3 || cfg.TrustedProxyHops != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "short")
	if _, err := Load(); err == nil {
		t.Error("expected error for a short JWT secret in production")
	}
}
