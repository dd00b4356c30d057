package config

import (
	"testing"
	"time"
)

func TestParseTTL(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"1h", time.Hour},
		{"30m", 30 * time.Minute},
		{"90s", 90 * time.Second},
		{"7d", 7 * 24 * time.Hour},
		{"1d", 24 * time.Hour},
		{"0.5d", 12 * time.Hour},
	}
	for _, tc := range cases {
		got, err := ParseTTL(tc.in)
		if err != nil {
			t.Errorf("ParseTTL(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTTL(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseTTLInvalid(t *testing.T) {
	for _, in := range []string{"", "sevendays", "7x", "d"} {
		if _, err := ParseTTL(in); err == nil {
			t.Errorf("ParseTTL(%q) succeeded", in)
		}
	}
}

func validConfig() *Config {
	return &Config{
		Port:             "8000",
		Env:              "development",
		DatabaseURL:      "postgres://localhost/hms",
		JWTSecret:        "dev-secret-change-in-production",
		JWTRefreshSecret: "dev-refresh-secret-change-in-production",
		JWTExpiry:        "1h",
		JWTRefreshExpiry: "7d",
	}
}

func TestValidateDevelopmentDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("development defaults rejected: %v", err)
	}
}

func TestValidateRejectsIdenticalSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.JWTRefreshSecret = cfg.JWTSecret
	if err := cfg.Validate(); err == nil {
		t.Error("identical signing secrets accepted")
	}
}

func TestValidateRejectsBadTTL(t *testing.T) {
	cfg := validConfig()
	cfg.JWTExpiry = "soon"
	if err := cfg.Validate(); err == nil {
		t.Error("unparseable JWT_EXPIRY accepted")
	}
}

func TestValidateProductionRejectsDefaultSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	if err := cfg.Validate(); err == nil {
		t.Error("default secrets accepted in production")
	}

	cfg.JWTSecret = "a-real-secret"
	cfg.JWTRefreshSecret = "another-real-secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("proper production config rejected: %v", err)
	}
}

func TestValidateProductionRejectsAutoActivate(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.JWTSecret = "a-real-secret"
	cfg.JWTRefreshSecret = "another-real-secret"
	cfg.AutoActivateUsers = true
	if err := cfg.Validate(); err == nil {
		t.Error("AUTO_ACTIVATE_USERS accepted in production")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("Load succeeded without DATABASE_URL")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hms_test")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_EXPIRY", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if ttl, err := cfg.AccessTTL(); err != nil || ttl != 15*time.Minute {
		t.Errorf("AccessTTL = %v (%v), want 15m", ttl, err)
	}
	if cfg.Env != "development" {
		t.Errorf("Env default = %q, want development", cfg.Env)
	}
}
