package config

import (
	"os"
	"testing"
	"time"

	"github.com/fanbacker/internal/types"
)

func TestLoadConfig(t *testing.T) {
	if err := os.Setenv("SERVER_PORT", "9090"); err != nil {
		t.Fatalf("Failed to set SERVER_PORT: %v", err)
	}
	if err := os.Setenv("POSTGRES_HOST", "testhost"); err != nil {
		t.Fatalf("Failed to set POSTGRES_HOST: %v", err)
	}
	if err := os.Setenv("CACHE_TTL", "30s"); err != nil {
		t.Fatalf("Failed to set CACHE_TTL: %v", err)
	}
	if err := os.Setenv("POLICY_MAX_DEPOSIT", "250000"); err != nil {
		t.Fatalf("Failed to set POLICY_MAX_DEPOSIT: %v", err)
	}
	defer func() {
		_ = os.Unsetenv("SERVER_PORT")
		_ = os.Unsetenv("POSTGRES_HOST")
		_ = os.Unsetenv("CACHE_TTL")
		_ = os.Unsetenv("POLICY_MAX_DEPOSIT")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, "9090")
	}

	if cfg.Database.Postgres.Host != "testhost" {
		t.Errorf("Database.Postgres.Host = %v, want %v", cfg.Database.Postgres.Host, "testhost")
	}

	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v, want %v", cfg.Cache.TTL, 30*time.Second)
	}

	if cfg.Policy.MaxDeposit != types.MoneyFromRupees(250000) {
		t.Errorf("Policy.MaxDeposit = %v, want 250000 rupees", cfg.Policy.MaxDeposit)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Policy.MinDeposit != types.MoneyFromRupees(100) {
		t.Errorf("Policy.MinDeposit = %v, want 100 rupees", cfg.Policy.MinDeposit)
	}
	if cfg.Policy.MinInvestment != types.MoneyFromRupees(1000) {
		t.Errorf("Policy.MinInvestment = %v, want 1000 rupees", cfg.Policy.MinInvestment)
	}
	if cfg.Policy.PlatformFeePct != 5 {
		t.Errorf("Policy.PlatformFeePct = %v, want 5", cfg.Policy.PlatformFeePct)
	}
	if cfg.RateLimit.AnonymousRPS != 5 {
		t.Errorf("RateLimit.AnonymousRPS = %v, want 5", cfg.RateLimit.AnonymousRPS)
	}
}

func TestPolicyValidation(t *testing.T) {
	if err := os.Setenv("POLICY_PLATFORM_FEE_PCT", "150"); err != nil {
		t.Fatalf("Failed to set POLICY_PLATFORM_FEE_PCT: %v", err)
	}
	defer func() { _ = os.Unsetenv("POLICY_PLATFORM_FEE_PCT") }()

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() accepted a platform fee above 100 percent")
	}
}
