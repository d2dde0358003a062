package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestProcess_Defaults(t *testing.T) {
	cfg, err := process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.Auth.SessionTTL)
	}
	if cfg.Storage.Bucket != "kontrak" {
		t.Errorf("Bucket = %q", cfg.Storage.Bucket)
	}
	if cfg.Dashboard.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %v", cfg.Dashboard.PollInterval)
	}
	if cfg.Dashboard.Timeout != 0 {
		t.Errorf("Timeout = %v, want none", cfg.Dashboard.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestProcess_Overrides(t *testing.T) {
	cfg, err := process(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":              "production",
		"JWT_SECRET":       "short",
		"S3_USE_SSL":       "true",
		"UPLOAD_MAX_BYTES": "1024",
		"REDIS_DB":         "3",
	}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !cfg.Storage.UseSSL || cfg.Upload.MaxBytes != 1024 || cfg.Redis.DB != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected short production secret to be rejected")
	}
}

func TestValidate_RequiresSecret(t *testing.T) {
	cfg, err := process(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing JWT_SECRET error")
	}
}
