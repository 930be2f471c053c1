package main

import (
	"testing"

	"go.uber.org/zap"

	"spinwheel/internal/config"
	"spinwheel/internal/extract"
	"spinwheel/internal/extract/spark"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	settings, err := config.DefaultSettings()
	if err != nil {
		t.Fatalf("DefaultSettings: %v", err)
	}
	cfg.Wheel = settings
	return &cfg
}

func TestNewProvider_DefaultsFallBackToStub(t *testing.T) {
	cfg := testConfig(t)
	p, err := newProvider(cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("newProvider: %v", err)
	}
	if _, ok := p.(extract.Stub); !ok {
		t.Errorf("provider %T, want extract.Stub", p)
	}
}

func TestNewProvider_SparkWithCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.Spark.AppID = "app"
	cfg.Spark.APIKey = "key"
	cfg.Spark.APISecret = "secret"
	p, err := newProvider(cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("newProvider: %v", err)
	}
	if _, ok := p.(*spark.Client); !ok {
		t.Errorf("provider %T, want *spark.Client", p)
	}
}
