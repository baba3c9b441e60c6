package config_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/geokit/internal/core/platform"
	"github.com/samirrijal/geokit/internal/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("geokit-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "geokit-test" {
		t.Errorf("expected service name geokit-test, got %s", cfg.Telemetry.ServiceName)
	}
	if cfg.Temporal.HostPort != "localhost:7233" || cfg.Temporal.Namespace != "default" {
		t.Errorf("unexpected temporal config %+v", cfg.Temporal)
	}
	p, err := cfg.Profile()
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p != platform.PostgreSQL {
		t.Errorf("expected postgresql profile, got %s", p.Name)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GEOKIT_DATABASE_HOST", "db.internal")
	t.Setenv("GEOKIT_CODEC_PLATFORM", "mysql")
	t.Setenv("GEOKIT_CODEC_MAX_INPUT_BYTES", "4096")

	cfg, err := config.Load("geokit-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected db.internal, got %s", cfg.Database.Host)
	}
	if cfg.Codec.MaxInputBytes != 4096 {
		t.Errorf("expected 4096, got %d", cfg.Codec.MaxInputBytes)
	}
	if !strings.Contains(cfg.Database.DSN(), "@db.internal:5432/geokit") {
		t.Errorf("unexpected DSN %s", cfg.Database.DSN())
	}
}

func TestValidateAggregates(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for empty config")
	}
	for _, want := range []string{"server.port", "database.host", "codec.platform", "codec.max_input_bytes", "temporal.host_port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
