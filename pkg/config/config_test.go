package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8080 {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Execute.StepLimit != 1_000_000 {
		t.Errorf("unexpected step limit default: %d", cfg.Execute.StepLimit)
	}
	if cfg.Execute.Timeout.Duration != 5*time.Second {
		t.Errorf("unexpected execute timeout default: %v", cfg.Execute.Timeout.Duration)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("unexpected log level default: %q", cfg.Log.Level)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("unexpected addr: %q", cfg.Addr())
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeTempConfig(t, "config.toml", `
[server]
host = "0.0.0.0"
port = 9000
read_timeout = "30s"

[execute]
timeout = "2s"
step_limit = 5000

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout.Duration != 30*time.Second {
		t.Errorf("unexpected read timeout: %v", cfg.Server.ReadTimeout.Duration)
	}
	if cfg.Execute.Timeout.Duration != 2*time.Second || cfg.Execute.StepLimit != 5000 {
		t.Errorf("unexpected execute config: %+v", cfg.Execute)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("unexpected log level: %q", cfg.Log.Level)
	}
	// Unset fields still get defaults.
	if cfg.Server.WriteTimeout.Duration != 15*time.Second {
		t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout.Duration)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", `
server:
  host: 10.0.0.1
  port: 7000
execute:
  timeout: 1s
  max_source_bytes: 1024
log:
  level: warn
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Host != "10.0.0.1" || cfg.Server.Port != 7000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Execute.Timeout.Duration != time.Second {
		t.Errorf("unexpected execute timeout: %v", cfg.Execute.Timeout.Duration)
	}
	if cfg.Execute.MaxSourceBytes != 1024 {
		t.Errorf("unexpected max source bytes: %d", cfg.Execute.MaxSourceBytes)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("unexpected log level: %q", cfg.Log.Level)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeTempConfig(t, "config.ini", "whatever")
	if _, err := Load(path); err == nil {
		t.Error("expected error for unsupported format")
	}

	path = writeTempConfig(t, "bad.toml", "server = [broken")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, "config.toml", `
[server]
port = 9000
`)

	t.Setenv("BLOCKRUN_HOST", "0.0.0.0")
	t.Setenv("BLOCKRUN_PORT", "4242")
	t.Setenv("BLOCKRUN_LOG_LEVEL", "error")
	t.Setenv("BLOCKRUN_STEP_LIMIT", "777")
	t.Setenv("BLOCKRUN_EXECUTE_TIMEOUT", "3s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host override not applied: %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 4242 {
		t.Errorf("port override not applied: %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log level override not applied: %q", cfg.Log.Level)
	}
	if cfg.Execute.StepLimit != 777 {
		t.Errorf("step limit override not applied: %d", cfg.Execute.StepLimit)
	}
	if cfg.Execute.Timeout.Duration != 3*time.Second {
		t.Errorf("timeout override not applied: %v", cfg.Execute.Timeout.Duration)
	}
}
