package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timeouts.ReconnectSeconds != 3 {
		t.Fatalf("expected 3s reconnect default, got %d", cfg.Timeouts.ReconnectSeconds)
	}
	if cfg.Timeouts.LoadTimeoutSeconds != 10 {
		t.Fatalf("expected 10s load timeout default, got %d", cfg.Timeouts.LoadTimeoutSeconds)
	}
	if cfg.Preview.DesktopBridgeURL == "" {
		t.Fatalf("expected desktop bridge url default")
	}
}

func TestLoadRejectsUnsupportedConfigVersion(t *testing.T) {
	path := writeConfig(t, `
config_version: 99
backend_url: http://localhost:8000
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestLoadRejectsMissingConfigVersion(t *testing.T) {
	path := writeConfig(t, `
backend_url: http://localhost:8000
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected missing config_version error")
	}
}

func TestLoadRejectsInvalidBackendURL(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
backend_url: "ldap://nope"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected backend_url error")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
backend_url: https://agent.example.com
timeouts:
  reconnect_seconds: 1
limits:
  ledger_max_entries: 7
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BackendURL != "https://agent.example.com" {
		t.Fatalf("backend_url override lost: %q", cfg.BackendURL)
	}
	if cfg.Timeouts.ReconnectSeconds != 1 {
		t.Fatalf("timeout override lost: %d", cfg.Timeouts.ReconnectSeconds)
	}
	if cfg.Limits.LedgerMaxEntries != 7 {
		t.Fatalf("ledger cap override lost: %d", cfg.Limits.LedgerMaxEntries)
	}
	if cfg.Limits.SandboxMaxLines != 2000 {
		t.Fatalf("unset key lost its default: %d", cfg.Limits.SandboxMaxLines)
	}
}

func TestWriteDefaultRespectsOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := WriteDefault(path, false); err != nil {
		t.Fatalf("write default: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected error without overwrite")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("reload written default: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("written config has version %d", cfg.ConfigVersion)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
