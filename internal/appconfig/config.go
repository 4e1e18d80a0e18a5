package appconfig

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	BackendURL    string        `mapstructure:"backend_url" yaml:"backend_url"`
	Console       ConsoleConfig `mapstructure:"console" yaml:"console"`
	Timeouts      TimeoutConfig `mapstructure:"timeouts" yaml:"timeouts"`
	Limits        LimitConfig   `mapstructure:"limits" yaml:"limits"`
	Preview       PreviewConfig `mapstructure:"preview" yaml:"preview"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ConsoleConfig controls the terminal surfaces.
type ConsoleConfig struct {
	Theme        string `mapstructure:"theme" yaml:"theme"`
	CompactWidth int    `mapstructure:"compact_width" yaml:"compact_width"`
}

// TimeoutConfig names the fixed-delay heuristics of the sync layer.
// These stand in for completion signals the producer does not send;
// tests must only assert that a terminal state is reached within them.
type TimeoutConfig struct {
	// ReconnectSeconds is the delay before the single reconnect attempt
	// scheduled after a transport closure.
	ReconnectSeconds int `mapstructure:"reconnect_seconds" yaml:"reconnect_seconds"`
	// DesktopSettleSeconds is the wait after starting the remote-desktop
	// bridge before loading its URL.
	DesktopSettleSeconds int `mapstructure:"desktop_settle_seconds" yaml:"desktop_settle_seconds"`
	// LoadTimeoutSeconds bounds a preview load; when it elapses the
	// status is forced to connected regardless of actual completion.
	LoadTimeoutSeconds int `mapstructure:"load_timeout_seconds" yaml:"load_timeout_seconds"`
	// PanelCloseMillis delays panel teardown so close animations on the
	// surfaces finish before state is cleared.
	PanelCloseMillis int `mapstructure:"panel_close_millis" yaml:"panel_close_millis"`
}

// LimitConfig caps in-memory history.
type LimitConfig struct {
	TranscriptMaxLines int `mapstructure:"transcript_max_lines" yaml:"transcript_max_lines"`
	SandboxMaxLines    int `mapstructure:"sandbox_max_lines" yaml:"sandbox_max_lines"`
	LedgerMaxEntries   int `mapstructure:"ledger_max_entries" yaml:"ledger_max_entries"`
}

// PreviewConfig controls the live-preview viewport.
type PreviewConfig struct {
	// DesktopBridgeURL is the fixed local URL of the remote-desktop
	// bridge loaded once the bridge reports ready.
	DesktopBridgeURL string `mapstructure:"desktop_bridge_url" yaml:"desktop_bridge_url"`
	// EnableTitleProbe resolves web-preview page titles with a headless
	// browser when true.
	EnableTitleProbe bool `mapstructure:"enable_title_probe" yaml:"enable_title_probe"`
}

// ReconnectDelay returns the reconnect delay as a duration.
func (t TimeoutConfig) ReconnectDelay() time.Duration {
	return time.Duration(t.ReconnectSeconds) * time.Second
}

// DesktopSettle returns the bridge settle delay as a duration.
func (t TimeoutConfig) DesktopSettle() time.Duration {
	return time.Duration(t.DesktopSettleSeconds) * time.Second
}

// LoadTimeout returns the preview load bound as a duration.
func (t TimeoutConfig) LoadTimeout() time.Duration {
	return time.Duration(t.LoadTimeoutSeconds) * time.Second
}

// PanelCloseDelay returns the panel teardown delay as a duration.
func (t TimeoutConfig) PanelCloseDelay() time.Duration {
	return time.Duration(t.PanelCloseMillis) * time.Millisecond
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		BackendURL:    "http://localhost:8000",
		Console: ConsoleConfig{
			Theme:        "dark",
			CompactWidth: 48,
		},
		Timeouts: TimeoutConfig{
			ReconnectSeconds:     3,
			DesktopSettleSeconds: 2,
			LoadTimeoutSeconds:   10,
			PanelCloseMillis:     1500,
		},
		Limits: LimitConfig{
			TranscriptMaxLines: 5000,
			SandboxMaxLines:    2000,
			LedgerMaxEntries:   100,
		},
		Preview: PreviewConfig{
			DesktopBridgeURL: "http://localhost:6080/vnc.html",
			EnableTitleProbe: false,
		},
	}
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".agentdeck", "config.yaml"), nil
}

func validateBackendURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("backend_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("backend_url must be http or https, got %q", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("backend_url missing host: %q", raw)
	}
	return nil
}
