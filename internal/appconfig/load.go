package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty,
// uses DefaultConfigPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("backend_url", cfg.BackendURL)
	v.SetDefault("console.theme", cfg.Console.Theme)
	v.SetDefault("console.compact_width", cfg.Console.CompactWidth)
	v.SetDefault("timeouts.reconnect_seconds", cfg.Timeouts.ReconnectSeconds)
	v.SetDefault("timeouts.desktop_settle_seconds", cfg.Timeouts.DesktopSettleSeconds)
	v.SetDefault("timeouts.load_timeout_seconds", cfg.Timeouts.LoadTimeoutSeconds)
	v.SetDefault("timeouts.panel_close_millis", cfg.Timeouts.PanelCloseMillis)
	v.SetDefault("limits.transcript_max_lines", cfg.Limits.TranscriptMaxLines)
	v.SetDefault("limits.sandbox_max_lines", cfg.Limits.SandboxMaxLines)
	v.SetDefault("limits.ledger_max_entries", cfg.Limits.LedgerMaxEntries)
	v.SetDefault("preview.desktop_bridge_url", cfg.Preview.DesktopBridgeURL)
	v.SetDefault("preview.enable_title_probe", cfg.Preview.EnableTitleProbe)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return Config{}, err
			}
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if err := validateBackendURL(cfg.BackendURL); err != nil {
		return Config{}, err
	}
	if cfg.Timeouts.ReconnectSeconds <= 0 {
		return Config{}, fmt.Errorf("timeouts.reconnect_seconds must be positive")
	}
	if cfg.Timeouts.LoadTimeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("timeouts.load_timeout_seconds must be positive")
	}
	if cfg.Limits.LedgerMaxEntries <= 0 {
		return Config{}, fmt.Errorf("limits.ledger_max_entries must be positive")
	}

	return cfg, nil
}

// WriteDefault writes the default config to path unless one exists.
// Returns the path written.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
