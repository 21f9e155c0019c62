// Package config loads, saves, and validates the engine's policy snapshot.
// Default: maximum security (confirmation mode "all", kill switch enabled,
// broad deny-lists).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"warden/internal/logging"
)

// ConfirmationMode controls how much user confirmation a gated action requires.
type ConfirmationMode string

const (
	ModeAll         ConfirmationMode = "all"
	ModeSensitive   ConfirmationMode = "sensitive"
	ModeAutonomous  ConfirmationMode = "autonomous"
	ModeBlock       ConfirmationMode = "block"
	defaultFileName                 = "config.json"
)

// Config is the root Policy Snapshot. It is loaded once at start and
// persisted whenever changed; it is otherwise treated as immutable for
// the lifetime of the process it was loaded into.
type Config struct {
	Security  SecurityConfig  `json:"security" yaml:"security"`
	Automation AutomationConfig `json:"automation" yaml:"automation"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Language  string          `json:"language" yaml:"language"`

	// telemetry is never configurable and never serialized; it exists only
	// to make the engine's no-telemetry stance explicit in code.
	telemetry bool
}

// SecurityConfig is the security-relevant subset of the Policy Snapshot.
type SecurityConfig struct {
	ConfirmationMode      ConfirmationMode  `json:"confirmation_mode" yaml:"confirmation_mode"`
	KillSwitchHotkey      string            `json:"kill_switch_hotkey" yaml:"kill_switch_hotkey"`
	KillSwitchEnabled     bool              `json:"kill_switch_enabled" yaml:"kill_switch_enabled"`
	BlockedApplications   []string          `json:"blocked_applications" yaml:"blocked_applications"`
	BlockedCommandPatterns []string         `json:"blocked_command_patterns" yaml:"blocked_command_patterns"`
	MaxActionsPerMinute   int               `json:"max_actions_per_minute" yaml:"max_actions_per_minute"`
	SensitiveValuePatterns map[string]string `json:"sensitive_value_patterns" yaml:"sensitive_value_patterns"`
	EncryptLogs           bool              `json:"encrypt_logs" yaml:"encrypt_logs"`
	LogRetentionDays      int               `json:"log_retention_days" yaml:"log_retention_days"`
}

// AutomationConfig controls automation behavior.
type AutomationConfig struct {
	DefaultBackend      string  `json:"default_backend" yaml:"default_backend"`
	ScreenshotFormat    string  `json:"screenshot_format" yaml:"screenshot_format"`
	ScreenshotQuality   int     `json:"screenshot_quality" yaml:"screenshot_quality"`
	UITimeoutSeconds    float64 `json:"ui_timeout_seconds" yaml:"ui_timeout_seconds"`
	PreferSilentMethods bool    `json:"prefer_silent_methods" yaml:"prefer_silent_methods"`
	MouseSpeed          float64 `json:"mouse_speed" yaml:"mouse_speed"`
	AgentScreenOnly     bool    `json:"agent_screen_only" yaml:"agent_screen_only"`
}

// DefaultConfig returns the most restrictive valid Policy Snapshot.
func DefaultConfig() *Config {
	return &Config{
		Security: SecurityConfig{
			ConfirmationMode:  ModeAll,
			KillSwitchHotkey:  "ctrl+shift+escape",
			KillSwitchEnabled: true,
			BlockedApplications: []string{
				// Banking & finance
				"chase", "bankofamerica", "wellsfargo", "citi", "capital one",
				"paypal", "venmo", "zelle", "cashapp", "coinbase", "robinhood",
				// Password managers
				"1password", "lastpass", "bitwarden", "keepass", "dashlane",
				// Security & auth
				"authenticator", "authy", "yubikey",
				// System security
				"windows security", "defender", "firewall",
			},
			BlockedCommandPatterns: []string{
				"format", "del /f", "del /s", "rmdir /s", "rm -rf",
				"shutdown", "restart", "reg delete", "bcdedit",
				"cipher /w", "diskpart", "sfc", "dism",
				"net user", "net localgroup", "netsh",
				"powershell -encodedcommand", "powershell -enc",
				"invoke-webrequest", "invoke-restmethod",
				"set-executionpolicy", "new-service",
			},
			MaxActionsPerMinute: 30,
			SensitiveValuePatterns: map[string]string{
				"credit_card":    `\b\d{4}[\s\-]?\d{4}[\s\-]?\d{4}[\s\-]?\d{4}\b`,
				"ssn":            `\b\d{3}-\d{2}-\d{4}\b`,
				"email":          `\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`,
				"phone_us":       `\b(\+1[\s\-]?)?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{4}\b`,
				"password_field": `(?i)(password|passwd|pwd|secret|token|api[_\-]?key)`,
			},
			EncryptLogs:      true,
			LogRetentionDays: 30,
		},
		Automation: AutomationConfig{
			DefaultBackend:      "uia",
			ScreenshotFormat:    "jpeg",
			ScreenshotQuality:   85,
			UITimeoutSeconds:    10.0,
			PreferSilentMethods: true,
			MouseSpeed:          0.0,
			AgentScreenOnly:     true,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			DebugMode: false,
		},
		Language:  "auto",
		telemetry: false,
	}
}

// Dir returns the engine's configuration directory under the user's home.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".warden"), nil
}

// Load reads the Policy Snapshot from path, creating a default one (and
// persisting it) if the file does not exist. A corrupted file falls back
// to defaults rather than failing the process.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Get(logging.CategoryBoot).Info("no config file found, writing defaults: %s", path)
			if saveErr := cfg.Save(path); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		logging.Get(logging.CategoryBoot).Info("config file corrupted, reverting to defaults: %v", err)
		cfg = DefaultConfig()
		if saveErr := cfg.Save(path); saveErr != nil {
			return nil, saveErr
		}
		return cfg, nil
	}
	cfg.telemetry = false

	return cfg, nil
}

// Save persists the Policy Snapshot as JSON. The telemetry flag is never
// written; it is always false and is not part of the wire shape at all.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks invariants that must hold for a usable Policy Snapshot.
func (c *Config) Validate() error {
	switch c.Security.ConfirmationMode {
	case ModeAll, ModeSensitive, ModeAutonomous, ModeBlock:
	default:
		return fmt.Errorf("invalid confirmation_mode: %q", c.Security.ConfirmationMode)
	}
	if c.Security.MaxActionsPerMinute <= 0 {
		return fmt.Errorf("max_actions_per_minute must be positive")
	}
	for name, pattern := range c.Security.SensitiveValuePatterns {
		if pattern == "" {
			return fmt.Errorf("sensitive_value_patterns[%s] is empty", name)
		}
	}
	return nil
}
