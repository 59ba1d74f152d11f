// Package config handles configuration and session cookie management for chatwidget.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/diogo/chatwidget/internal/models"
)

// EnvPrefix prefixes every environment override, e.g. CHATWIDGET_BASE_URL.
const EnvPrefix = "CHATWIDGET_"

// Stream modes
const (
	// StreamAppend accumulates every chunk into the reply text
	StreamAppend = "append"
	// StreamCumulative treats every chunk as the full reply so far
	StreamCumulative = "cumulative"
)

// MarkdownConfig configures terminal markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" env:"MARKDOWN_STYLE"` // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`
	PreserveNewLines bool   `json:"preserve_newlines"`
	TableWrap        bool   `json:"table_wrap"`
	InlineTableLinks bool   `json:"inline_table_links"`
}

// Config represents the user configuration
type Config struct {
	// BaseURL is the origin serving the chat panel and form endpoints.
	BaseURL string `json:"base_url" env:"BASE_URL"`
	// PanelPath is the markup provider path, resolved against BaseURL.
	PanelPath string `json:"panel_path" env:"PANEL_PATH"`
	// RootID names the widget's isolation root; distinct IDs allow several
	// widgets in one process.
	RootID string `json:"root_id" env:"ROOT_ID"`
	// TimeoutSeconds bounds a whole request including the streamed body.
	// Zero disables the transport timeout.
	TimeoutSeconds int    `json:"timeout_seconds" env:"TIMEOUT_SECONDS"`
	StreamMode     string `json:"stream_mode" env:"STREAM_MODE"`
	// ViewportRows is the visible height of the message list.
	ViewportRows    int            `json:"viewport_rows" env:"VIEWPORT_ROWS"`
	Verbose         bool           `json:"verbose" env:"VERBOSE"`
	CopyToClipboard bool           `json:"copy_to_clipboard" env:"COPY_TO_CLIPBOARD"`
	// Theme names the TUI color palette.
	Theme    string         `json:"theme" env:"THEME"`
	Markdown MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:         models.DefaultBaseURL,
		PanelPath:       models.DefaultPanelPath,
		RootID:          models.DefaultRootID,
		TimeoutSeconds:  0,
		StreamMode:      StreamAppend,
		ViewportRows:    20,
		Verbose:         false,
		CopyToClipboard: false,
		Theme:           "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// Validate checks that the configuration can drive a widget
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base_url %q: missing host", c.BaseURL)
	}
	if c.RootID == "" {
		return fmt.Errorf("root_id cannot be empty")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative")
	}
	switch c.StreamMode {
	case StreamAppend, StreamCumulative:
	default:
		return fmt.Errorf("invalid stream_mode %q: expected %s or %s", c.StreamMode, StreamAppend, StreamCumulative)
	}
	return nil
}

// PanelURL resolves the panel path against the base URL
func (c Config) PanelURL() (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err)
	}
	ref, err := url.Parse(c.PanelPath)
	if err != nil {
		return "", fmt.Errorf("invalid panel_path %q: %w", c.PanelPath, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// GetConfigDir returns the configuration directory path.
// CHATWIDGET_HOME overrides the default ~/.chatwidget.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "HOME"); dir != "" {
		return filepath.Abs(dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".chatwidget"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds session cookies
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetCookiesPath returns the path to the cookies file
func GetCookiesPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "cookies.json"), nil
}

// LoadConfig loads the configuration from disk and applies environment overrides
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var setters = map[string]func(*Config, string) error{
	"base_url":          func(c *Config, v string) error { c.BaseURL = v; return nil },
	"panel_path":        func(c *Config, v string) error { c.PanelPath = v; return nil },
	"root_id":           func(c *Config, v string) error { c.RootID = v; return nil },
	"stream_mode":       func(c *Config, v string) error { c.StreamMode = strings.ToLower(v); return nil },
	"theme":             func(c *Config, v string) error { c.Theme = strings.ToLower(v); return nil },
	"markdown.style":    func(c *Config, v string) error { c.Markdown.Style = v; return nil },
	"timeout_seconds":   intSetter(func(c *Config) *int { return &c.TimeoutSeconds }),
	"viewport_rows":     intSetter(func(c *Config) *int { return &c.ViewportRows }),
	"verbose":           boolSetter(func(c *Config) *bool { return &c.Verbose }),
	"copy_to_clipboard": boolSetter(func(c *Config) *bool { return &c.CopyToClipboard }),
	"markdown.emoji":    boolSetter(func(c *Config) *bool { return &c.Markdown.EnableEmoji }),
}

// SettableKeys lists the keys accepted by Set, sorted
func SettableKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set updates a single configuration key from its string form and validates the result
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(SettableKeys(), ", "))
	}
	next := *c
	if err := set(&next, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

var getters = map[string]func(Config) string{
	"base_url":          func(c Config) string { return c.BaseURL },
	"panel_path":        func(c Config) string { return c.PanelPath },
	"root_id":           func(c Config) string { return c.RootID },
	"stream_mode":       func(c Config) string { return c.StreamMode },
	"theme":             func(c Config) string { return c.Theme },
	"markdown.style":    func(c Config) string { return c.Markdown.Style },
	"timeout_seconds":   func(c Config) string { return strconv.Itoa(c.TimeoutSeconds) },
	"viewport_rows":     func(c Config) string { return strconv.Itoa(c.ViewportRows) },
	"verbose":           func(c Config) string { return strconv.FormatBool(c.Verbose) },
	"copy_to_clipboard": func(c Config) string { return strconv.FormatBool(c.CopyToClipboard) },
	"markdown.emoji":    func(c Config) string { return strconv.FormatBool(c.Markdown.EnableEmoji) },
}

// Get returns the string form of a settable key
func (c Config) Get(key string) (string, bool) {
	get, ok := getters[key]
	if !ok {
		return "", false
	}
	return get(c), true
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}
