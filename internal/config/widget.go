package config

import (
	"sort"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/chatwidget/internal/errors"
)

// Keys recognised in the configuration block embedded in the panel markup
const (
	KeyRenderMarkdown = "RENDER_MARKDOWN"
	KeyChatTitle      = "CHAT_TITLE"
	KeyPlaceholder    = "PLACEHOLDER"
)

// WidgetConfig is the key/value configuration a chat panel embeds in its
// markup. It is parsed once at load time and never mutated afterwards.
type WidgetConfig struct {
	values map[string]gjson.Result
}

// DefaultWidgetConfig returns the configuration used when the panel embeds none
func DefaultWidgetConfig() WidgetConfig {
	return WidgetConfig{values: map[string]gjson.Result{}}
}

// ParseWidgetConfig parses the JSON object embedded in the panel markup
func ParseWidgetConfig(payload string) (WidgetConfig, error) {
	if !gjson.Valid(payload) {
		return DefaultWidgetConfig(), apierrors.NewParseError("invalid JSON in widget configuration", "")
	}

	parsed := gjson.Parse(payload)
	if !parsed.IsObject() {
		return DefaultWidgetConfig(), apierrors.NewParseError("widget configuration must be a JSON object", "")
	}

	values := make(map[string]gjson.Result)
	parsed.ForEach(func(key, value gjson.Result) bool {
		values[key.String()] = value
		return true
	})

	return WidgetConfig{values: values}, nil
}

// Has reports whether key is present
func (c WidgetConfig) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Bool returns key as a boolean, or def when absent
func (c WidgetConfig) Bool(key string, def bool) bool {
	v, ok := c.values[key]
	if !ok || v.Type == gjson.Null {
		return def
	}
	return v.Bool()
}

// String returns key as a string, or def when absent
func (c WidgetConfig) String(key, def string) string {
	v, ok := c.values[key]
	if !ok || v.Type == gjson.Null {
		return def
	}
	return v.String()
}

// Keys returns the configured keys, sorted
func (c WidgetConfig) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RenderMarkdown reports whether streamed replies are formatted markup.
// Plain text is assumed when the key is absent.
func (c WidgetConfig) RenderMarkdown() bool {
	return c.Bool(KeyRenderMarkdown, false)
}
