package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Cookie is one session cookie forwarded with every widget request
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

// Cookies holds the session cookies for the chat server
type Cookies struct {
	mu    sync.RWMutex
	items []Cookie
}

// NewCookies creates a cookie set from items
func NewCookies(items ...Cookie) *Cookies {
	c := &Cookies{}
	for _, item := range items {
		c.Set(item)
	}
	return c
}

// Set adds a cookie or replaces the one with the same name, domain and path
func (c *Cookies) Set(cookie Cookie) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.items {
		if existing.Name == cookie.Name && existing.Domain == cookie.Domain && existing.Path == cookie.Path {
			c.items[i] = cookie
			return
		}
	}
	c.items = append(c.items, cookie)
}

// Get returns the value of the first cookie named name
func (c *Cookies) Get(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.Name == name {
			return item.Value, true
		}
	}
	return "", false
}

// Len returns the number of cookies
func (c *Cookies) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Snapshot returns a copy of the cookies (for serialization or HTTP requests)
func (c *Cookies) Snapshot() []Cookie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Cookie, len(c.items))
	copy(out, c.items)
	return out
}

// ToMap converts cookies to a name/value map (thread-safe)
func (c *Cookies) ToMap() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := make(map[string]string, len(c.items))
	for _, item := range c.items {
		m[item.Name] = item.Value
	}
	return m
}

// LoadCookies loads cookies from the cookies file. A missing file yields an
// empty set: session cookies are optional for anonymous chat panels.
func LoadCookies() (*Cookies, error) {
	cookiesPath, err := GetCookiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(cookiesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewCookies(), nil
		}
		return nil, fmt.Errorf("failed to read cookies file: %w", err)
	}

	return parseCookies(data)
}

// parseCookies parses cookies from JSON data.
// Supports both list format [{name, value, ...}] and dict format {name: value}
func parseCookies(data []byte) (*Cookies, error) {
	var dictFormat map[string]string
	if err := json.Unmarshal(data, &dictFormat); err == nil {
		names := make([]string, 0, len(dictFormat))
		for name := range dictFormat {
			names = append(names, name)
		}
		sort.Strings(names)

		cookies := NewCookies()
		for _, name := range names {
			if name == "" {
				continue
			}
			cookies.Set(Cookie{Name: name, Value: dictFormat[name]})
		}
		return cookies, nil
	}

	var listFormat []Cookie
	if err := json.Unmarshal(data, &listFormat); err == nil {
		cookies := NewCookies()
		for _, item := range listFormat {
			if item.Name == "" {
				return nil, fmt.Errorf("invalid cookie entry: missing name")
			}
			cookies.Set(item)
		}
		return cookies, nil
	}

	return nil, fmt.Errorf("invalid cookies format: expected list [{name, value}] or dict {name: value}")
}

// SaveCookies saves cookies to the cookies file
func SaveCookies(cookies *Cookies) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cookies.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	// owner read/write only
	if err := os.WriteFile(filepath.Join(configDir, "cookies.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookies file: %w", err)
	}

	return nil
}

// ImportCookies imports cookies from a source file
func ImportCookies(sourcePath string) (*Cookies, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source file not found: %s", sourcePath)
		}
		return nil, fmt.Errorf("could not read file: %w", err)
	}

	cookies, err := parseCookies(data)
	if err != nil {
		return nil, err
	}

	if cookies.Len() == 0 {
		return nil, fmt.Errorf("no cookies found in %s", sourcePath)
	}

	return cookies, SaveCookies(cookies)
}
