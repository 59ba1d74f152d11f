// Package browser provides functionality to extract cookies from web browsers.
package browser

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/chromium"
	_ "github.com/browserutils/kooky/browser/edge"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/opera"

	"github.com/diogo/chatwidget/internal/config"
)

// SupportedBrowser represents a supported browser type
type SupportedBrowser string

const (
	BrowserAuto     SupportedBrowser = "auto"
	BrowserChrome   SupportedBrowser = "chrome"
	BrowserChromium SupportedBrowser = "chromium"
	BrowserFirefox  SupportedBrowser = "firefox"
	BrowserEdge     SupportedBrowser = "edge"
	BrowserOpera    SupportedBrowser = "opera"
)

// DefaultSessionCookies are the cookies a chat server session relies on.
var DefaultSessionCookies = []string{"sessionid", "csrftoken"}

// AllSupportedBrowsers returns a list of all supported browsers
func AllSupportedBrowsers() []SupportedBrowser {
	return []SupportedBrowser{
		BrowserChrome,
		BrowserChromium,
		BrowserFirefox,
		BrowserEdge,
		BrowserOpera,
	}
}

// String returns the string representation of the browser
func (b SupportedBrowser) String() string {
	return string(b)
}

// ParseBrowser parses a browser string into a SupportedBrowser
func ParseBrowser(s string) (SupportedBrowser, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return BrowserAuto, nil
	case "chrome", "google-chrome":
		return BrowserChrome, nil
	case "chromium":
		return BrowserChromium, nil
	case "firefox", "mozilla", "mozilla-firefox":
		return BrowserFirefox, nil
	case "edge", "microsoft-edge", "msedge":
		return BrowserEdge, nil
	case "opera":
		return BrowserOpera, nil
	default:
		return "", fmt.Errorf("unsupported browser: %s. Supported: chrome, chromium, firefox, edge, opera", s)
	}
}

// ExtractResult contains the result of cookie extraction
type ExtractResult struct {
	Cookies     *config.Cookies
	BrowserName string
}

// ExtractSessionCookies extracts the chat server's session cookies for host.
// names restricts the result to the given cookie names; nil keeps every
// cookie set for the host.
func ExtractSessionCookies(ctx context.Context, browser SupportedBrowser, host string, names []string) (*ExtractResult, error) {
	if host == "" {
		return nil, fmt.Errorf("cookie host cannot be empty")
	}
	if browser == BrowserAuto {
		return extractFromAllBrowsers(ctx, host, names)
	}
	return extractFromBrowser(ctx, browser, host, names)
}

// extractFromAllBrowsers tries to extract cookies from all supported browsers
func extractFromAllBrowsers(ctx context.Context, host string, names []string) (*ExtractResult, error) {
	browsers := []SupportedBrowser{
		BrowserChrome,
		BrowserFirefox,
		BrowserEdge,
		BrowserChromium,
		BrowserOpera,
	}

	var lastErr error
	for _, browser := range browsers {
		result, err := extractFromBrowser(ctx, browser, host, names)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("could not find cookies for %s in any browser: %w", host, lastErr)
	}
	return nil, fmt.Errorf("could not find cookies for %s in any supported browser", host)
}

// extractFromBrowser tries every profile of a browser until one holds cookies for host
func extractFromBrowser(ctx context.Context, browser SupportedBrowser, host string, names []string) (*ExtractResult, error) {
	stores := kooky.FindAllCookieStores(ctx)

	var matchingStores []kooky.CookieStore
	for _, store := range stores {
		if matchesBrowser(store.Browser(), browser) {
			matchingStores = append(matchingStores, store)
		} else {
			store.Close()
		}
	}
	defer func() {
		for _, store := range matchingStores {
			store.Close()
		}
	}()

	if len(matchingStores) == 0 {
		return nil, fmt.Errorf("browser %s not found or no cookie store available", browser)
	}

	var lastErr error
	for _, store := range matchingStores {
		displayName := store.Browser()
		if profile := store.Profile(); profile != "" {
			displayName = fmt.Sprintf("%s (profile: %s)", displayName, profile)
		}

		seq := store.TraverseCookies(
			kooky.Valid,
			kooky.DomainContains(host),
		).OnlyCookies()

		cookies, err := selectCookies(ctx, seq, host, names)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", displayName, err)
			continue
		}
		return &ExtractResult{Cookies: cookies, BrowserName: displayName}, nil
	}

	return nil, lastErr
}

// matchesBrowser checks if a browser name matches the target browser
func matchesBrowser(browserName string, target SupportedBrowser) bool {
	browserName = strings.ToLower(browserName)

	switch target {
	case BrowserChrome:
		return strings.Contains(browserName, "chrome") && !strings.Contains(browserName, "chromium")
	case BrowserChromium:
		return strings.Contains(browserName, "chromium")
	case BrowserFirefox:
		return strings.Contains(browserName, "firefox")
	case BrowserEdge:
		return strings.Contains(browserName, "edge")
	case BrowserOpera:
		return strings.Contains(browserName, "opera")
	default:
		return false
	}
}

// domainMatches reports whether a cookie domain applies to host
func domainMatches(domain, host string) bool {
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	host = strings.ToLower(host)
	return domain == host || strings.HasSuffix(host, "."+domain)
}

// selectCookies picks the wanted cookies out of a store traversal. When a
// name is set for several domains the most specific one wins.
func selectCookies(ctx context.Context, seq iter.Seq[*kooky.Cookie], host string, names []string) (*config.Cookies, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	best := make(map[string]*kooky.Cookie)
	var order []string
	for cookie := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if cookie == nil || !domainMatches(cookie.Domain, host) {
			continue
		}
		if len(wanted) > 0 && !wanted[cookie.Name] {
			continue
		}

		current, seen := best[cookie.Name]
		if !seen {
			order = append(order, cookie.Name)
		}
		if !seen || len(strings.TrimPrefix(cookie.Domain, ".")) > len(strings.TrimPrefix(current.Domain, ".")) {
			best[cookie.Name] = cookie
		}
	}

	for _, name := range names {
		if _, ok := best[name]; !ok {
			return nil, fmt.Errorf("cookie %s not found for %s. Please ensure you are logged in to the chat site", name, host)
		}
	}
	if len(best) == 0 {
		return nil, fmt.Errorf("no cookies found for %s", host)
	}

	result := config.NewCookies()
	for _, name := range order {
		c := best[name]
		result.Set(config.Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path})
	}
	return result, nil
}

// ListAvailableBrowsers returns a list of browsers that have cookie stores
func ListAvailableBrowsers(ctx context.Context) []string {
	stores := kooky.FindAllCookieStores(ctx)
	var browsers []string

	seen := make(map[string]bool)
	for _, store := range stores {
		name := store.Browser()
		if !seen[name] {
			browsers = append(browsers, name)
			seen[name] = true
		}
		store.Close()
	}

	return browsers
}
