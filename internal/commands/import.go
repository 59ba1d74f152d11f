package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/chatwidget/internal/browser"
	"github.com/diogo/chatwidget/internal/config"
)

// importOptions selects where session cookies come from
type importOptions struct {
	browser      string
	names        []string
	listBrowsers bool
}

// NewImportCookiesCmd creates the command that stores session cookies
func NewImportCookiesCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import-cookies [path]",
		Short: "Import session cookies from a file or a browser",
		Long: `Import the chat server's session cookies.

From a JSON file, either:
1. A list of objects: [{"name": "sessionid", "value": "..."}]
2. A simple dictionary: {"sessionid": "...", "csrftoken": "..."}

Or from a logged-in browser profile with --browser (auto, chrome, chromium,
firefox, edge, opera). The cookie host is taken from base_url.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if opts.listBrowsers {
				return listBrowsers(cmd.Context(), out)
			}
			switch {
			case len(args) == 1 && opts.browser != "":
				return errors.New("give either a cookies file or --browser, not both")
			case len(args) == 1:
				return runImportCookies(out, args[0])
			case opts.browser != "":
				cfg, _, err := loadSettings(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				return runImportBrowserCookies(cmd.Context(), out, cfg, opts)
			default:
				return errors.New("a cookies file or --browser is required")
			}
		},
	}

	cmd.Flags().StringVarP(&opts.browser, "browser", "b", "", "Extract cookies from this browser")
	cmd.Flags().StringSliceVar(&opts.names, "cookie", browser.DefaultSessionCookies, "Cookie names to extract (empty keeps every cookie for the host)")
	cmd.Flags().BoolVar(&opts.listBrowsers, "list-browsers", false, "List browsers with a readable cookie store")
	return cmd
}

func runImportCookies(out io.Writer, sourcePath string) error {
	cookies, err := config.ImportCookies(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to import cookies: %w", err)
	}

	cookiesPath, _ := config.GetCookiesPath()
	fmt.Fprintf(out, "Imported %d cookies to %s\n", cookies.Len(), cookiesPath)
	return nil
}

func runImportBrowserCookies(ctx context.Context, out io.Writer, cfg config.Config, opts importOptions) error {
	target, err := browser.ParseBrowser(opts.browser)
	if err != nil {
		return err
	}

	host, err := cookieHost(cfg.BaseURL)
	if err != nil {
		return err
	}

	result, err := browser.ExtractSessionCookies(ctx, target, host, opts.names)
	if err != nil {
		return fmt.Errorf("failed to extract cookies: %w", err)
	}
	if err := config.SaveCookies(result.Cookies); err != nil {
		return err
	}

	cookiesPath, _ := config.GetCookiesPath()
	fmt.Fprintf(out, "Imported %d cookies for %s from %s to %s\n", result.Cookies.Len(), host, result.BrowserName, cookiesPath)
	return nil
}

// cookieHost returns the bare host name cookies are scoped to
func cookieHost(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base_url %q: %w", baseURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid base_url %q: missing host", baseURL)
	}
	return u.Hostname(), nil
}

func listBrowsers(ctx context.Context, out io.Writer) error {
	names := browser.ListAvailableBrowsers(ctx)
	if len(names) == 0 {
		fmt.Fprintln(out, "No browser cookie stores found")
		return nil
	}
	fmt.Fprintln(out, strings.Join(names, "\n"))
	return nil
}
