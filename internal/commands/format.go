package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	apierrors "github.com/diogo/chatwidget/internal/errors"
)

// getTerminalWidth returns the terminal width of w or a default value
func getTerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isTTY returns true if v is a file connected to a terminal
func isTTY(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// truncate shortens s to n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(truncate(body, 500), "\n", "\n  "))))
		return sb.String()
	}

	switch {
	case apierrors.IsStatus(err, 403):
		sb.WriteString(dimStyle.Render("\n  Hint: The server rejected the session. Try 'chatwidget import-cookies'"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check that the chat server is reachable and base_url is correct"))
	case apierrors.IsStreamError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The reply was interrupted. Send the message again"))
	case apierrors.Is(err, apierrors.ErrFormNotFound), apierrors.Is(err, apierrors.ErrControlNotFound):
		sb.WriteString(dimStyle.Render("\n  Hint: The panel markup is missing a widget hook. Check panel_path"))
	}

	return sb.String()
}
