package commands

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/diogo/chatwidget/internal/api"
	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/render"
	"github.com/diogo/chatwidget/internal/tui"
	"github.com/diogo/chatwidget/internal/widget"
)

// SessionClient is a widget client that owns a cookie session
type SessionClient interface {
	widget.Client
	SessionCookies() *config.Cookies
	Close()
}

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, w *widget.Widget, opts render.Options) error
	RunConfig() error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Connect creates the client talking to the chat server.
	Connect func(cfg config.Config, cookies *config.Cookies, logger zerolog.Logger) (SessionClient, error)

	// TUI is the terminal user interface.
	TUI TUIInterface
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, w *widget.Widget, opts render.Options) error {
	return tui.RunChat(ctx, w, opts)
}

func (d *DefaultTUI) RunConfig() error {
	return tui.RunConfig()
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		Connect: connect,
		TUI:     &DefaultTUI{},
	}
}

func connect(cfg config.Config, cookies *config.Cookies, logger zerolog.Logger) (SessionClient, error) {
	client, err := api.NewClient(cfg.BaseURL, cookies,
		api.WithPanelPath(cfg.PanelPath),
		api.WithTimeoutSeconds(cfg.TimeoutSeconds),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
