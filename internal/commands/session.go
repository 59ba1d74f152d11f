package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/widget"
)

// widgets tracks the panels mounted by this process
var widgets = widget.NewRegistry()

// session is a loaded widget and the client behind it
type session struct {
	client SessionClient
	widget *widget.Widget
	logger zerolog.Logger
}

// openSession loads the saved cookies, connects and mounts the chat panel
func openSession(ctx context.Context, deps *Dependencies, cfg config.Config, logger zerolog.Logger, width int) (*session, error) {
	cookies, err := config.LoadCookies()
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring unreadable cookies file")
		cookies = config.NewCookies()
	}

	client, err := deps.Connect(cfg, cookies, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	w, err := widgets.Mount(ctx, client,
		widget.WithLogger(logger),
		widget.WithRootID(cfg.RootID),
		widget.WithStreamMode(cfg.StreamMode),
		widget.WithViewport(cfg.ViewportRows, width),
	)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &session{client: client, widget: w, logger: logger}, nil
}

// close unmounts the widget and persists the cookies the server issued
func (s *session) close() {
	widgets.Unmount(s.widget.RootID())

	if cookies := s.client.SessionCookies(); cookies != nil && cookies.Len() > 0 {
		if err := config.SaveCookies(cookies); err != nil {
			s.logger.Warn().Err(err).Msg("failed to save session cookies")
		}
	}
	s.client.Close()
}
