package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/render"
	"github.com/diogo/chatwidget/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Open the chat panel in a terminal UI.

Enter sends the message, Alt+Enter inserts a newline, Ctrl+L clears the
conversation and Esc closes the panel. Type /quit or press Ctrl+C to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSettings(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), deps, cfg, logger, cmd.ErrOrStderr())
		},
	}
}

func runChat(ctx context.Context, deps *Dependencies, cfg config.Config, logger zerolog.Logger, errOut io.Writer) error {
	tui.UpdateTheme(cfg.Theme)

	spin := newSpinner(errOut, "Loading chat panel")
	spin.start()
	s, err := openSession(ctx, deps, cfg, logger, 0)
	if err != nil {
		spin.stopWithError()
		fmt.Fprintln(errOut, formatErrorMessage(err, "Failed to load chat panel"))
		return fmt.Errorf("failed to load chat panel: %w", err)
	}
	spin.stopWithSuccess("Connected")
	defer s.close()

	// the TUI resizes the widget and the renderer on its first frame
	return deps.TUI.RunChat(ctx, s.widget, render.OptionsFromConfig(cfg, 0))
}
