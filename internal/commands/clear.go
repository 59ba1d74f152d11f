package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/chatwidget/internal/config"
)

// NewClearCmd creates the command that clears the server-side conversation
func NewClearCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the conversation",
		Long:  `Load the chat panel and submit its clear form. The server decides what is deleted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSettings(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runClear(cmd.Context(), deps, cfg, logger, cmd.OutOrStdout())
		},
	}
}

func runClear(ctx context.Context, deps *Dependencies, cfg config.Config, logger zerolog.Logger, out io.Writer) error {
	s, err := openSession(ctx, deps, cfg, logger, 0)
	if err != nil {
		return fmt.Errorf("failed to load chat panel: %w", err)
	}
	defer s.close()

	cleared := len(s.widget.Messages())
	if err := s.widget.Clear(ctx); err != nil {
		fmt.Fprintln(out, formatErrorMessage(err, "Clear failed"))
		return fmt.Errorf("clear failed: %w", err)
	}

	msg := fmt.Sprintf("✓ Conversation cleared (%d messages)", cleared)
	fmt.Fprintln(out, lipgloss.NewStyle().Foreground(colorSuccess).Render(msg))
	return nil
}
