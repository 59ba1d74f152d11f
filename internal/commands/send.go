package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/models"
	"github.com/diogo/chatwidget/internal/render"
	"github.com/diogo/chatwidget/internal/widget"
)

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)

	fieldErrorStyle = lipgloss.NewStyle().Foreground(colorError)
)

// sendOptions controls how a reply is printed
type sendOptions struct {
	raw    bool
	copy   bool
	output string
}

// NewSendCmd creates the one-shot send command
func NewSendCmd(deps *Dependencies) *cobra.Command {
	var opts sendOptions
	var fileFlag string

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send one message and print the reply",
		Long: `Load the chat panel, submit one message and print the reply as it streams.

The message is read from the argument, from --file, or from stdin.
When stdout is not a terminal the reply is printed raw, chunk by chunk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readMessage(cmd.InOrStdin(), args, fileFlag)
			if err != nil {
				return err
			}
			cfg, logger, err := loadSettings(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.CopyToClipboard {
				opts.copy = true
			}
			return runSend(cmd.Context(), deps, cfg, logger, text, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the message from a file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the reply to a file")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the reply without decoration")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the reply to the clipboard")
	return cmd
}

// readMessage picks the message from the argument, a file or piped stdin
func readMessage(stdin io.Reader, args []string, file string) (string, error) {
	var text string
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		text = string(data)
	case len(args) > 0:
		text = args[0]
	case stdin != nil && !isTTY(stdin):
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("message cannot be empty")
	}
	return text, nil
}

func runSend(ctx context.Context, deps *Dependencies, cfg config.Config, logger zerolog.Logger, text string, opts sendOptions, out, errOut io.Writer) error {
	decorated := !opts.raw && isTTY(out)
	width := min(max(getTerminalWidth(out)-4, 40), 120)

	var spin *spinner
	if decorated {
		spin = newSpinner(errOut, "Connecting")
		spin.start()
	}

	s, err := openSession(ctx, deps, cfg, logger, width)
	if err != nil {
		if decorated {
			spin.stopWithError()
			fmt.Fprintln(errOut, formatErrorMessage(err, "Failed to load chat panel"))
		}
		return fmt.Errorf("failed to load chat panel: %w", err)
	}
	defer s.close()

	if decorated {
		spin.stopWithSuccess("Connected")
		spin = newSpinner(errOut, "Waiting for reply")
		spin.start()
	} else if opts.output == "" {
		unsubscribe := s.widget.OnChange(streamTo(out, s.widget))
		defer unsubscribe()
	}

	logger.Debug().Str("message", truncate(text, 60)).Msg("submitting")
	err = s.widget.Submit(ctx, text)
	if decorated {
		spin.stopWithError()
	}
	if err != nil {
		if decorated {
			fmt.Fprintln(errOut, formatErrorMessage(err, "Message failed"))
		}
		return fmt.Errorf("message failed: %w", err)
	}

	if fieldErrors := s.widget.FieldErrors(); len(fieldErrors) > 0 {
		for _, e := range fieldErrors {
			fmt.Fprintln(errOut, fieldErrorStyle.Render("• "+e))
		}
		return fmt.Errorf("message rejected: %s", strings.Join(fieldErrors, "; "))
	}

	reply, ok := lastAssistant(s.widget.Messages())
	if !ok {
		return errors.New("no reply received")
	}

	if opts.copy {
		if err := copyToClipboard(reply.Content); err != nil {
			logger.Warn().Err(err).Msg("failed to copy to clipboard")
		} else if decorated {
			fmt.Fprintln(errOut, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(reply.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(errOut, "Reply saved to %s\n", opts.output)
		return nil
	}

	if !decorated {
		// the reply was streamed; end the line
		if !strings.HasSuffix(reply.Content, "\n") {
			fmt.Fprintln(out)
		}
		return nil
	}

	title := s.widget.Config().String(config.KeyChatTitle, "Assistant")
	renderOpts := render.OptionsFromConfig(cfg, width-4)
	rendered, err := render.Message(reply, renderOpts)
	if err != nil {
		rendered = reply.Content
	}
	fmt.Fprintln(out, assistantLabelStyle.Render("✦ "+title))
	fmt.Fprintln(out, assistantBubbleStyle.Width(width).Render(strings.TrimRight(rendered, "\n")))
	return nil
}

// streamTo prints the new text of the reply on every streamed chunk
func streamTo(out io.Writer, w *widget.Widget) func(widget.Change) {
	var printed string
	return func(c widget.Change) {
		if c.Kind != widget.ChangeMessages || c.State != widget.StateStreaming {
			return
		}
		reply, ok := lastAssistant(w.Messages())
		if !ok {
			return
		}
		// cumulative replies may rewrite earlier text; only extensions are printed
		if rest, found := strings.CutPrefix(reply.Content, printed); found {
			fmt.Fprint(out, rest)
			printed = reply.Content
		}
	}
}

func lastAssistant(msgs []models.Message) (models.Message, bool) {
	if len(msgs) == 0 || msgs[len(msgs)-1].Role != models.RoleAssistant {
		return models.Message{}, false
	}
	return msgs[len(msgs)-1], true
}
