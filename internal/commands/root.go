// Package commands provides CLI commands for chatwidget.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/chatwidget/internal/config"
)

var (
	// Global flags
	baseURLFlag string
	verboseFlag bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = newRootCmd(NewDependencies())

func newRootCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatwidget",
		Short: "Terminal client for embeddable chat panels",
		Long: `chatwidget loads a chat panel from a server, submits messages through its
form and renders the streamed replies in the terminal.

Examples:
  chatwidget chat                           Start the interactive chat
  chatwidget send "Where is my order?"      Send one message and print the reply
  chatwidget clear                          Clear the server-side conversation
  chatwidget config                         Edit settings interactively
  chatwidget config set base_url https://support.example.com
  chatwidget import-cookies --browser chrome`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "chatwidget %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Chat server origin (overrides config base_url)")
	cmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable debug logging on stderr")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(
		NewChatCmd(deps),
		NewSendCmd(deps),
		NewClearCmd(deps),
		NewConfigCmd(deps),
		NewImportCookiesCmd(),
	)
	return cmd
}

// Execute runs the root command
func Execute() {
	ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with a context that cancels in-flight requests
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadSettings reads the user configuration and applies the global flags
func loadSettings(errOut io.Writer) (config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if verboseFlag {
		cfg.Verbose = true
	}

	logger := newLogger(errOut, cfg.Verbose)
	if err := cfg.Validate(); err != nil {
		return cfg, logger, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug().
		Str("base_url", cfg.BaseURL).
		Str("panel_path", cfg.PanelPath).
		Str("stream_mode", cfg.StreamMode).
		Msg("configuration loaded")
	return cfg, logger, nil
}

// newLogger returns a console logger; warnings only unless verbose
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
