package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/render"
)

// NewConfigCmd creates the config command and its subcommands. Without a
// subcommand it opens the interactive editor.
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Edit, show or change settings",
		Long: `Edit chatwidget settings stored in ~/.chatwidget/config.json.

Run without arguments for the interactive editor, or use 'show' and 'set'.
Every setting can also be overridden with a CHATWIDGET_* environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deps.TUI.RunConfig()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			return showConfig(cmd.OutOrStdout(), cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long:  "Change one setting. Keys: " + strings.Join(config.SettableKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfig(cmd.OutOrStdout(), args[0], args[1])
		},
	})

	return cmd
}

func showConfig(out io.Writer, cfg config.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func setConfig(out io.Writer, key, value string) error {
	if key == "theme" {
		if _, ok := render.TUIThemeByName(strings.ToLower(value)); !ok {
			return fmt.Errorf("unknown theme %q (valid: %s)", value, strings.Join(render.TUIThemeNames(), ", "))
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s = %s\n", key, value)
	return nil
}
