// Package cli wires the command surface: one cobra command per mailbox
// operation, sharing a config-driven session opened per invocation.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flag values shared by every command.
type rootOptions struct {
	configPath string
	envFile    string
	verbose    bool
}

// NewRootCmd builds the mailtriage command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "mailtriage",
		Short: "Triage unread messages in a corporate mailbox",
		Long: "mailtriage lists, reads, replies to, marks read, and archives\n" +
			"unread messages in an IMAP mailbox, addressing them by stable\n" +
			"8-character short IDs.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.envFile != "" {
				if err := godotenv.Load(opts.envFile); err != nil {
					return fmt.Errorf("loading env file %s: %w", opts.envFile, err)
				}
			}

			level := zerolog.WarnLevel
			if opts.verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()

			return nil
		},
	}

	root.PersistentFlags().StringVar(
		&opts.configPath, "config", "",
		"config file (default ~/.config/mailtriage/config.yaml)",
	)
	root.PersistentFlags().StringVar(
		&opts.envFile, "env-file", "",
		"load environment variables from this file first",
	)
	root.PersistentFlags().BoolVarP(
		&opts.verbose, "verbose", "v", false,
		"enable debug logging",
	)

	root.AddCommand(
		newListCmd(opts),
		newReadCmd(opts),
		newReplyCmd(opts),
		newMarkReadCmd(opts),
		newArchiveCmd(opts),
		newCredentialsCmd(opts),
	)

	return root
}

// Execute runs the command tree and reports the outcome to stderr.
func Execute(version string) error {
	root := NewRootCmd(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
