package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nhle/mailtriage/internal/config"
	"github.com/nhle/mailtriage/internal/credential"
)

func newCredentialsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the mailbox password in the OS keyring",
	}

	cmd.AddCommand(
		newCredentialsSetCmd(opts),
		newCredentialsClearCmd(opts),
	)

	return cmd
}

// credentialsAddress resolves the account address the keyring entry is
// keyed by. The password itself is allowed to be missing here.
func credentialsAddress(opts *rootOptions) (string, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return "", err
	}
	if cfg.Address == "" {
		return "", errors.New(
			"account address not configured; set MAILTRIAGE_ADDRESS first",
		)
	}
	return cfg.Address, nil
}

func newCredentialsSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Prompt for the password and store it in the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			address, err := credentialsAddress(opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Password for %s: ", address)
			password, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			if len(password) == 0 {
				return errors.New("empty password not stored")
			}

			key := credential.IMAPKey(address)
			if err := credential.Set(key, string(password)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Password stored for %s\n", address)
			return nil
		},
	}
}

func newCredentialsClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored password from the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			address, err := credentialsAddress(opts)
			if err != nil {
				return err
			}

			key := credential.IMAPKey(address)
			if err := credential.Delete(key); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Password cleared for %s\n", address)
			return nil
		},
	}
}
