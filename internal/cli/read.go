package cli

import (
	"github.com/spf13/cobra"

	"github.com/nhle/mailtriage/internal/render"
	"github.com/nhle/mailtriage/internal/session"
)

func newReadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Read a message by short ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, cleanup, err := openSession(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			id := args[0]
			msg, err := sess.Read(cmd.Context(), id)
			if session.IsNotFound(err) {
				render.NotFound(cmd.OutOrStdout(), id)
				return nil
			}
			if err != nil {
				return err
			}

			render.Message(cmd.OutOrStdout(), id, msg)
			return nil
		},
	}
}
