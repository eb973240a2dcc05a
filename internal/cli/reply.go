package cli

import (
	"github.com/spf13/cobra"

	"github.com/nhle/mailtriage/internal/render"
	"github.com/nhle/mailtriage/internal/session"
)

func newReplyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reply <id> <text>",
		Short: "Reply to a message's sender",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, cleanup, err := openSession(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			id, text := args[0], args[1]
			receipt, err := sess.Reply(cmd.Context(), id, text)
			if session.IsNotFound(err) {
				render.NotFound(cmd.OutOrStdout(), id)
				return nil
			}
			if err != nil {
				return err
			}

			render.ReplySent(cmd.OutOrStdout(), receipt)
			return nil
		},
	}
}
