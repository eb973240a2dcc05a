package cli

import (
	"github.com/spf13/cobra"

	"github.com/nhle/mailtriage/internal/render"
	"github.com/nhle/mailtriage/internal/session"
)

func newArchiveCmd(opts *rootOptions) *cobra.Command {
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "archive [<id>]",
		Short: "Move a message, or a filtered batch, to the archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, cleanup, err := openSession(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()

			if scope, ok := flags.scope(); ok {
				res, err := sess.ArchiveBatch(cmd.Context(), scope, flags.days)
				if err != nil {
					return err
				}
				if res.Done == 0 && res.Failed == 0 {
					render.BatchEmpty(out, scope)
					return nil
				}
				render.BatchDone(out, "Archived", scope, res)
				return nil
			}

			if len(args) == 0 {
				return errNoTarget
			}

			id := args[0]
			err = sess.Archive(cmd.Context(), id)
			if session.IsNotFound(err) {
				render.NotFound(out, id)
				return nil
			}
			if err != nil {
				return err
			}

			render.Done(out, "archived", id)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
