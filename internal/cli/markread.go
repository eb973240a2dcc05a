package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/nhle/mailtriage/internal/render"
	"github.com/nhle/mailtriage/internal/session"
)

// batchFlags are the scope selectors shared by mark-read and archive.
type batchFlags struct {
	external bool
	internal bool
	all      bool
	days     int
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.external, "external", false,
		"apply to all unread external messages")
	cmd.Flags().BoolVar(&f.internal, "internal", false,
		"apply to all unread internal messages")
	cmd.Flags().BoolVar(&f.all, "all", false,
		"apply to all unread messages")
	cmd.Flags().IntVar(&f.days, "days", 0,
		"look back N days for batch mode (0 = today)")
}

// scope returns the selected batch scope, or false when no scope flag
// was given and a single short ID is expected instead.
func (f *batchFlags) scope() (session.Scope, bool) {
	switch {
	case f.external:
		return session.ScopeExternal, true
	case f.internal:
		return session.ScopeInternal, true
	case f.all:
		return session.ScopeAll, true
	}
	return "", false
}

var errNoTarget = errors.New(
	"specify a message ID or one of --external/--internal/--all",
)

func newMarkReadCmd(opts *rootOptions) *cobra.Command {
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "mark-read [<id>]",
		Short: "Mark a message, or a filtered batch, as read",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, cleanup, err := openSession(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()

			if scope, ok := flags.scope(); ok {
				res, err := sess.MarkReadBatch(cmd.Context(), scope, flags.days)
				if err != nil {
					return err
				}
				if res.Done == 0 && res.Failed == 0 {
					render.BatchEmpty(out, scope)
					return nil
				}
				render.BatchDone(out, "Marked as read", scope, res)
				return nil
			}

			if len(args) == 0 {
				return errNoTarget
			}

			id := args[0]
			err = sess.MarkRead(cmd.Context(), id)
			if session.IsNotFound(err) {
				render.NotFound(out, id)
				return nil
			}
			if err != nil {
				return err
			}

			render.Done(out, "marked as read", id)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
