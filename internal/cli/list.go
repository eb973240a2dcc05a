package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/mailtriage/internal/render"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		days    int
		showAll bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unread messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, cleanup, err := openSession(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			summaries, err := sess.ListUnread(cmd.Context(), days, showAll)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(summaries, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding listing: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			render.Listing(cmd.OutOrStdout(), summaries, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "look back N days (0 = today)")
	cmd.Flags().BoolVar(&showAll, "all", false,
		"include messages where you are not a direct To/CC recipient")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the listing as JSON")

	return cmd
}
