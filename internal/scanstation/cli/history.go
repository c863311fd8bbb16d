package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-handover/internal/handover/session"
)

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the most recent successful scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("invalid limit %d", limit)
			}
			events, err := rootOpts.client().History(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to get history: %w", err)
			}
			return printHistory(cmd.OutOrStdout(), rootOpts.Format, events)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", session.DefaultHistoryLimit, "number of scans to show")

	return cmd
}
