package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show handover progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := rootOpts.client().Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get stats: %w", err)
			}
			return printStats(cmd.OutOrStdout(), rootOpts.Format, stats)
		},
	}
}
