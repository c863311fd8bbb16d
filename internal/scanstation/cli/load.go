package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-handover/internal/scanstation"
)

func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <dataset.json|dataset.yaml>",
		Short: "Replace the active dataset with the orders in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := scanstation.ReadDataset(args[0])
			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}
			summary, err := rootOpts.client().LoadDataset(cmd.Context(), request)
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}
			return printSummary(cmd.OutOrStdout(), rootOpts.Format, summary)
		},
	}
}
