package cli

import (
	"context"

	"github.com/spf13/cobra"

	"go-handover/internal/handover/assembler"
	"go-handover/internal/scanstation"
)

func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Read scanner input from stdin and submit each code",
		Long: `Read keystrokes from stdin and submit each assembled code.

Enter submits immediately. A code without a terminator is submitted once the
input has been idle for --delay.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			console := scanstation.NewConsole(rootOpts.client(), cmd.OutOrStdout(), rootOpts.Format)
			asm := assembler.New(ctx, console, rootOpts.logger, assembler.WithDelay(rootOpts.Delay))
			defer asm.Close()

			fed := make(chan error, 1)
			go func() {
				fed <- scanstation.Feed(ctx, cmd.InOrStdin(), asm)
			}()

			select {
			case err := <-fed:
				return err //nolint:wrapcheck // already wrapped
			case <-ctx.Done():
				return nil
			}
		},
	}

	cmd.Flags().DurationVar(&rootOpts.Delay, "delay", assembler.DefaultDelay, "idle time after which a partial code is submitted")

	return cmd
}
