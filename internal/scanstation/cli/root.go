package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"go-handover/internal/scanstation"
	"go-handover/pkg/logging"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	Server   string
	Timeout  time.Duration
	Delay    time.Duration
	Format   string
	LogLevel string

	logger *logging.ZapLogger
}

var ValidFormats = []string{scanstation.FormatText, scanstation.FormatJSON}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "scanstation",
		Short:         "Handover scan station",
		Long:          "Operator console that submits scanned tracking numbers to the handover service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level, err := logging.ParseLevel(opts.LogLevel)
			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}
			opts.logger, err = logging.NewZapLogger(level, logging.WithOutputPaths("stderr"))
			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", "localhost:8080", "handover service address")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "request timeout")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", scanstation.FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level")

	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

func (o *RootOptions) client() *scanstation.Client {
	return scanstation.NewClient(scanstation.Config{
		ServerAddress: o.Server,
		Timeout:       o.Timeout,
	}, o.logger)
}
