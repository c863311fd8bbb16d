package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"go-handover/internal/common/handoverprotocol"
	"go-handover/internal/handover/session"
	"go-handover/internal/scanstation"
)

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func sourceCounts(counts map[string]int) string {
	parts := make([]string, 0, len(session.Sources))
	for _, source := range session.Sources {
		parts = append(parts, fmt.Sprintf("%s=%d", source, counts[string(source)]))
	}
	return strings.Join(parts, " ")
}

func printSummary(w io.Writer, format string, summary handoverprotocol.LoadSummary) error {
	if format == scanstation.FormatJSON {
		return writeJSON(w, summary)
	}
	_, err := fmt.Fprintf(w, "dataset %s loaded: %d orders from %d files (%s), %d rows skipped\n",
		summary.DatasetID, summary.TotalOrders, summary.FileCount, sourceCounts(summary.BySource), summary.Skipped)
	return err //nolint:wrapcheck // terminal output
}

func printStats(w io.Writer, format string, stats handoverprotocol.Stats) error {
	if format == scanstation.FormatJSON {
		return writeJSON(w, stats)
	}
	_, err := fmt.Fprintf(w, "scanned %d of %d, %d remaining\ntotal:   %s\nscanned: %s\n",
		stats.ScannedCount, stats.TotalOrders, stats.Remaining,
		sourceCounts(stats.BySource), sourceCounts(stats.ScannedBySource))
	return err //nolint:wrapcheck // terminal output
}

func printHistory(w io.Writer, format string, events []handoverprotocol.ScanEvent) error {
	if format == scanstation.FormatJSON {
		return writeJSON(w, events)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tORDER\tTRACKING\tSOURCE\tFILE\tSCANNED AT")
	for i, event := range events {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, event.OrderNumber, event.TrackingNumber, event.Source, event.OriginFile,
			event.ScannedAt.Local().Format(time.DateTime))
	}
	return tw.Flush() //nolint:wrapcheck // terminal output
}
