package scanstation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go-handover/internal/common/handoverprotocol"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	bell = "\a"
)

type ScanClient interface {
	Scan(ctx context.Context, code string) (handoverprotocol.ScanResponse, error)
	Stats(ctx context.Context) (handoverprotocol.Stats, error)
}

// Console submits assembled codes and prints operator feedback. Anything
// other than a success rings the terminal bell, duplicates ring it twice.
type Console struct {
	mu     sync.Mutex
	client ScanClient
	out    io.Writer
	format string
}

func NewConsole(client ScanClient, out io.Writer, format string) *Console {
	if format != FormatJSON {
		format = FormatText
	}
	return &Console{
		client: client,
		out:    out,
		format: format,
	}
}

func (c *Console) Scan(ctx context.Context, raw string) error {
	res, err := c.client.Scan(ctx, raw)
	if err != nil {
		c.print(fmt.Sprintf("%sERROR  %s: %v", bell, strings.TrimSpace(raw), err), nil)
		return fmt.Errorf("scan of %q failed: %w", raw, err)
	}

	if c.format == FormatJSON {
		c.print("", res)
		return nil
	}

	switch res.Kind {
	case handoverprotocol.Success:
		line := "OK     " + res.Message
		if stats, err := c.client.Stats(ctx); err == nil {
			line += fmt.Sprintf("  [%d/%d, %d left]", stats.ScannedCount, stats.TotalOrders, stats.Remaining)
		}
		c.print(line, nil)
	case handoverprotocol.Ignored:
	case handoverprotocol.Duplicate:
		line := fmt.Sprintf("%s%sDUP    %s", bell, bell, res.Message)
		if res.PreviouslyScannedAt != nil {
			line += " at " + res.PreviouslyScannedAt.Local().Format(time.DateTime)
		}
		c.print(line, nil)
	default:
		c.print(fmt.Sprintf("%sERROR  %s", bell, res.Message), nil)
	}
	return nil
}

func (c *Console) print(line string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value != nil {
		_ = json.NewEncoder(c.out).Encode(value)
		return
	}
	_, _ = fmt.Fprintln(c.out, line)
}
