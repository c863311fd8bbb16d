package scanstation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-handover/internal/common/handoverprotocol"
)

type fakeScanClient struct {
	response handoverprotocol.ScanResponse
	err      error
	stats    handoverprotocol.Stats
}

func (c fakeScanClient) Scan(_ context.Context, code string) (handoverprotocol.ScanResponse, error) {
	res := c.response
	res.Code = code
	return res, c.err
}

func (c fakeScanClient) Stats(context.Context) (handoverprotocol.Stats, error) {
	return c.stats, nil
}

func TestConsoleFeedback(t *testing.T) {
	previous := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		client   fakeScanClient
		contains string
		bells    int
		wantErr  bool
	}{
		{
			name: "success",
			client: fakeScanClient{
				response: handoverprotocol.ScanResponse{Kind: handoverprotocol.Success, Message: "scanned TT900 (shopee #SPX001)"},
				stats:    handoverprotocol.Stats{TotalOrders: 2, ScannedCount: 1, Remaining: 1},
			},
			contains: "OK     scanned TT900 (shopee #SPX001)  [1/2, 1 left]",
		},
		{
			name: "duplicate",
			client: fakeScanClient{
				response: handoverprotocol.ScanResponse{
					Kind:                handoverprotocol.Duplicate,
					Message:             "order already scanned: TT900",
					PreviouslyScannedAt: &previous,
				},
			},
			contains: "DUP    order already scanned: TT900 at ",
			bells:    2,
		},
		{
			name: "not found",
			client: fakeScanClient{
				response: handoverprotocol.ScanResponse{Kind: handoverprotocol.NotFound, Message: "tracking number not found: XX"},
			},
			contains: "ERROR  tracking number not found: XX",
			bells:    1,
		},
		{
			name:     "transport",
			client:   fakeScanClient{err: errors.New("connection refused")},
			contains: "ERROR  TT900: connection refused",
			bells:    1,
			wantErr:  true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var out bytes.Buffer
			console := NewConsole(test.client, &out, FormatText)

			err := console.Scan(context.Background(), "TT900")
			if test.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out.String(), test.contains)
			assert.Equal(t, test.bells, strings.Count(out.String(), bell))
		})
	}
}

func TestConsoleIgnoredPrintsNothing(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(fakeScanClient{response: handoverprotocol.ScanResponse{Kind: handoverprotocol.Ignored}}, &out, FormatText)
	require.NoError(t, console.Scan(context.Background(), " "))
	assert.Empty(t, out.String())
}

func TestConsoleJSONFormat(t *testing.T) {
	var out bytes.Buffer
	client := fakeScanClient{response: handoverprotocol.ScanResponse{Kind: handoverprotocol.NotFound, Message: "nope"}}
	console := NewConsole(client, &out, FormatJSON)
	require.NoError(t, console.Scan(context.Background(), "XX"))

	var res handoverprotocol.ScanResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, handoverprotocol.NotFound, res.Kind)
	assert.Equal(t, "XX", res.Code)
}
