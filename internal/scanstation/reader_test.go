package scanstation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingKeyboard struct {
	buf       []rune
	submitted []string
}

func (k *recordingKeyboard) Keystroke(r rune) {
	if r == '\n' || r == '\r' {
		k.Submit()
		return
	}
	k.buf = append(k.buf, r)
}

func (k *recordingKeyboard) Submit() {
	if len(k.buf) > 0 {
		k.submitted = append(k.submitted, string(k.buf))
	}
	k.buf = nil
}

func TestFeed(t *testing.T) {
	keyboard := &recordingKeyboard{}
	err := Feed(context.Background(), strings.NewReader("TT900\nTT901\r\nSPX-ü"), keyboard)
	require.NoError(t, err)
	assert.Equal(t, []string{"TT900", "TT901", "SPX-ü"}, keyboard.submitted)
}

func TestFeedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	keyboard := &recordingKeyboard{}
	require.NoError(t, Feed(ctx, strings.NewReader("TT900\n"), keyboard))
	assert.Empty(t, keyboard.submitted)
}

func TestReadDataset(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "orders.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`orders:
  - order_number: SPX001
    tracking_number: TT900
    source: Shopee
    origin_file: shopee.xlsx
    total_amount: 9.00
    items:
      - sku: MUG
        name: Mug
        quantity: 2
        unit_price: "4.50"
`), 0o600))

	request, err := ReadDataset(yamlPath)
	require.NoError(t, err)
	require.Len(t, request.Orders, 1)
	order := request.Orders[0]
	assert.Equal(t, "SPX001", order.OrderNumber)
	assert.Equal(t, "Shopee", order.Source)
	assert.Equal(t, "9", order.TotalAmount.String())
	require.Len(t, order.Items, 1)
	assert.Equal(t, "4.5", order.Items[0].UnitPrice.String())

	jsonPath := filepath.Join(dir, "orders.json")
	require.NoError(t, os.WriteFile(jsonPath,
		[]byte(`{"orders":[{"order_number":"TK002","tracking_number":"TT901","source":"TikTok","origin_file":"t.csv","total_amount":"0"}]}`),
		0o600))
	request, err = ReadDataset(jsonPath)
	require.NoError(t, err)
	require.Len(t, request.Orders, 1)
	assert.Equal(t, "TT901", request.Orders[0].TrackingNumber)

	brokenPath := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(brokenPath, []byte(`{"orders":`), 0o600))
	_, err = ReadDataset(brokenPath)
	assert.Error(t, err)

	_, err = ReadDataset(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
