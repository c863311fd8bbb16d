package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-handover/internal/common/handoverprotocol"
	"go-handover/internal/handover"
	"go-handover/internal/handover/service"
	"go-handover/pkg/logging"
)

func newTestServer(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(handover.NewRouter(service.NewHandover(logging.NewNop()), logging.NewNop()))
	t.Cleanup(server.Close)
	return server.URL
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pickup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`orders:
  - order_number: SPX001
    tracking_number: TT900
    source: Shopee
    origin_file: shopee.xlsx
    total_amount: "9.00"
  - order_number: TK002
    tracking_number: TT901
    source: TikTok
    origin_file: tiktok.csv
    total_amount: "0"
`), 0o600))
	return path
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"scan", "load", "stats", "history"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, subCmd.Name())
		})
	}

	serverFlag := cmd.PersistentFlags().Lookup("server")
	require.NotNil(t, serverFlag)
	assert.Equal(t, "localhost:8080", serverFlag.DefValue)

	scanCmd, _, err := cmd.Find([]string{"scan"})
	require.NoError(t, err)
	delayFlag := scanCmd.Flags().Lookup("delay")
	require.NotNil(t, delayFlag)
	assert.Equal(t, "2s", delayFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "", "stats", "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestStationWorkflow(t *testing.T) {
	url := newTestServer(t)

	out, err := execute(t, "", "load", writeDataset(t), "--server", url)
	require.NoError(t, err)
	assert.Contains(t, out, "2 orders from 2 files (shopee=1 tiktok=1 unknown=0), 0 rows skipped")

	out, err = execute(t, "TT900\nTT900\nXX000\n", "scan", "--server", url)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "OK     scanned TT900 (shopee #SPX001)  [1/2, 1 left]")
	assert.Contains(t, lines[1], "DUP    order already scanned: TT900")
	assert.Contains(t, lines[2], "ERROR  tracking number not found: XX000")

	out, err = execute(t, "", "stats", "--server", url, "--format", "json")
	require.NoError(t, err)
	var stats handoverprotocol.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 1, stats.ScannedCount)
	assert.Equal(t, 1, stats.Remaining)

	out, err = execute(t, "", "history", "--server", url, "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "ORDER")
	assert.Contains(t, out, "SPX001")
	assert.NotContains(t, out, "TK002")
}

func TestScanBeforeLoad(t *testing.T) {
	url := newTestServer(t)
	out, err := execute(t, "TT900", "scan", "--server", url)
	require.NoError(t, err)
	assert.Contains(t, out, "ERROR  no dataset loaded")
}

func TestHistoryRejectsNegativeLimit(t *testing.T) {
	_, err := execute(t, "", "history", "--limit", "-1")
	assert.Error(t, err)
}
