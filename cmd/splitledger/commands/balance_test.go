package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/seed"
	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

func TestPrintBalances(t *testing.T) {
	ctx := context.Background()
	store, err := sqlstore.New(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	fx, err := seed.Demo(ctx, store)
	require.NoError(t, err)
	ledger, err := store.LoadLedger(ctx, fx.GroupID)
	require.NoError(t, err)

	names := map[string]string{fx.Alice: "Alice", fx.Bob: "Bob", fx.Charlie: "Charlie"}

	var out bytes.Buffer
	require.NoError(t, printBalances(&out, ledger, names, fx.Charlie))

	got := out.String()
	assert.Contains(t, got, "Flatmates")
	assert.Contains(t, got, "your balance: -40.00")
	assert.Contains(t, got, "Charlie -> Alice  40.00")
	assert.Contains(t, got, "Bob -> Alice  10.00")

	err = printBalances(&out, ledger, names, "stranger")
	assert.Error(t, err)
}
