package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

func TestDemo(t *testing.T) {
	ctx := context.Background()
	store, err := sqlstore.New(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	fx, err := Demo(ctx, store)
	require.NoError(t, err)

	ledger, err := store.LoadLedger(ctx, fx.GroupID)
	require.NoError(t, err)
	assert.Equal(t, "Flatmates", ledger.Group.Title)
	assert.Len(t, ledger.Group.Members, 3)
	assert.Len(t, ledger.Transactions, 2)

	input := ledger.Input()
	assert.Equal(t, "50.00", models.Format(calculator.ComputeBalance(input, fx.Alice)))
	assert.Equal(t, "-10.00", models.Format(calculator.ComputeBalance(input, fx.Bob)))
	assert.Equal(t, "-40.00", models.Format(calculator.ComputeBalance(input, fx.Charlie)))

	// A second run must not collide with the first.
	again, err := Demo(ctx, store)
	require.NoError(t, err)
	assert.NotEqual(t, fx.GroupID, again.GroupID)
}
