package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuseats/internal/models"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scratch", "campuseats.json")

	s, err := Open(path)
	require.NoError(t, err)

	orders := []models.Order{
		{ID: 1, LocalID: "a", Status: models.OrderStatusDelivered},
		{ID: 2, LocalID: "b", Status: models.OrderStatusPending},
	}
	require.NoError(t, s.SaveOrders("amina", orders))
	require.NoError(t, s.SaveDeliveryLocation("amina", DeliveryLocation{Building: "Sherman Hall", Room: "214"}))

	// a fresh open must read back the same data
	reopened, err := Open(path)
	require.NoError(t, err)

	got := reopened.LoadOrders("amina")
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].ID)

	loc, ok := reopened.LoadDeliveryLocation("amina")
	require.True(t, ok)
	assert.Equal(t, "Sherman Hall", loc.Building)
	assert.Equal(t, "214", loc.Room)

	_, ok = reopened.LoadDeliveryLocation("nobody")
	assert.False(t, ok)
}

func TestStore_MissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, s.LoadOrders("amina"))
}

func TestStore_CorruptFileDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scratch.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, s.LoadOrders("amina"))

	// the store stays usable and overwrites the corrupt file
	require.NoError(t, s.SaveOrders("amina", []models.Order{{ID: 1}}))
	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Len(t, reopened.LoadOrders("amina"), 1)
}

func TestStore_CapsRecentOrders(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "scratch.json"))
	require.NoError(t, err)

	orders := make([]models.Order, 35)
	for i := range orders {
		orders[i] = models.Order{ID: uint64(i + 1)}
	}
	require.NoError(t, s.SaveOrders("amina", orders))
	assert.Len(t, s.LoadOrders("amina"), maxRecentOrders)
}
