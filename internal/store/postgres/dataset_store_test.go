package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/quiverx/internal/source"
)

// Runs only when QUIVERX_TEST_DATABASE_URL points at a disposable database.
func TestDatasetStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("QUIVERX_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("QUIVERX_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := New(ctx, ClientConfig{DSN: dsn})
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.RunMigrations(ctx))
	require.NoError(t, client.RunMigrations(ctx))

	store := NewDatasetStore(client.Pool())
	require.NoError(t, store.Replace(ctx, source.Sample()))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, source.Sample(), got)
}
