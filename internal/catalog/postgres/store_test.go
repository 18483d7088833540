package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/mage-rules-go/internal/catalog"
)

// openTestStore connects to MAGE_RULES_TEST_POSTGRES_URL or skips.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("MAGE_RULES_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("MAGE_RULES_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, url, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = store.pool.Exec(ctx, "TRUNCATE card_definitions")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	src, err := catalog.Builtin(zaptest.NewLogger(t))
	require.NoError(t, err)

	n, err := store.PutAll(ctx, src.All(), 5)
	require.NoError(t, err)
	assert.Equal(t, src.Len(), n)

	bolt, err := store.Get(ctx, "lightning bolt")
	require.NoError(t, err)
	assert.Equal(t, "Lightning Bolt", bolt.Name)

	_, err = store.Get(ctx, "Black Lotus")
	assert.True(t, errors.Is(err, catalog.ErrNotFound))

	dst := catalog.NewRegistry(zaptest.NewLogger(t))
	require.NoError(t, dst.LoadFrom(ctx, store))
	assert.Equal(t, src.Names(), dst.Names())
}
