package kvstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanshu427-droid/touro-care/internal/domain"
	"github.com/himanshu427-droid/touro-care/internal/ports"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "tourocare")
}

// Both implementations must behave identically through the interface.
func stores(t *testing.T) map[string]ports.KVStore {
	t.Helper()
	return map[string]ports.KVStore{
		"redis":  newRedisStore(t),
		"memory": NewMemoryStore(),
	}
}

func TestKVStore_StringRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			val, err := store.GetItem(ctx, "tracking_enabled")
			require.NoError(t, err)
			assert.Empty(t, val, "absent key reads as empty string")

			require.NoError(t, store.SetItem(ctx, "tracking_enabled", "true"))
			val, err = store.GetItem(ctx, "tracking_enabled")
			require.NoError(t, err)
			assert.Equal(t, "true", val)

			require.NoError(t, store.RemoveItem(ctx, "tracking_enabled"))
			val, err = store.GetItem(ctx, "tracking_enabled")
			require.NoError(t, err)
			assert.Empty(t, val)

			// Removing an absent key is a no-op.
			require.NoError(t, store.RemoveItem(ctx, "tracking_enabled"))
		})
	}
}

func TestKVStore_JSONRoundTrip(t *testing.T) {
	contacts := []domain.EmergencyContact{
		{Name: "Police", Phone: "100", Type: domain.ContactPolice},
		{Name: "Asha", Phone: "+91-98-555", Type: domain.ContactFamily},
	}

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var missing []domain.EmergencyContact
			require.NoError(t, store.GetJSON(ctx, "emergency_contacts", &missing))
			assert.Nil(t, missing, "absent key leaves the target untouched")

			require.NoError(t, store.SetJSON(ctx, "emergency_contacts", contacts))

			var restored []domain.EmergencyContact
			require.NoError(t, store.GetJSON(ctx, "emergency_contacts", &restored))
			assert.Equal(t, contacts, restored)
		})
	}
}

func TestRedisStore_PrefixesKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, "tourocare")
	require.NoError(t, store.SetItem(context.Background(), "flag", "on"))

	val, err := mr.Get("tourocare:flag")
	require.NoError(t, err)
	assert.Equal(t, "on", val)
}
