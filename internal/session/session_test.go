package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricecompare-bot/internal/compare"
	"pricecompare-bot/pkg/redis"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.New(mr.Addr(), "", 0, time.Hour)
	t.Cleanup(client.Close)

	return map[string]Store{
		"memory": NewMemoryStore(2),
		"redis":  NewRedisStore(client, 2),
	}
}

func TestStoreFreshSession(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s, err := store.Get(context.Background(), 42)
			require.NoError(t, err)
			assert.Equal(t, StepIdle, s.Step)
			assert.Equal(t, 2, s.Sheet.Len())
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := New(2)
			s.Step = StepRowAmount
			s.EditRow = 1
			s.Sheet = s.Sheet.
				UpdateRow(1, compare.FieldPrice, "8,40").
				WithUnit(compare.Volume).
				ToggleScale()

			require.NoError(t, store.Save(ctx, 7, s))

			got, err := store.Get(ctx, 7)
			require.NoError(t, err)
			assert.Equal(t, s, got)

			require.NoError(t, store.Clear(ctx, 7))
			got, err = store.Get(ctx, 7)
			require.NoError(t, err)
			assert.Equal(t, New(2), got)
		})
	}
}

func TestMemoryStoreDoesNotShareRows(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(1)

	s := New(1)
	require.NoError(t, store.Save(ctx, 1, s))
	s.Sheet.Rows[0].Price = "changed"

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "", got.Sheet.Rows[0].Price)
}

func TestRedisStoreUsesTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.New(mr.Addr(), "", 0, 30*time.Minute)
	defer client.Close()

	store := NewRedisStore(client, 2)
	require.NoError(t, store.Save(context.Background(), 5, New(2)))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:5"))
}
