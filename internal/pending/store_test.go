package pending

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectionFor(owner, token, title string) Selection {
	return Selection{
		Candidate:     Candidate{OwnerID: owner, Title: title, Source: "GitHub"},
		CorrelationID: CorrelationID(owner, token),
		CreatedAt:     time.Now().UTC(),
	}
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, selectionFor("u1", "a", "first")))
	require.NoError(t, store.Put(ctx, selectionFor("u2", "b", "other")))
	require.NoError(t, store.Put(ctx, selectionFor("u1", "c", "second")))

	n, err := store.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	first, err := store.TakeFirst(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "first", first.Title)

	again, err := store.Take(ctx, CorrelationID("u1", "a"))
	require.NoError(t, err)
	assert.Nil(t, again)

	second, err := store.Take(ctx, CorrelationID("u1", "c"))
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "second", second.Title)

	none, err := store.TakeFirst(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, none)

	other, err := store.TakeFirst(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.Equal(t, "other", other.Title)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ConcurrentTakeIsExclusive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, selectionFor("u1", "a", "only")))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		taken int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sel, _ := store.Take(ctx, CorrelationID("u1", "a")); sel != nil {
				mu.Lock()
				taken++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, taken)
}

func TestSelectionToken(t *testing.T) {
	sel := Selection{CorrelationID: CorrelationID("12345", "lz0k1m-3")}

	assert.Equal(t, "lz0k1m-3", sel.Token())
	assert.Equal(t, "12345", ownerOf(sel.CorrelationID))
}

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "pitki:pending:entry:u1:abc", entryKey("u1:abc"))
	assert.Equal(t, "pitki:pending:owner:u1", ownerKey("u1"))
	assert.Equal(t, 2*time.Minute, RedisEntryTTL(time.Minute))
}

func TestDecodeSelection(t *testing.T) {
	sel, err := decodeSelection([]byte(`{"owner_id":"u1","chat_id":42,"title":"t","source":"s","raw_text":"r","correlation_id":"u1:x","created_at":"2024-01-15T10:00:00Z"}`))
	require.NoError(t, err)

	assert.Equal(t, "u1", sel.OwnerID)
	assert.Equal(t, int64(42), sel.ChatID)
	assert.Equal(t, "u1:x", sel.CorrelationID)

	_, err = decodeSelection([]byte(`not json`))
	assert.Error(t, err)
}

// Runs against a real server when PITKI_TEST_REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("PITKI_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PITKI_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, addr, "", 15)
	require.NoError(t, err)
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	exerciseStore(t, NewRedisStore(client, time.Minute))
}
