package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("tools.fido", "/opt/fido"))
	require.NoError(t, store.Set("fixity.interval_days", 30))
	require.NoError(t, store.Set("logging.file", true))

	assert.Equal(t, "/opt/fido", store.GetString("tools.fido"))
	assert.Equal(t, 30, store.GetInt("fixity.interval_days"))
	assert.True(t, store.GetBool("logging.file"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypeMismatch(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("key", "not-a-number"))

	assert.Equal(t, 0, store.GetInt("key"))
	assert.False(t, store.GetBool("key"))
	assert.Empty(t, store.GetString("absent"))
}

func TestConfigStore_GetInt_NumericTypes(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("a", int64(7)))
	require.NoError(t, store.Set("b", float64(9)))

	assert.Equal(t, 7, store.GetInt("a"))
	assert.Equal(t, 9, store.GetInt("b"))
}

func TestConfigStore_FractionalFloatIsNotInt(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("ratio", 2.5))

	assert.Equal(t, 0, store.GetInt("ratio"))
	val, ok := store.Get("ratio")
	require.True(t, ok)
	assert.InDelta(t, 2.5, val, 0)
}

func TestConfigStore_EmptyKey(t *testing.T) {
	store := NewConfigStore()

	assert.ErrorIs(t, store.Set("", "x"), domain.ErrInvalidInput)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Keys_Sorted(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("tools.fido", "fido"))
	require.NoError(t, store.Set("database.path", "/tmp/x.db"))

	assert.Equal(t, []string{"database.path", "tools.fido"}, store.Keys())
}

func TestConfigStore_LoadAndPath(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrent(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("key", n)
			_ = store.GetInt("key")
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}
