package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/leadscout/internal/types"
)

// backends opens every durable backend in a fresh temp dir.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	sqliteStore, err := OpenSQLite(ctx, filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	fileStore, err := NewFileStore(filepath.Join(dir, "history.json"))
	require.NoError(t, err)

	stores := map[string]Store{
		"sqlite": sqliteStore,
		"file":   fileStore,
		"memory": NewMemoryStore(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStore_EmptyOnFirstLoad(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ids, err := store.Load(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, ids)
			assert.Equal(t, 0, ids.Len())
		})
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, types.NewIdentifierSet("200", "100", "300")))

			ids, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"100", "200", "300"}, ids.Sorted())

			// Save overwrites, it does not merge.
			require.NoError(t, store.Save(ctx, types.NewIdentifierSet("400")))
			ids, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"400"}, ids.Sorted())

			require.NoError(t, store.Clear(ctx))
			ids, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, ids.Len())
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, types.NewIdentifierSet("111", "222")))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	ids, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ids.Has("111"))
	assert.True(t, ids.Has("222"))
	assert.Equal(t, path, reopened.Path())
}

func TestSQLiteStore_OpensInWALMode(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	mode, err := store.journalMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, store.db.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, 5000, timeout)
}

func TestSQLiteStore_MalformedPayloadLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.set(ctx, Key, `{"not":"an array"}`))

	ids, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, ids.Len())
}

func TestFileStore_MalformedPayloadLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0o644))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	ids, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, ids.Len())
}

func TestFileStore_WritesSortedArrayAndNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), types.NewIdentifierSet("b", "a")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should have been renamed away")
}

func TestNewStore_RequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	require.Error(t, err)

	_, err = NewFileStore("")
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{"empty", "", []string{}},
		{"null", "null", []string{}},
		{"empty array", "[]", []string{}},
		{"array", `["1","2"]`, []string{"1", "2"}},
		{"duplicates collapse", `["1","1"]`, []string{"1"}},
		{"blank identifiers dropped", `["", "3"]`, []string{"3"}},
		{"object", `{"a":1}`, []string{}},
		{"numbers", `[1,2]`, []string{}},
		{"garbage", `[[[`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode([]byte(tt.payload), "test")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Sorted())
		})
	}
}

func TestEncode_EmptySetIsEmptyArray(t *testing.T) {
	data, err := Encode(types.NewIdentifierSet())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("seeded", func(t *testing.T) {
		store := NewMemoryStoreWith("x", "y")
		ids, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, ids.Sorted())
	})

	t.Run("raw malformed payload", func(t *testing.T) {
		store := NewMemoryStore()
		store.SetRaw([]byte("{broken"))
		ids, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, ids.Len())
	})

	t.Run("failing saves leave payload untouched", func(t *testing.T) {
		store := NewMemoryStoreWith("keep")
		boom := errors.New("disk full")
		store.FailSaves(boom)

		err := store.Save(ctx, types.NewIdentifierSet("new"))
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, store.Clear(ctx), boom)
		assert.Equal(t, 0, store.Saves())

		ids, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"keep"}, ids.Sorted())

		store.FailSaves(nil)
		require.NoError(t, store.Save(ctx, types.NewIdentifierSet("new")))
		assert.Equal(t, 1, store.Saves())
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		backend     string
		path        string
		expectError bool
	}{
		{BackendSQLite, filepath.Join(dir, "a.db"), false},
		{"", filepath.Join(dir, "b.db"), false},
		{BackendFile, filepath.Join(dir, "c.json"), false},
		{BackendMemory, "", false},
		{"redis", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			store, err := Open(ctx, tt.backend, tt.path)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown history backend")
				return
			}
			require.NoError(t, err)
			defer store.Close()
		})
	}
}

func TestLock(t *testing.T) {
	path := LockPath(filepath.Join(t.TempDir(), "history.db"))
	assert.Equal(t, ".lock", filepath.Ext(path))

	first, err := AcquireLock(path)
	require.NoError(t, err)

	_, err = AcquireLock(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Unlock())

	again, err := AcquireLock(path)
	require.NoError(t, err)
	require.NoError(t, again.Unlock())

	var nilLock *Lock
	assert.NoError(t, nilLock.Unlock())
}
