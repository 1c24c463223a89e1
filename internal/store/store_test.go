package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	sq, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]Store{
		"file":   fs,
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("missing key", func(t *testing.T) {
				v, ok, err := s.Get(ctx, "absent")
				require.NoError(t, err)
				assert.False(t, ok)
				assert.Nil(t, v)
			})

			t.Run("set then get", func(t *testing.T) {
				require.NoError(t, s.Set(ctx, "tremPlugins", []byte(`[{"name":"a"}]`)))
				v, ok, err := s.Get(ctx, "tremPlugins")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, `[{"name":"a"}]`, string(v))
			})

			t.Run("overwrite", func(t *testing.T) {
				require.NoError(t, s.Set(ctx, "k", []byte("one")))
				require.NoError(t, s.Set(ctx, "k", []byte("two")))
				v, ok, err := s.Get(ctx, "k")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "two", string(v))
			})

			t.Run("clear named keys", func(t *testing.T) {
				require.NoError(t, s.Set(ctx, "x", []byte("1")))
				require.NoError(t, s.Set(ctx, "y", []byte("2")))
				require.NoError(t, s.Clear(ctx, "x", "never-set"))

				_, ok, err := s.Get(ctx, "x")
				require.NoError(t, err)
				assert.False(t, ok)
				_, ok, err = s.Get(ctx, "y")
				require.NoError(t, err)
				assert.True(t, ok)
			})

			t.Run("clear all", func(t *testing.T) {
				require.NoError(t, s.Set(ctx, "z", []byte("3")))
				require.NoError(t, s.Clear(ctx))
				_, ok, err := s.Get(ctx, "z")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("empty key rejected", func(t *testing.T) {
				_, _, err := s.Get(ctx, "")
				require.ErrorIs(t, err, ErrInvalidKey)
				require.ErrorIs(t, s.Set(ctx, "", nil), ErrInvalidKey)
				require.ErrorIs(t, s.Clear(ctx, ""), ErrInvalidKey)
			})
		})
	}
}

func TestFileStore_KeysAndSize(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "lastPluginsFetch", []byte("1700000000000")))
	require.NoError(t, s.Set(ctx, "tremPlugins", []byte("[]")))

	// Foreign files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"lastPluginsFetch", "tremPlugins"}, keys)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(len("1700000000000")+len("[]")), size)
	assert.Equal(t, dir, s.Directory())
}

func TestFileStore_SanitisesKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "../escape/key:1", []byte("v")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "..%2Fescape%2Fkey%3A1.cache", entries[0].Name())

	v, ok, err := s.Get(ctx, "../escape/key:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(v))

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"../escape/key:1"}, keys)
}

func TestFileStore_DistinctKeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	keys := []string{"a/b", "a:b", "a_b", `a\b`}
	for _, k := range keys {
		require.NoError(t, s.Set(ctx, k, []byte(k)))
	}
	for _, k := range keys {
		v, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		require.True(t, ok, k)
		assert.Equal(t, k, string(v))
	}

	stored, err := s.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, keys, stored)

	require.NoError(t, s.Clear(ctx, "a/b"))
	_, ok, err := s.Get(ctx, "a_b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	_, err := NewFileStore("")
	require.Error(t, err)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'z'

	out, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
	assert.Equal(t, 1, s.Len())
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "tremReleases", []byte("[1]")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "tremReleases")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1]", string(v))
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
		check   func(t *testing.T, s Store)
	}{
		{
			name: "default is file",
			opts: Options{Dir: t.TempDir()},
			check: func(t *testing.T, s Store) {
				_, ok := s.(*FileStore)
				assert.True(t, ok)
			},
		},
		{
			name: "memory",
			opts: Options{Backend: "MEMORY"},
			check: func(t *testing.T, s Store) {
				_, ok := s.(*MemoryStore)
				assert.True(t, ok)
			},
		},
		{
			name: "sqlite",
			opts: Options{Backend: BackendSQLite, SQLitePath: ":memory:"},
			check: func(t *testing.T, s Store) {
				_, ok := s.(*SQLiteStore)
				assert.True(t, ok)
			},
		},
		{
			name:    "unknown",
			opts:    Options{Backend: "redis"},
			wantErr: ErrUnknownBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.opts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}
