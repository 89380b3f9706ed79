package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/logging"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "k", []byte(`{"name":"a","count":1}`)))
	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a","count":1}`, string(got))

	require.NoError(t, s.Save(ctx, "k", []byte(`{"name":"b","count":2}`)))
	got, err = s.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"b","count":2}`, string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Load(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "never-written"))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	exerciseStore(t, s)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewMemoryStore()
	in := []byte("abc")
	require.NoError(t, s.Save(ctx, "k", in))
	in[0] = 'z'

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := s.Load(ctx, "k")
	assert.Equal(t, "abc", string(again))
	assert.Equal(t, []string{"k"}, s.Keys())
}

func TestGormStore_SQLite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestGormStore_SQLitePersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, SaveJSON(ctx, s, "cart-items", []doc{{Name: "x", Count: 3}}))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, ok := LoadJSON[[]doc](ctx, s, "cart-items", logging.Discard())
	require.True(t, ok)
	assert.Equal(t, []doc{{Name: "x", Count: 3}}, got)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := OpenSQLite(context.Background(), "")
	require.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	s, err := OpenRedis(addr, "storefront-test:"+uuid.NewString()+":")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

type failingStore struct{ MemoryStore }

func (*failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend down")
}

func (*failingStore) Save(context.Context, string, []byte) error {
	return errors.New("backend down")
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := logging.Discard()

	tests := []struct {
		name   string
		store  func() Store
		wantOK bool
		want   doc
	}{
		{
			name:  "absent",
			store: func() Store { return NewMemoryStore() },
		},
		{
			name: "malformed",
			store: func() Store {
				s := NewMemoryStore()
				_ = s.Save(ctx, "k", []byte("{not json"))
				return s
			},
		},
		{
			name:  "backend error",
			store: func() Store { return &failingStore{} },
		},
		{
			name: "valid",
			store: func() Store {
				s := NewMemoryStore()
				_ = s.Save(ctx, "k", []byte(`{"name":"ok","count":7}`))
				return s
			},
			wantOK: true,
			want:   doc{Name: "ok", Count: 7},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := LoadJSON[doc](ctx, tt.store(), "k", l)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaveJSON_WrapsBackendError(t *testing.T) {
	t.Parallel()

	err := SaveJSON(context.Background(), &failingStore{}, "k", doc{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kv: save k")

	err = SaveJSON(context.Background(), NewMemoryStore(), "k", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kv: marshal k")
}
