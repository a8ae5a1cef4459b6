package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGet_MissingKey(t *testing.T) {
	s := openTestStore(t)

	value, err := s.Get(context.Background(), KeyToken)
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestSetGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyToken, []byte("jwt-abc")))
	value, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, []byte("jwt-abc"), value)

	// Upsert, not insert-only.
	require.NoError(t, s.Set(ctx, KeyToken, []byte("jwt-def")))
	value, err = s.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, []byte("jwt-def"), value)
}

func TestSetAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetAll(ctx, map[string][]byte{
		KeyToken:    []byte("jwt-abc"),
		KeyIdentity: []byte(`{"email":"a@b.c"}`),
	}))

	token, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, []byte("jwt-abc"), token)

	identity, err := s.Get(ctx, KeyIdentity)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"email":"a@b.c"}`), identity)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyToken, []byte("jwt-abc")))
	require.NoError(t, s.Delete(ctx, KeyToken, KeyIdentity))

	value, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestClientID_StableAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	first, err := s.ClientID(ctx)
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(first))
	require.NoError(t, s.Close())

	s, err = Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()
	second, err := s.ClientID(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
