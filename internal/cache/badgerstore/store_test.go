package badgerstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfdigest/internal/port"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_ReadWriteDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Read(ctx, "missing")
	assert.ErrorIs(t, err, port.ErrKeyNotFound)

	require.NoError(t, s.Write(ctx, "k", []byte("v"), time.Hour))
	got, err := s.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Read(ctx, "k")
	assert.ErrorIs(t, err, port.ErrKeyNotFound)
}

func TestStore_DeletePrefixAndLen(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "convert:docling:a", []byte("1"), time.Hour))
	require.NoError(t, s.Write(ctx, "convert:docling:b", []byte("2"), time.Hour))
	require.NoError(t, s.Write(ctx, "convert:agno:a", []byte("3"), time.Hour))

	total, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	n, err := s.DeletePrefix(ctx, "convert:docling:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	remaining, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestStore_NativeTTL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "short", []byte("v"), 50*time.Millisecond))
	time.Sleep(120 * time.Millisecond)

	_, err := s.Read(ctx, "short")
	assert.ErrorIs(t, err, port.ErrKeyNotFound)
}
