package badgerstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-hymnal-backend/internal/repo"
	"github.com/tbourn/go-hymnal-backend/internal/selection"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDocumentsAndIndexes(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "hb")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	require.NoError(t, s.Put(ctx, "hb", []byte("one")))
	require.NoError(t, s.Put(ctx, "hb", []byte("two")))
	raw, err := s.Get(ctx, "hb")
	require.NoError(t, err)
	assert.Equal(t, "two", string(raw))

	_, err = s.GetIndex(ctx, "hb")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, s.PutIndex(ctx, "hb", []byte{9}))
	blob, err := s.GetIndex(ctx, "hb")
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, blob)
}

func TestListIsSortedAndIgnoresOtherKeys(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a/b", "a"} {
		require.NoError(t, s.Put(ctx, id, []byte(id)))
	}
	require.NoError(t, s.PutIndex(ctx, "a", []byte{1}))
	require.NoError(t, s.PutSelection(ctx, "a", "topic", selection.All()))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a/b", "b"}, ids)
}

func TestSelections(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.GetSelection(ctx, "hb", "topic")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	require.NoError(t, s.PutSelection(ctx, "hb", "topic", selection.Of("A", "B")))
	got, err := s.GetSelection(ctx, "hb", "topic")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got.IDs())

	require.NoError(t, s.PutSelection(ctx, "hb", "topic", selection.All()))
	got, err = s.GetSelection(ctx, "hb", "topic")
	require.NoError(t, err)
	assert.True(t, got.IsAll())
}

func TestDeleteCascades(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Delete(ctx, "hb"), repo.ErrNotFound)

	require.NoError(t, s.Put(ctx, "hb", []byte("x")))
	require.NoError(t, s.Put(ctx, "hb2", []byte("y")))
	require.NoError(t, s.PutIndex(ctx, "hb", []byte{1}))
	require.NoError(t, s.PutSelection(ctx, "hb", "topic", selection.All()))
	require.NoError(t, s.PutSelection(ctx, "hb2", "topic", selection.All()))

	require.NoError(t, s.Delete(ctx, "hb"))

	_, err := s.Get(ctx, "hb")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = s.GetIndex(ctx, "hb")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = s.GetSelection(ctx, "hb", "topic")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	// a document whose id extends the deleted one is untouched
	_, err = s.GetSelection(ctx, "hb2", "topic")
	assert.NoError(t, err)
}

func TestBadIDs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	assert.ErrorIs(t, s.Put(ctx, "", []byte("x")), ErrBadID)
	assert.ErrorIs(t, s.Put(ctx, "a\x00b", []byte("x")), ErrBadID)
	assert.ErrorIs(t, s.PutSelection(ctx, "a", "", selection.All()), ErrBadID)
}
