package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestQueueAdd(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()

	added, err := s.QueueAdd(ctx,
		"Rush/Moving Pictures (1981)",
		// same artist and same album respectively, both skipped
		"Rush/Signals (1982)",
		"Tool/Moving Pictures (1981)",
		"Low/Things We Lost in the Fire (2001)",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	entries, err := s.Queue(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Low", entries[0].Artist)
	assert.Equal(t, "Things We Lost in the Fire (2001)", entries[0].Album)

	// re-adding is a no-op
	added, err = s.QueueAdd(ctx, "Rush/Moving Pictures (1981)")
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	n, err := s.QueueLen(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestQueueAddBadRelpath(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()

	_, err := s.QueueAdd(ctx, "no separator")
	require.ErrorIs(t, err, ErrBadRelpath)

	_, err = s.QueueAdd(ctx, "a/b/c")
	require.ErrorIs(t, err, ErrBadRelpath)
}

func TestQueuePop(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()

	_, err := s.QueuePop(ctx)
	require.ErrorIs(t, err, sql.ErrNoRows)

	_, err = s.QueueAdd(ctx, "Rush/Moving Pictures (1981)")
	require.NoError(t, err)

	entry, err := s.QueuePop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rush/Moving Pictures (1981)", entry.Relpath)
	assert.True(t, entry.Played)

	n, err := s.QueueLen(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestQueueSample(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()

	_, err := s.QueueAdd(ctx,
		"Artist1/AlbumA (2001)",
		"Artist2/AlbumB (2002)",
		"Artist3/AlbumC (2003)",
	)
	require.NoError(t, err)

	sample, err := s.QueueSample(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, sample, 2)

	sample, err = s.QueueSample(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, sample, 3)
}

func TestMarkPlayedMissing(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	require.ErrorIs(t, s.MarkPlayed(context.Background(), "nope/nope"), sql.ErrNoRows)
}

func TestRatings(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRating(ctx, 123, "Rush", "Moving Pictures (1981)", 5, "Progressive Rock"))
	require.NoError(t, s.SaveRating(ctx, 456, "Rush", "Signals (1982)", 3, "Progressive Rock"))

	rating, ok, err := s.Rated(ctx, "Rush", "Moving Pictures (1981)")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, rating)

	// front match without the year suffix
	rating, ok, err = s.Rated(ctx, "Rush", "Moving Pictures")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, rating)

	_, ok, err = s.Rated(ctx, "Rush", "Hemispheres")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Rated(ctx, "Tool", "Moving Pictures (1981)")
	require.NoError(t, err)
	assert.False(t, ok)

	// rerating overwrites
	require.NoError(t, s.SaveRating(ctx, 123, "Rush", "Moving Pictures (1981)", 4, "Progressive Rock"))
	rating, _, err = s.Rated(ctx, "Rush", "Moving Pictures (1981)")
	require.NoError(t, err)
	assert.Equal(t, 4, rating)

	mean, err := s.ArtistMeanRating(ctx, "Rush")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, mean, 0.01)

	mean, err = s.ArtistMeanRating(ctx, "Tool")
	require.NoError(t, err)
	assert.Zero(t, mean)
}
