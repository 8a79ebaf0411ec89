package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostsCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice", "a@x.com")

	post, err := s.Posts.Create(ctx, "Hello", "World", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, post.AuthorID)
	assert.False(t, post.CreatedAt.IsZero())

	got, err := s.Posts.ByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "World", got.Body)

	_, err = s.Posts.ByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostsOwnershipChecks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice", "a@x.com")
	bob := newTestUser(t, s, "bob", "b@x.com")

	post, err := s.Posts.Create(ctx, "Hello", "World", alice.ID)
	require.NoError(t, err)

	// Non-owner update is refused and leaves the post unchanged.
	_, err = s.Posts.Update(ctx, post.ID, "Hacked", "Gone", bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	unchanged, err := s.Posts.ByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", unchanged.Title)
	assert.Equal(t, "World", unchanged.Body)

	// Non-owner delete is refused too.
	err = s.Posts.Delete(ctx, post.ID, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Owner mutation succeeds.
	updated, err := s.Posts.Update(ctx, post.ID, "Hello again", "World", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", updated.Title)

	require.NoError(t, s.Posts.Delete(ctx, post.ID, alice.ID))

	_, err = s.Posts.ByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Mutating a missing post reports NotFound, not Forbidden.
	_, err = s.Posts.Update(ctx, uuid.New(), "x", "y", alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	err = s.Posts.Delete(ctx, uuid.New(), alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostsPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice", "a@x.com")
	bob := newTestUser(t, s, "bob", "b@x.com")

	for i := 0; i < 5; i++ {
		_, err := s.Posts.Create(ctx, fmt.Sprintf("alice %d", i), "body", alice.ID)
		require.NoError(t, err)
	}
	_, err := s.Posts.Create(ctx, "bob 0", "body", bob.ID)
	require.NoError(t, err)

	// Global feed, newest first.
	page, err := s.Posts.List(ctx, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Total)
	require.Len(t, page.Posts, 4)
	assert.Equal(t, "bob 0", page.Posts[0].Title)
	for i := 0; i < len(page.Posts)-1; i++ {
		assert.False(t, page.Posts[i].CreatedAt.Before(page.Posts[i+1].CreatedAt))
	}

	second, err := s.Posts.List(ctx, 2, 4)
	require.NoError(t, err)
	assert.Len(t, second.Posts, 2)

	// A page past the end is empty, never an error.
	far, err := s.Posts.List(ctx, 99, 4)
	require.NoError(t, err)
	assert.Empty(t, far.Posts)
	assert.Equal(t, int64(6), far.Total)

	// Scoped to one author.
	aliceOnly, err := s.Posts.ListByAuthor(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), aliceOnly.Total)
	for _, p := range aliceOnly.Posts {
		assert.Equal(t, alice.ID, p.AuthorID)
	}

	// Out-of-range page arguments clamp instead of failing.
	clamped, err := s.Posts.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.Page)
}
