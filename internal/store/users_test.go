package store

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
)

func TestUsersCreateAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, s, "alice", "a@x.com")
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, models.DefaultAvatar, user.AvatarFile)

	byID, err := s.Users.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := s.Users.ByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := s.Users.ByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	// Lookups are exact-match, no normalization.
	_, err = s.Users.ByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Users.ByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersDuplicateAttribution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	newTestUser(t, s, "alice", "a@x.com")

	err := s.Users.Create(ctx, &models.User{
		Username:     "alice",
		Email:        "other@x.com",
		PasswordHash: "h",
	})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	err = s.Users.Create(ctx, &models.User{
		Username:     "bob",
		Email:        "a@x.com",
		PasswordHash: "h",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// The failed inserts must not have left rows behind.
	_, err = s.Users.ByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersUpdateSelfDoesNotConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, s, "alice", "a@x.com")

	// Re-saving the same username and email is not a collision.
	user.AvatarFile = "abcd1234.png"
	require.NoError(t, s.Users.Update(ctx, user))

	updated, err := s.Users.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "abcd1234.png", updated.AvatarFile)
}

func TestUsersUpdateConflictsWithOtherRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	newTestUser(t, s, "alice", "a@x.com")
	bob := newTestUser(t, s, "bob", "b@x.com")

	bob.Username = "alice"
	err := s.Users.Update(ctx, bob)
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	bob.Username = "bob"
	bob.Email = "a@x.com"
	err = s.Users.Update(ctx, bob)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUsersConcurrentRegistrationOneWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Users.Create(ctx, &models.User{
				Username:     "alice",
				Email:        "a@x.com",
				PasswordHash: "h",
			})
		}(i)
	}
	wg.Wait()

	var wins, dups int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case IsDuplicate(err):
			dups++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one insert must win")
	assert.Equal(t, 1, dups, "the loser must observe a duplicate error")

	// No duplicate record exists afterwards.
	user, err := s.Users.ByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
}
