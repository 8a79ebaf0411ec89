package validation

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

func TestUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		ok       bool
	}{
		{"valid simple", "alice", true},
		{"valid with underscore and digits", "al_ice_99", true},
		{"minimum length", "abc", true},
		{"maximum length", "abcdefghijklmnopqrst", true},
		{"empty", "", false},
		{"too short", "ab", false},
		{"too long", "abcdefghijklmnopqrstu", false},
		{"space", "al ice", false},
		{"hyphen", "al-ice", false},
		{"unicode", "алиса", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Username(tc.username)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	cases := []struct {
		name  string
		email string
		ok    bool
	}{
		{"valid", "a@example.com", true},
		{"valid subdomain", "a@mail.example.com", true},
		{"empty", "", false},
		{"no at sign", "example.com", false},
		{"no domain", "a@", false},
		{"display name form rejected", "Alice <a@example.com>", false},
		{"trailing space", "a@example.com ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Email(tc.email)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	assert.NoError(t, Password("secret", "secret"))
	assert.Error(t, Password("", ""))
	assert.Error(t, Password("secret", "different"))
	assert.Error(t, Password("secret", ""))

	// bcrypt truncates nothing; input beyond its 72-byte limit is rejected
	// up front instead of failing inside the hasher.
	atLimit := strings.Repeat("a", MaxPasswordLen)
	assert.NoError(t, Password(atLimit, atLimit))
	overLimit := atLimit + "a"
	assert.Error(t, Password(overLimit, overLimit))
}

func TestPostInput(t *testing.T) {
	assert.True(t, PostInput("Title", "Body").Empty())

	errs := PostInput("", "Body")
	assert.Contains(t, errs, "title")
	assert.NotContains(t, errs, "body")

	errs = PostInput("   ", "\n\t")
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "body")
}

func TestRegistrationCollectsAllFields(t *testing.T) {
	errs := Registration("", "bad", "pw", "mismatch")
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")

	assert.True(t, Registration("alice", "a@x.com", "pw123", "pw123").Empty())
}

type fakeFinder struct {
	byUsername map[string]*models.User
	byEmail    map[string]*models.User
}

func (f fakeFinder) ByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f fakeFinder) ByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func TestUniqueness(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice", Email: "a@x.com"}
	finder := fakeFinder{
		byUsername: map[string]*models.User{"alice": alice},
		byEmail:    map[string]*models.User{"a@x.com": alice},
	}
	ctx := context.Background()

	t.Run("free values pass", func(t *testing.T) {
		errs, err := Uniqueness(ctx, finder, "bob", "b@x.com", uuid.Nil)
		require.NoError(t, err)
		assert.True(t, errs.Empty())
	})

	t.Run("taken by another user", func(t *testing.T) {
		errs, err := Uniqueness(ctx, finder, "alice", "a@x.com", uuid.Nil)
		require.NoError(t, err)
		assert.Contains(t, errs, "username")
		assert.Contains(t, errs, "email")
	})

	t.Run("own values excluded via self", func(t *testing.T) {
		errs, err := Uniqueness(ctx, finder, "alice", "a@x.com", alice.ID)
		require.NoError(t, err)
		assert.True(t, errs.Empty())
	})

	t.Run("blank values skipped", func(t *testing.T) {
		errs, err := Uniqueness(ctx, finder, "", "", uuid.Nil)
		require.NoError(t, err)
		assert.True(t, errs.Empty())
	})
}
