// Package store implements persistence for users and posts on top of GORM.
// Uniqueness and ownership are enforced by the write statements themselves;
// any read-before-write in callers is advisory only.
package store

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden is returned when the requester does not own the record.
	ErrForbidden = errors.New("access denied")
	// ErrDuplicateUsername is returned when a write collides on username.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateEmail is returned when a write collides on email.
	ErrDuplicateEmail = errors.New("email already taken")
	// ErrDuplicate is returned when a unique constraint fired but the
	// conflicting field could not be attributed.
	ErrDuplicate = errors.New("duplicate record")
)

// Store bundles the repositories sharing one GORM handle.
type Store struct {
	Users *Users
	Posts *Posts
}

// New initialises the repositories over the provided database handle.
func New(database *gorm.DB) *Store {
	return &Store{
		Users: &Users{db: database},
		Posts: &Posts{db: database},
	}
}

// IsDuplicate reports whether err is any of the duplicate-key sentinels.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrDuplicate)
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
