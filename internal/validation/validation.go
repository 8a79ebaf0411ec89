// Package validation holds the form validation rules. Field checks are pure
// functions; the uniqueness check takes the credential store as an explicit
// argument so no validator performs hidden I/O.
package validation

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

const (
	// MinUsernameLen is the minimum username length.
	MinUsernameLen = 3
	// MaxUsernameLen is the maximum username length.
	MaxUsernameLen = 20
	// MaxPasswordLen is bcrypt's 72-byte input limit; longer passwords are
	// rejected here rather than surfacing a hashing error.
	MaxPasswordLen = 72
)

// usernamePattern restricts usernames to letters, digits, and underscores.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Errors maps a form field to its validation messages.
type Errors map[string][]string

// Add appends a message for the named field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Empty reports whether no field failed.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Username checks length and character set.
func Username(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen {
		return fmt.Errorf("username must be %d-%d characters", MinUsernameLen, MaxUsernameLen)
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username may only contain letters, numbers, and underscores")
	}
	return nil
}

// Email checks that the address parses as a bare RFC 5322 address.
func Email(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("email address is not valid")
	}
	return nil
}

// Password checks the password and its confirmation.
func Password(password, confirm string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must be at most %d bytes", MaxPasswordLen)
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}
	return nil
}

// PostInput validates a post's title and body.
func PostInput(title, body string) Errors {
	errs := Errors{}
	if strings.TrimSpace(title) == "" {
		errs.Add("title", "title is required")
	}
	if strings.TrimSpace(body) == "" {
		errs.Add("body", "body is required")
	}
	return errs
}

// Registration validates the register form fields.
func Registration(username, email, password, confirm string) Errors {
	errs := Errors{}
	if err := Username(username); err != nil {
		errs.Add("username", err.Error())
	}
	if err := Email(email); err != nil {
		errs.Add("email", err.Error())
	}
	if err := Password(password, confirm); err != nil {
		errs.Add("password", err.Error())
	}
	return errs
}

// Profile validates the account update form fields.
func Profile(username, email string) Errors {
	errs := Errors{}
	if err := Username(username); err != nil {
		errs.Add("username", err.Error())
	}
	if err := Email(email); err != nil {
		errs.Add("email", err.Error())
	}
	return errs
}

// UserFinder is the slice of the credential store the uniqueness check needs.
type UserFinder interface {
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
}

// Uniqueness reports field errors for a username or email already claimed by
// a different user. self excludes the caller's own record, so a self-update
// does not self-conflict. This check is advisory; the store's insert or
// update remains the final authority under concurrency.
func Uniqueness(ctx context.Context, users UserFinder, username, email string, self uuid.UUID) (Errors, error) {
	errs := Errors{}

	if username != "" {
		existing, err := users.ByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != self:
			errs.Add("username", store.ErrDuplicateUsername.Error())
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	if email != "" {
		existing, err := users.ByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != self:
			errs.Add("email", store.ErrDuplicateEmail.Error())
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	return errs, nil
}
