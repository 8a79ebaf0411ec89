package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// ErrInvalidCredentials is the single failure returned by Authenticate. An
// unknown email and a wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service performs registration, authentication, and password replacement
// over the credential store.
type Service struct {
	users  *store.Users
	hasher *Hasher

	// decoy is compared against when the email is unknown so both failure
	// paths pay the same bcrypt cost.
	decoy string
}

// NewService wires the auth service over its collaborators.
func NewService(users *store.Users, hasher *Hasher) *Service {
	decoy, err := hasher.Hash("inkwell-decoy-credential")
	if err != nil {
		decoy = ""
	}
	return &Service{users: users, hasher: hasher, decoy: decoy}
}

// Register hashes the password and inserts a new user with the default
// avatar. Username and email collisions surface as the store's per-field
// duplicate errors; the insert itself is the uniqueness authority.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		AvatarFile:   models.DefaultAvatar,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate resolves an email/password pair to the account it belongs to,
// or ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.Verify(password, s.decoy)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ResetPassword re-hashes and overwrites the stored credential. Outstanding
// sessions and reset tokens stay valid until they expire on their own.
func (s *Service) ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}
