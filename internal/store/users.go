package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"inkwell/internal/models"
)

// Users persists account records. Lookups are exact-match with no
// normalization; values compare as stored.
type Users struct {
	db *gorm.DB
}

// ByID fetches a user by primary key.
func (u *Users) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

// ByUsername fetches a user by exact username.
func (u *Users) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

// ByEmail fetches a user by exact email.
func (u *Users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

// Create inserts a new user. The unique indexes on username and email reject
// collisions at write time; two racing inserts cannot both succeed even when
// both passed an earlier existence check.
func (u *Users) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.AvatarFile == "" {
		user.AvatarFile = models.DefaultAvatar
	}

	err := u.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return u.attributeDuplicate(ctx, user)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update persists changed profile fields and the password hash. Duplicate
// handling matches Create; a self-update never conflicts with the user's own
// row because the conflicting row is excluded by ID during attribution.
func (u *Users) Update(ctx context.Context, user *models.User) error {
	err := u.db.WithContext(ctx).Save(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return u.attributeDuplicate(ctx, user)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// attributeDuplicate decides which unique field fired by looking for another
// row claiming the same username or email.
func (u *Users) attributeDuplicate(ctx context.Context, user *models.User) error {
	var count int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", user.Username, user.ID).
		Count(&count).Error; err == nil && count > 0 {
		return ErrDuplicateUsername
	}
	if err := u.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", user.Email, user.ID).
		Count(&count).Error; err == nil && count > 0 {
		return ErrDuplicateEmail
	}
	return ErrDuplicate
}
