package db

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inkwell/internal/models"
)

// AdminSeed describes the optional bootstrap account created on first start.
// PasswordHash must already be hashed by the caller.
type AdminSeed struct {
	Username     string
	Email        string
	PasswordHash string
}

// Seed inserts the bootstrap admin account if one is configured. An existing
// row with the same username or email wins; the seed never overwrites it.
func Seed(ctx context.Context, database *gorm.DB, admin AdminSeed) error {
	if admin.Email == "" || admin.PasswordHash == "" {
		return nil
	}
	if admin.Username == "" {
		admin.Username = "admin"
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: admin.PasswordHash,
		AvatarFile:   models.DefaultAvatar,
	}
	return database.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user).Error
}
