package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAvatar is the sentinel avatar assigned to new accounts.
const DefaultAvatar = "default.png"

// User represents a registered author on the platform.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"type:text;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:text;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	AvatarFile   string    `gorm:"type:text;not null;default:'default.png'" json:"avatar_file"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
