package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a published entry. AuthorID is set at creation and never changes;
// the author row is resolved by an explicit store lookup, not a preload.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
