package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"inkwell/internal/models"
)

// Posts persists blog entries with ownership-checked mutation.
type Posts struct {
	db *gorm.DB
}

// Page is one window of an ordered post listing.
type Page struct {
	Posts    []models.Post `json:"posts"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int64         `json:"total"`
}

// Create inserts a post owned by authorID with a server-assigned timestamp.
func (p *Posts) Create(ctx context.Context, title, body string, authorID uuid.UUID) (*models.Post, error) {
	post := models.Post{
		ID:       uuid.New(),
		Title:    title,
		Body:     body,
		AuthorID: authorID,
	}
	if err := p.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

// ByID fetches a post by primary key.
func (p *Posts) ByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := p.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &post, nil
}

// Update rewrites title and body if requester owns the post. The ownership
// predicate lives in the UPDATE itself; a zero-row result is disambiguated
// into ErrNotFound or ErrForbidden by a follow-up read.
func (p *Posts) Update(ctx context.Context, id uuid.UUID, title, body string, requester uuid.UUID) (*models.Post, error) {
	res := p.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND author_id = ?", id, requester).
		Updates(map[string]any{
			"title":      title,
			"body":       body,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, p.missOrForbidden(ctx, id)
	}
	return p.ByID(ctx, id)
}

// Delete removes the post if requester owns it.
func (p *Posts) Delete(ctx context.Context, id uuid.UUID, requester uuid.UUID) error {
	res := p.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, requester).
		Delete(&models.Post{})
	if res.Error != nil {
		return fmt.Errorf("delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return p.missOrForbidden(ctx, id)
	}
	return nil
}

// List returns one page of all posts, newest first.
func (p *Posts) List(ctx context.Context, page, size int) (*Page, error) {
	return p.list(func() *gorm.DB {
		return p.db.WithContext(ctx).Model(&models.Post{})
	}, page, size)
}

// ListByAuthor returns one page of a single author's posts, newest first.
func (p *Posts) ListByAuthor(ctx context.Context, authorID uuid.UUID, page, size int) (*Page, error) {
	return p.list(func() *gorm.DB {
		return p.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID)
	}, page, size)
}

// query is rebuilt per statement; chaining a Find after a Count on the same
// builder leaks statement state in GORM.
func (p *Posts) list(query func() *gorm.DB, page, size int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	posts := []models.Post{}
	err := query().Order("created_at DESC, id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return &Page{Posts: posts, Page: page, PageSize: size, Total: total}, nil
}

func (p *Posts) missOrForbidden(ctx context.Context, id uuid.UUID) error {
	if _, err := p.ByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return ErrForbidden
}
