// Package handlers exposes the HTTP surface of the blog service.
package handlers

import (
	"errors"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/avatar"
	"inkwell/internal/events"
	"inkwell/internal/mailer"
	"inkwell/internal/store"
)

const (
	sessionCookie  = "inkwell_session"
	defaultTimeout = 5 * time.Second
)

// Config controls runtime behaviour for the API handlers.
type Config struct {
	BaseURL        string
	AllowedOrigins []string
	PageSize       int
	MaxPageSize    int
	ResetTTL       time.Duration
	MaxAvatarBytes int64
	CookieSecure   bool
}

// API wires dependencies and configuration for the HTTP handlers.
type API struct {
	store   *store.Store
	auth    *auth.Service
	tokens  *auth.Tokens
	avatars avatar.Store
	mail    mailer.Mailer
	events  *events.Publisher
	config  Config
}

// New initialises the API layer with sane defaults applied to the provided
// configuration.
func New(st *store.Store, authSvc *auth.Service, tokens *auth.Tokens, avatars avatar.Store, mail mailer.Mailer, ev *events.Publisher, cfg Config) (*API, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if authSvc == nil {
		return nil, errors.New("auth service is required")
	}
	if tokens == nil {
		return nil, errors.New("token service is required")
	}
	if avatars == nil {
		return nil, errors.New("avatar store is required")
	}

	if mail == nil {
		mail = mailer.Log{}
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 50
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = 30 * time.Minute
	}
	if cfg.MaxAvatarBytes <= 0 {
		cfg.MaxAvatarBytes = 5 << 20
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}

	return &API{
		store:   st,
		auth:    authSvc,
		tokens:  tokens,
		avatars: avatars,
		mail:    mail,
		events:  ev,
		config:  cfg,
	}, nil
}
