package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes. A token issued for one purpose never verifies as another.
const (
	purposeSession = "session"
	purposeReset   = "password-reset"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// purpose, malformed input, or expiry. Callers receive no finer detail.
var ErrInvalidToken = errors.New("invalid or expired token")

// Tokens issues and verifies HMAC-signed, time-boxed tokens binding a user ID
// to a purpose. Tokens are stateless: verification is a pure function of the
// token, the current time, and the signing secret, so restarts and replicas
// never invalidate outstanding tokens and reuse within the window is allowed.
type Tokens struct {
	secret      []byte
	sessionTTL  time.Duration
	rememberTTL time.Duration
	resetTTL    time.Duration
	now         func() time.Time
}

// NewTokens creates a token service over the process-wide signing secret.
func NewTokens(secret string, sessionTTL, rememberTTL, resetTTL time.Duration) *Tokens {
	return &Tokens{
		secret:      []byte(secret),
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
		resetTTL:    resetTTL,
		now:         time.Now,
	}
}

type tokenClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// IssueSession returns a session token for the user and its lifetime.
// remember selects the long-lived duration over the default one.
func (t *Tokens) IssueSession(userID uuid.UUID, remember bool) (string, time.Duration, error) {
	ttl := t.sessionTTL
	if remember {
		ttl = t.rememberTTL
	}
	token, err := t.issue(purposeSession, userID, ttl)
	return token, ttl, err
}

// VerifySession resolves a session token to the user it was issued for.
func (t *Tokens) VerifySession(token string) (uuid.UUID, error) {
	return t.verify(purposeSession, token)
}

// IssueReset returns a password-reset token for the user, safe for embedding
// in a URL.
func (t *Tokens) IssueReset(userID uuid.UUID) (string, error) {
	return t.issue(purposeReset, userID, t.resetTTL)
}

// VerifyReset resolves a reset token to the user it authorizes.
func (t *Tokens) VerifyReset(token string) (uuid.UUID, error) {
	return t.verify(purposeReset, token)
}

func (t *Tokens) issue(purpose string, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := t.now()
	claims := tokenClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return signed, nil
}

// verify fails closed: truncated, tampered, or garbled input yields
// ErrInvalidToken, never a panic or a detailed parse error.
func (t *Tokens) verify(purpose, token string) (uuid.UUID, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
