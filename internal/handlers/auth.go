package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"inkwell/internal/auth"
	"inkwell/internal/events"
	"inkwell/internal/store"
	"inkwell/internal/validation"
)

// resetRequestBody is accepted for both known and unknown addresses; the
// response never reveals whether an account exists.
const resetSentMessage = "If the email exists, a reset link has been sent"

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Confirm  string `json:"confirm"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if errs := validation.Registration(req.Username, req.Email, req.Password, req.Confirm); !errs.Empty() {
		respondFields(w, http.StatusUnprocessableEntity, errs)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	// Advisory pre-check for friendly field messages; the insert below is
	// the authority under concurrency.
	errs, err := validation.Uniqueness(ctx, a.store.Users, req.Username, req.Email, uuid.Nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errors.New("registration failed"))
		return
	}
	if !errs.Empty() {
		respondFields(w, http.StatusConflict, errs)
		return
	}

	user, err := a.auth.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			respondFields(w, http.StatusConflict, validation.Errors{"username": {err.Error()}})
		case errors.Is(err, store.ErrDuplicateEmail):
			respondFields(w, http.StatusConflict, validation.Errors{"email": {err.Error()}})
		case store.IsDuplicate(err):
			respondError(w, http.StatusConflict, err)
		default:
			log.Error().Err(err).Msg("register user")
			respondError(w, http.StatusInternalServerError, errors.New("registration failed"))
		}
		return
	}

	a.events.Publish(events.SubjectUserRegistered, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})
	respondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	user, err := a.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, err)
			return
		}
		log.Error().Err(err).Msg("authenticate user")
		respondError(w, http.StatusInternalServerError, errors.New("login failed"))
		return
	}

	token, ttl, err := a.tokens.IssueSession(user.ID, req.Remember)
	if err != nil {
		log.Error().Err(err).Msg("issue session token")
		respondError(w, http.StatusInternalServerError, errors.New("login failed"))
		return
	}

	http.SetCookie(w, a.sessionCookie(token, ttl, req.Remember))
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Stateless sessions: clearing the cookie removes the client's
	// credential; the token itself lapses at its natural expiry.
	http.SetCookie(w, a.clearSessionCookie())
	respondJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}

func (a *API) handleResetForm(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := validation.Email(req.Email); err != nil {
		respondFields(w, http.StatusUnprocessableEntity, validation.Errors{"email": {err.Error()}})
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	user, err := a.store.Users.ByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondJSON(w, http.StatusOK, map[string]any{"message": resetSentMessage})
			return
		}
		log.Error().Err(err).Msg("look up reset account")
		respondError(w, http.StatusInternalServerError, errors.New("reset request failed"))
		return
	}

	token, err := a.tokens.IssueReset(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("issue reset token")
		respondError(w, http.StatusInternalServerError, errors.New("reset request failed"))
		return
	}

	link := a.config.BaseURL + "/reset-password/" + token
	if err := a.mail.SendPasswordReset(user.Email, link, a.config.ResetTTL); err != nil {
		log.Error().Err(err).Msg("send reset email")
		respondError(w, http.StatusInternalServerError, errors.New("reset request failed"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"message": resetSentMessage})
}

func (a *API) handleResetVerify(w http.ResponseWriter, r *http.Request) {
	if _, err := a.tokens.VerifyReset(chi.URLParam(r, "token")); err != nil {
		respondError(w, http.StatusBadRequest, auth.ErrInvalidToken)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (a *API) handleResetConsume(w http.ResponseWriter, r *http.Request) {
	userID, err := a.tokens.VerifyReset(chi.URLParam(r, "token"))
	if err != nil {
		respondError(w, http.StatusBadRequest, auth.ErrInvalidToken)
		return
	}

	var req struct {
		Password string `json:"password"`
		Confirm  string `json:"confirm"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := validation.Password(req.Password, req.Confirm); err != nil {
		respondFields(w, http.StatusUnprocessableEntity, validation.Errors{"password": {err.Error()}})
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.auth.ResetPassword(ctx, userID, req.Password); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Token outlived the account; fail the same as a bad token.
			respondError(w, http.StatusBadRequest, auth.ErrInvalidToken)
			return
		}
		log.Error().Err(err).Msg("reset password")
		respondError(w, http.StatusInternalServerError, errors.New("password reset failed"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"message": "password updated"})
}

func (a *API) sessionCookie(token string, ttl time.Duration, remember bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	// Only remembered sessions persist past the browser session.
	if remember {
		cookie.MaxAge = int(ttl.Seconds())
	}
	return cookie
}

func (a *API) clearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
