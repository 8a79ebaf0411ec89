package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"inkwell/internal/avatar"
	"inkwell/internal/store"
	"inkwell/internal/validation"
)

func (a *API) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	// Pre-populates the account form with the stored values.
	respondJSON(w, http.StatusOK, map[string]any{"user": currentUser(r)})
}

// handleUpdateAccount accepts a multipart form with username, email, and an
// optional avatar image. The image is resized into the bounding box and
// stored under a fresh name; the previous file is simply abandoned.
func (a *API) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxAvatarBytes+64<<10)
	if err := r.ParseMultipartForm(a.config.MaxAvatarBytes); err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid multipart form"))
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))

	if errs := validation.Profile(username, email); !errs.Empty() {
		respondFields(w, http.StatusUnprocessableEntity, errs)
		return
	}

	user := currentUser(r)
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	// Advisory check excluding the user's own row, so keeping the same
	// username or email never self-conflicts.
	errs, err := validation.Uniqueness(ctx, a.store.Users, username, email, user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errors.New("account update failed"))
		return
	}
	if !errs.Empty() {
		respondFields(w, http.StatusConflict, errs)
		return
	}

	updated := *user
	updated.Username = username
	updated.Email = email

	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		if header.Size > a.config.MaxAvatarBytes {
			respondFields(w, http.StatusUnprocessableEntity,
				validation.Errors{"avatar": {"image is too large"}})
			return
		}

		name, data, err := avatar.Process(file)
		if err != nil {
			if errors.Is(err, avatar.ErrUnsupportedFormat) {
				respondFields(w, http.StatusUnprocessableEntity,
					validation.Errors{"avatar": {"only JPEG and PNG images are allowed"}})
				return
			}
			log.Error().Err(err).Msg("process avatar")
			respondError(w, http.StatusInternalServerError, errors.New("account update failed"))
			return
		}
		if err := a.avatars.Save(ctx, name, data); err != nil {
			log.Error().Err(err).Msg("store avatar")
			respondError(w, http.StatusInternalServerError, errors.New("account update failed"))
			return
		}
		updated.AvatarFile = name
	}

	if err := a.store.Users.Update(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			respondFields(w, http.StatusConflict, validation.Errors{"username": {err.Error()}})
		case errors.Is(err, store.ErrDuplicateEmail):
			respondFields(w, http.StatusConflict, validation.Errors{"email": {err.Error()}})
		case store.IsDuplicate(err):
			respondError(w, http.StatusConflict, err)
		default:
			log.Error().Err(err).Msg("update account")
			respondError(w, http.StatusInternalServerError, errors.New("account update failed"))
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": updated})
}

func (a *API) handleAvatar(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	img, err := a.avatars.Open(ctx, name)
	if err != nil {
		if errors.Is(err, avatar.ErrNotFound) {
			respondError(w, http.StatusNotFound, store.ErrNotFound)
			return
		}
		log.Error().Err(err).Msg("open avatar")
		respondError(w, http.StatusInternalServerError, errors.New("could not fetch avatar"))
		return
	}
	defer img.Close()

	if strings.HasSuffix(name, ".png") {
		w.Header().Set("Content-Type", "image/png")
	} else {
		w.Header().Set("Content-Type", "image/jpeg")
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.Copy(w, img)
}
