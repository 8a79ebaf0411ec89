package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/store"
	"inkwell/internal/validation"
)

// authorSummary is the public slice of a user attached to post responses.
type authorSummary struct {
	Username   string `json:"username"`
	AvatarFile string `json:"avatar_file"`
}

func (a *API) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if errs := validation.PostInput(req.Title, req.Body); !errs.Empty() {
		respondFields(w, http.StatusUnprocessableEntity, errs)
		return
	}

	user := currentUser(r)
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	post, err := a.store.Posts.Create(ctx, req.Title, req.Body, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("create post")
		respondError(w, http.StatusInternalServerError, errors.New("could not create post"))
		return
	}

	a.events.Publish(events.SubjectPostCreated, map[string]any{
		"post_id":   post.ID,
		"author_id": post.AuthorID,
	})
	respondJSON(w, http.StatusCreated, map[string]any{"post": post})
}

func (a *API) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, http.StatusNotFound, store.ErrNotFound)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	post, err := a.store.Posts.ByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, store.ErrNotFound)
			return
		}
		log.Error().Err(err).Msg("fetch post")
		respondError(w, http.StatusInternalServerError, errors.New("could not fetch post"))
		return
	}

	authors := a.authorsFor(ctx, []models.Post{*post})
	respondJSON(w, http.StatusOK, map[string]any{
		"post":   post,
		"author": authors[post.AuthorID],
	})
}

func (a *API) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, http.StatusNotFound, store.ErrNotFound)
		return
	}

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if errs := validation.PostInput(req.Title, req.Body); !errs.Empty() {
		respondFields(w, http.StatusUnprocessableEntity, errs)
		return
	}

	user := currentUser(r)
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	post, err := a.store.Posts.Update(ctx, postID, req.Title, req.Body, user.ID)
	if err != nil {
		a.respondPostMutationError(w, err, "update post")
		return
	}

	a.events.Publish(events.SubjectPostUpdated, map[string]any{
		"post_id":   post.ID,
		"author_id": post.AuthorID,
	})
	respondJSON(w, http.StatusOK, map[string]any{"post": post})
}

func (a *API) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, http.StatusNotFound, store.ErrNotFound)
		return
	}

	user := currentUser(r)
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.Posts.Delete(ctx, postID, user.ID); err != nil {
		a.respondPostMutationError(w, err, "delete post")
		return
	}

	a.events.Publish(events.SubjectPostDeleted, map[string]any{
		"post_id":  postID,
		"actor_id": user.ID,
	})
	respondJSON(w, http.StatusOK, map[string]any{"message": "post deleted"})
}

func (a *API) handleFeed(w http.ResponseWriter, r *http.Request) {
	page, size := a.pageParams(r)

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	result, err := a.store.Posts.List(ctx, page, size)
	if err != nil {
		log.Error().Err(err).Msg("list posts")
		respondError(w, http.StatusInternalServerError, errors.New("could not list posts"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"page":    result,
		"authors": a.authorsFor(ctx, result.Posts),
	})
}

func (a *API) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	page, size := a.pageParams(r)

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	user, err := a.store.Users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, store.ErrNotFound)
			return
		}
		log.Error().Err(err).Msg("fetch user")
		respondError(w, http.StatusInternalServerError, errors.New("could not list posts"))
		return
	}

	result, err := a.store.Posts.ListByAuthor(ctx, user.ID, page, size)
	if err != nil {
		log.Error().Err(err).Msg("list user posts")
		respondError(w, http.StatusInternalServerError, errors.New("could not list posts"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user": authorSummary{Username: user.Username, AvatarFile: user.AvatarFile},
		"page": result,
	})
}

// respondPostMutationError keeps ownership refusals deliberately terse: a
// Forbidden reply never names the true owner.
func (a *API) respondPostMutationError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, store.ErrNotFound)
	case errors.Is(err, store.ErrForbidden):
		respondError(w, http.StatusForbidden, store.ErrForbidden)
	default:
		log.Error().Err(err).Msg(op)
		respondError(w, http.StatusInternalServerError, errors.New("could not "+op))
	}
}

// authorsFor resolves the distinct author ids of a post set to their public
// summaries. Posts and users are independent entities here; the join is an
// explicit lookup, not a relation preload.
func (a *API) authorsFor(ctx context.Context, posts []models.Post) map[uuid.UUID]authorSummary {
	authors := make(map[uuid.UUID]authorSummary)
	for _, post := range posts {
		if _, ok := authors[post.AuthorID]; ok {
			continue
		}
		user, err := a.store.Users.ByID(ctx, post.AuthorID)
		if err != nil {
			continue
		}
		authors[post.AuthorID] = authorSummary{
			Username:   user.Username,
			AvatarFile: user.AvatarFile,
		}
	}
	return authors
}
