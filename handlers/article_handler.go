package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cavemindAPI/services"
)

type ArticleHandler struct {
	articleService *services.ArticleService
	userService    *services.UserService
}

func NewArticleHandler(articleService *services.ArticleService, userService *services.UserService) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		userService:    userService,
	}
}

func (h *ArticleHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	slug := mux.Vars(r)["slug"]
	result, err := h.articleService.Save(ctx, userID, slug)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *ArticleHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	articles, err := h.articleService.ListSaved(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, articles)
}

func (h *ArticleHandler) Unsave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := resolveUserID(ctx, w, h.userService)
	if !ok {
		return
	}

	slug := mux.Vars(r)["slug"]
	if err := h.articleService.Unsave(ctx, userID, slug); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Article unsaved"})
}
