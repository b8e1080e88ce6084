// Package handler exposes the search API over HTTP. It owns input
// sanitization: attribute strings are cleaned here so the core can assume
// already-sanitized input.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dossier/internal/platform/middleware"
	"dossier/internal/search/models"
	"dossier/internal/search/service"
)

// Service defines the interface for search operations.
type Service interface {
	Search(ctx context.Context, q models.Query) ([]models.Result, []models.SourceStatus, error)
}

// Handler handles search-related endpoints.
type Handler struct {
	logger       *slog.Logger
	search       Service
	jwtValidator middleware.JWTValidator
}

// New creates a search Handler. A nil jwtValidator leaves the endpoint open;
// set one to require bearer tokens.
func New(search Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		search:       search,
		jwtValidator: jwtValidator,
	}
}

// Register registers the search routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	searchRouter := chi.NewRouter()
	searchRouter.Use(middleware.Recovery(h.logger))
	searchRouter.Use(middleware.RequestID)
	searchRouter.Use(middleware.ClientMetadata)
	if h.jwtValidator != nil {
		searchRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	}
	searchRouter.Post("/api/v1/search", h.handleSearch)

	r.Mount("/", searchRouter)
}

type searchResponse struct {
	Results []models.Result       `json:"results"`
	Sources []models.SourceStatus `json:"sources"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var q models.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		h.logger.WarnContext(ctx, "invalid search request",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	sanitize(&q)

	results, sources, err := h.search.Search(ctx, q)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "empty_query", "at least one query attribute is required")
			return
		}
		h.logger.ErrorContext(ctx, "search failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "search failed")
		return
	}

	resp := searchResponse{Results: results, Sources: sources}
	if resp.Results == nil {
		resp.Results = []models.Result{}
	}
	if resp.Sources == nil {
		resp.Sources = []models.SourceStatus{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.ErrorContext(ctx, "failed to write search response",
			"request_id", requestID,
			"error", err.Error(),
		)
	}
}

func writeError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errCode,
		"error_description": errDesc,
	})
}
