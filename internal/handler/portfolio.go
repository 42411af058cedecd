package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/craftfolio/craftfolio/internal/auth"
	"github.com/craftfolio/craftfolio/internal/handler/dto"
	"github.com/craftfolio/craftfolio/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio operations.
// Every route here sits behind the session middleware.
type PortfolioHandler struct {
	svc    *service.PortfolioService
	logger *slog.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(svc *service.PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/portfolio.
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	var req dto.PortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.svc.Create(r.Context(), userID, req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("portfolio_created",
		"portfolio_id", p.ID,
		"user_id", userID,
		"template_id", p.TemplateID,
	)

	writeJSON(w, http.StatusCreated, p)
}

// Save handles POST /api/portfolio/save.
// With an id in the body it overwrites that document after an ownership
// check; without one it creates a new document.
func (h *PortfolioHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	var req dto.PortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.svc.Save(r.Context(), userID, req.ID, req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("portfolio_saved",
		"portfolio_id", p.ID,
		"user_id", userID,
	)

	writeJSON(w, http.StatusOK, p)
}

// GetMine handles GET /api/portfolio/user.
// Responds with the latest document, or null when the user has none.
func (h *PortfolioHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	p, err := h.svc.GetByOwner(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// ListTemplates handles GET /api/portfolio/templates/user.
func (h *PortfolioHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	summaries, err := h.svc.ListTemplates(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// Get handles GET /api/portfolio/{id}.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	p, err := h.svc.GetByID(r.Context(), id, userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// ListByOwner handles GET /api/portfolio/user/{userId}.
func (h *PortfolioHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())
	ownerID := chi.URLParam(r, "userId")

	portfolios, err := h.svc.ListByOwner(r.Context(), ownerID, userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, portfolios)
}

// Update handles PUT /api/portfolio/{id}.
func (h *PortfolioHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.UpdatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.svc.Update(r.Context(), id, userID, req.ToPatch())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("portfolio_updated",
		"portfolio_id", p.ID,
		"user_id", userID,
	)

	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/portfolio/{id}.
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id, userID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("portfolio_deleted",
		"portfolio_id", id,
		"user_id", userID,
	)

	writeMessage(w, http.StatusOK, "Portfolio deleted successfully")
}

// handleServiceError maps service errors to HTTP responses.
func (h *PortfolioHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPortfolioID):
		writeMessage(w, http.StatusBadRequest, "Invalid portfolio ID format")
	case errors.Is(err, service.ErrMissingTemplateID):
		writeMessage(w, http.StatusBadRequest, "Template ID is required")
	case errors.Is(err, service.ErrPortfolioNotFound):
		writeMessage(w, http.StatusNotFound, "Portfolio not found")
	case errors.Is(err, service.ErrNotOwner):
		writeMessage(w, http.StatusForbidden, "Unauthorized access")
	default:
		h.logger.Error("internal_error",
			"error", err,
			"path", r.URL.Path,
		)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
