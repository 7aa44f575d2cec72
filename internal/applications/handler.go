package applications

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrack-backend/internal/shared/server/middleware"
	"jobtrack-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the applications service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches application routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications", h.create)
	rg.GET("/applications", h.list)
	rg.GET("/applications/:id", h.get)
	rg.PATCH("/applications/:id/status", h.updateStatus)
	rg.PATCH("/applications/:id/notes", h.updateNotes)
	rg.DELETE("/applications/:id", h.remove)
}

type createRequest struct {
	CompanyName    string `json:"companyName" binding:"required"`
	JobTitle       string `json:"jobTitle" binding:"required"`
	JobDescription string `json:"jobDescription"`
	JobURL         string `json:"jobUrl"`
	Location       string `json:"location"`
	Status         string `json:"status"`
	Notes          string `json:"notes"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "companyName and jobTitle are required", nil)
		return
	}

	app, err := h.Svc.Create(c.Request.Context(), userID, CreateInput{
		CompanyName:    req.CompanyName,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		JobURL:         req.JobURL,
		Location:       req.Location,
		Status:         Status(req.Status),
		Notes:          req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidStatus):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create application", nil)
		}
		return
	}

	c.Set("applicationId", app.ID)
	respond.Created(c, app)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	items, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list applications", nil)
		return
	}

	respond.JSON(c, http.StatusOK, items)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	app, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch application", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, app)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "status is required", nil)
		return
	}

	app, prev, err := h.Svc.UpdateStatus(c.Request.Context(), userID, c.Param("id"), Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidTransition):
			respond.Error(c, http.StatusUnprocessableEntity, "invalid_transition", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update application", nil)
		}
		return
	}

	c.Set("applicationId", app.ID)
	c.Set("statusTransition", string(prev)+"->"+string(app.Status))
	respond.JSON(c, http.StatusOK, app)
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) updateNotes(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	app, err := h.Svc.UpdateNotes(c.Request.Context(), userID, c.Param("id"), req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update application", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, app)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete application", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
