package resumes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrack-backend/internal/shared/server/middleware"
	"jobtrack-backend/internal/shared/server/respond"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// Handler wires HTTP handlers to the resumes service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file field is required", nil)
		return
	}
	defer file.Close()

	resume, err := h.Svc.Upload(c.Request.Context(), userID, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload resume", nil)
		}
		return
	}

	c.Set("resumeId", resume.ID)
	respond.Created(c, resume)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")
	if resumeID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume id is required", nil)
		return
	}

	resume, err := h.Svc.Get(c.Request.Context(), userID, resumeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch resume", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, resume)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	items, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}

	respond.JSON(c, http.StatusOK, items)
}
