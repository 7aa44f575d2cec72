package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobtrack-backend/internal/resumes"
	"jobtrack-backend/internal/shared/server/middleware"
	"jobtrack-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses/score", h.score)
	rg.POST("/analyses/match", h.match)
	rg.POST("/analyses/optimize", h.optimize)
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/rate-limit", h.rateLimit)
	rg.GET("/analyses/:id", h.get)
	rg.GET("/resumes/:id/analyses", h.listForResume)
}

type scoreRequest struct {
	ResumeID string `json:"resumeId" binding:"required"`
}

func (h *Handler) score(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resumeId is required", nil)
		return
	}

	writeResult(c, h.Svc.AnalyzeResume(c.Request.Context(), userID, req.ResumeID))
}

type matchRequest struct {
	ResumeID      string `json:"resumeId" binding:"required"`
	ApplicationID string `json:"applicationId"`

	// Ad hoc fields, used when no applicationId is given.
	JobDescription string `json:"jobDescription"`
	JobTitle       string `json:"jobTitle"`
	CompanyName    string `json:"companyName"`
}

func (h *Handler) match(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resumeId is required", nil)
		return
	}

	var result Result
	if req.ApplicationID != "" {
		result = h.Svc.MatchJob(c.Request.Context(), userID, req.ResumeID, req.ApplicationID)
	} else {
		result = h.Svc.MatchJobAdHoc(c.Request.Context(), userID, req.ResumeID, AdHocJob{
			JobDescription: req.JobDescription,
			JobTitle:       req.JobTitle,
			CompanyName:    req.CompanyName,
		})
	}
	writeResult(c, result)
}

type optimizeRequest struct {
	ResumeID       string `json:"resumeId" binding:"required"`
	TargetIndustry string `json:"targetIndustry"`
	TargetRole     string `json:"targetRole"`
}

func (h *Handler) optimize(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resumeId is required", nil)
		return
	}

	writeResult(c, h.Svc.OptimizeResume(c.Request.Context(), userID, req.ResumeID, OptimizeTarget{
		Industry: req.TargetIndustry,
		Role:     req.TargetRole,
	}))
}

func (h *Handler) rateLimit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	status, err := h.Svc.RateLimitStatus(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to check analysis limit", nil)
		return
	}
	respond.JSON(c, http.StatusOK, status)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}
	respond.JSON(c, http.StatusOK, items)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	record, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, record)
}

func (h *Handler) listForResume(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	items, err := h.Svc.ListForResume(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, items)
}

func writeResult(c *gin.Context, result Result) {
	if !result.OK {
		var details interface{}
		if result.RateLimit != nil {
			details = gin.H{"rateLimit": result.RateLimit}
		}
		respond.Error(c, result.HTTPStatus(), result.Code, result.Message, details)
		return
	}
	if result.Record != nil {
		// Picked up by middleware.Logging for the request log line.
		c.Set("analysisId", result.Record.ID)
		c.Set("resumeId", result.Record.ResumeID)
	}
	respond.JSON(c, http.StatusOK, result)
}
