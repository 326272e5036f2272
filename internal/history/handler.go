package history

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/shared/server/middleware"
	"resume-screener/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.list)
	rg.GET("/history/:id", h.get)

	admin := rg.Group("", middleware.RequireRole("admin"))
	admin.PUT("/history/:id/transfer", h.transfer)
	admin.DELETE("/history/:id", h.delete)
}

func viewerFrom(c *gin.Context) Viewer {
	return Viewer{ID: middleware.UserIDFromContext(c), Admin: middleware.RoleFromContext(c) == "admin"}
}

func (h *Handler) list(c *gin.Context) {
	records, err := h.Svc.Visible(c.Request.Context(), viewerFrom(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load history", nil)
		return
	}
	respond.OK(c, records)
}

func (h *Handler) get(c *gin.Context) {
	rec, err := h.Svc.Get(c.Request.Context(), viewerFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load history")
		return
	}
	respond.OK(c, rec)
}

type transferRequest struct {
	AssignedTo string `json:"assignedTo"`
}

func (h *Handler) transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	rec, err := h.Svc.Transfer(c.Request.Context(), c.Param("id"), req.AssignedTo)
	if err != nil {
		writeError(c, err, "流转失败，请重试")
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "删除失败，请重试")
		return
	}
	respond.Success(c, http.StatusOK)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrTargetRequired), errors.Is(err, ErrUnknownTarget):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
