package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-screener/internal/shared/auth"
	"resume-screener/internal/shared/server/middleware"
	"resume-screener/internal/shared/server/respond"
	"resume-screener/internal/shared/telemetry"
)

type Handler struct {
	Svc      *Service
	Sessions *SessionRegistry
	Issuer   *auth.Issuer
}

func NewHandler(svc *Service, sessions *SessionRegistry, issuer *auth.Issuer) *Handler {
	return &Handler{Svc: svc, Sessions: sessions, Issuer: issuer}
}

// RegisterPublic attaches routes that do not need a session.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.login)
}

// RegisterRoutes attaches session-protected routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/logout", h.logout)
	rg.GET("/me", h.me)

	admin := rg.Group("", middleware.RequireRole(string(RoleAdmin)))
	admin.GET("/users", h.list)
	admin.POST("/users", h.create)
	admin.DELETE("/users/:id", h.delete)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Profile   `json:"user"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	ctx := c.Request.Context()
	user, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", authErr.Message, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load users", nil)
		return
	}

	sessionID := uuid.NewString()
	token, claims, err := h.Issuer.Issue(user.ID, user.Username, string(user.Role), sessionID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue session", nil)
		return
	}
	expiresAt := claims.ExpiresAt.Time
	if err := h.Sessions.Register(ctx, sessionID, user, expiresAt); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store session", nil)
		return
	}
	telemetry.Info("auth.login", telemetry.Fields{"user_id": user.ID, "role": user.Role})
	respond.OK(c, loginResponse{Token: token, ExpiresAt: expiresAt, User: user.Profile()})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.Sessions.Revoke(c.Request.Context(), middleware.SessionIDFromContext(c)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to end session", nil)
		return
	}
	respond.Success(c, http.StatusOK)
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.OK(c, user.Profile())
}

func (h *Handler) list(c *gin.Context) {
	all, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load users", nil)
		return
	}
	out := make([]Profile, 0, len(all))
	for _, u := range all {
		out = append(out, u.Profile())
	}
	respond.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var req NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	user, err := h.Svc.Add(c.Request.Context(), req)
	switch {
	case err == nil:
		respond.JSON(c, http.StatusCreated, user.Profile())
	case errors.Is(err, ErrCredentialsRequired):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrUsernameTaken):
		respond.Error(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "创建用户失败，请重试", nil)
	}
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()
	err := h.Svc.Delete(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, ErrAdminUndeletable):
		respond.Error(c, http.StatusForbidden, "forbidden", err.Error(), nil)
		return
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
		return
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "删除用户失败，请重试", nil)
		return
	}
	if err := h.Sessions.RevokeUser(ctx, id); err != nil {
		telemetry.Warn("auth.revoke_failed", telemetry.Fields{"user_id": id, "err": err})
	}
	respond.Success(c, http.StatusOK)
}
