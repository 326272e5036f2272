package history

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/shared/server/respond"
)

// Endpoint serves the raw /api/history persistence calls. A nil Repo
// answers as an unconfigured store.
type Endpoint struct {
	Repo Repo
}

type assignRequest struct {
	ID         string `json:"id"`
	AssignedTo string `json:"assignedTo"`
}

func (e *Endpoint) Serve(c *gin.Context) {
	if e.Repo == nil {
		respond.Degraded(c, http.MethodPost, http.MethodPut, http.MethodDelete)
		return
	}

	ctx := c.Request.Context()
	switch c.Request.Method {
	case http.MethodGet:
		list, err := e.Repo.List(ctx)
		if err != nil {
			respond.Failure(c, http.StatusInternalServerError, err.Error())
			return
		}
		respond.OK(c, list)
	case http.MethodPost:
		var rec Record
		if err := c.ShouldBindJSON(&rec); err != nil {
			respond.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		if err := e.Repo.Insert(ctx, rec); err != nil {
			respond.Failure(c, http.StatusInternalServerError, err.Error())
			return
		}
		respond.Success(c, http.StatusCreated)
	case http.MethodPut:
		var req assignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		if err := e.Repo.Assign(ctx, req.ID, req.AssignedTo); err != nil {
			respond.Failure(c, http.StatusInternalServerError, err.Error())
			return
		}
		respond.Success(c, http.StatusOK)
	case http.MethodDelete:
		if err := e.Repo.Delete(ctx, c.Query("id")); err != nil {
			respond.Failure(c, http.StatusInternalServerError, err.Error())
			return
		}
		respond.Success(c, http.StatusOK)
	default:
		respond.MethodNotAllowed(c)
	}
}
