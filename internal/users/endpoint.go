package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/shared/server/respond"
)

// Endpoint serves the raw /api/users persistence calls. A nil Repo answers
// as an unconfigured store.
type Endpoint struct {
	Repo Repo
}

func (e *Endpoint) Serve(c *gin.Context) {
	if e.Repo == nil {
		respond.Degraded(c, http.MethodPost, http.MethodDelete)
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
		var user User
		if err := c.ShouldBindJSON(&user); err != nil {
			respond.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		if err := e.Repo.Insert(ctx, user); err != nil {
			respond.Failure(c, http.StatusInternalServerError, err.Error())
			return
		}
		respond.Success(c, http.StatusCreated)
	case http.MethodDelete:
		id := c.Query("id")
		if id == AdminID {
			respond.Failure(c, http.StatusForbidden, ErrAdminUndeletable.Error())
			return
		}
		if err := e.Repo.Delete(ctx, id); err != nil {
			respond.Failure(c, http.StatusInternalServerError, err.Error())
			return
		}
		respond.Success(c, http.StatusOK)
	default:
		respond.MethodNotAllowed(c)
	}
}
