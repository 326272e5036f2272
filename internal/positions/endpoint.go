package positions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/shared/server/respond"
)

// Endpoint serves the raw /api/positions persistence calls. A nil Repo
// answers as an unconfigured store.
type Endpoint struct {
	Repo Repo
}

func (e *Endpoint) Serve(c *gin.Context) {
	if e.Repo == nil {
		respond.Degraded(c, http.MethodPost, http.MethodPut, http.MethodDelete)
		return
	}

	ctx := c.Request.Context()
	var err error
	switch c.Request.Method {
	case http.MethodGet:
		var list []Position
		if list, err = e.Repo.List(ctx); err == nil {
			respond.OK(c, list)
			return
		}
	case http.MethodPost, http.MethodPut:
		var p Position
		if err := c.ShouldBindJSON(&p); err != nil {
			respond.Failure(c, http.StatusBadRequest, err.Error())
			return
		}
		if c.Request.Method == http.MethodPost {
			if err = e.Repo.Insert(ctx, p); err == nil {
				respond.Success(c, http.StatusCreated)
				return
			}
		} else if err = e.Repo.Update(ctx, p); err == nil {
			respond.Success(c, http.StatusOK)
			return
		}
	case http.MethodDelete:
		if err = e.Repo.Delete(ctx, c.Query("id")); err == nil {
			respond.Success(c, http.StatusOK)
			return
		}
	default:
		respond.MethodNotAllowed(c)
		return
	}
	respond.Failure(c, http.StatusInternalServerError, err.Error())
}
