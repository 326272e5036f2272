package maintenance

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/llm/deepseek"
	"resume-screener/internal/shared/server/respond"
)

// Completer forwards a raw chat completion.
type Completer interface {
	Complete(ctx context.Context, req deepseek.CompletionRequest) ([]byte, error)
}

// Handler serves the operational /api endpoints.
type Handler struct {
	// Repairer is nil when no database is configured.
	Repairer    *DateRepairer
	DatabaseURL string
	Env         string
	Proxy       Completer
	Now         func() time.Time
}

// FixDates answers GET and POST /api/fix-dates.
func (h *Handler) FixDates(c *gin.Context) {
	if h.Repairer == nil {
		respond.Failure(c, http.StatusInternalServerError, "Database not configured")
		return
	}
	report, err := h.Repairer.Repair(c.Request.Context())
	if err != nil {
		respond.Failure(c, http.StatusInternalServerError, err.Error())
		return
	}
	respond.OK(c, report)
}

type diagnostics struct {
	HasDatabase bool   `json:"hasDatabase"`
	DBURLLength int    `json:"dbUrlLength"`
	Env         string `json:"env"`
	Timestamp   int64  `json:"timestamp"`
}

// Diagnostics answers /api/test without revealing the connection string.
func (h *Handler) Diagnostics(c *gin.Context) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	respond.OK(c, diagnostics{
		HasDatabase: h.DatabaseURL != "",
		DBURLLength: len(h.DatabaseURL),
		Env:         h.Env,
		Timestamp:   now().UnixMilli(),
	})
}

// AnalyzeProxy relays POST /api/analyze to the model and returns the
// provider envelope unchanged.
func (h *Handler) AnalyzeProxy(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		respond.MethodNotAllowed(c)
		return
	}
	var req deepseek.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Failure(c, http.StatusInternalServerError, err.Error())
		return
	}
	raw, err := h.Proxy.Complete(c.Request.Context(), req)
	if err != nil {
		respond.Failure(c, http.StatusInternalServerError, proxyMessage(err))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func proxyMessage(err error) string {
	var gerr *deepseek.GatewayError
	if errors.As(err, &gerr) && gerr.Detail != "" {
		return gerr.Detail
	}
	return err.Error()
}
