package screening

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/llm"
	"resume-screener/internal/shared/server/middleware"
	"resume-screener/internal/shared/server/respond"
)

const maxUploadSize = 100 << 20 // 10 files of up to 10MB

// Handler exposes batches and analysis runs.
type Handler struct {
	Workspace    *Workspace
	Orchestrator *Orchestrator
}

func NewHandler(ws *Workspace, orch *Orchestrator) *Handler {
	return &Handler{Workspace: ws, Orchestrator: orch}
}

// RegisterRoutes attaches batch routes. analyzeGuards run before the
// analyze action only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, analyzeGuards ...gin.HandlerFunc) {
	rg.POST("/batches", h.create)
	rg.GET("/batches/:id", h.get)
	rg.DELETE("/batches/:id", h.drop)
	rg.POST("/batches/:id/files", h.upload)
	rg.DELETE("/batches/:id/files/:fileId", h.removeFile)

	analyze := append([]gin.HandlerFunc{middleware.RequireRole("admin")}, analyzeGuards...)
	analyze = append(analyze, h.analyze)
	rg.POST("/batches/:id/analyze", analyze...)
}

func (h *Handler) create(c *gin.Context) {
	b := h.Workspace.NewBatch(middleware.UserIDFromContext(c))
	c.Set(middleware.LogBatchIDKey, b.ID)
	respond.JSON(c, http.StatusCreated, b.View())
}

func (h *Handler) get(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	respond.OK(c, b.View())
}

func (h *Handler) drop(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.LogBatchIDKey, id)
	if err := h.Workspace.Drop(id, middleware.UserIDFromContext(c)); err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, http.StatusOK)
}

type uploadResponse struct {
	Added    []File    `json:"added"`
	Rejected []string  `json:"rejected,omitempty"`
	Message  string    `json:"message,omitempty"`
	Batch    BatchView `json:"batch"`
}

func (h *Handler) upload(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "files are required", nil)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "files are required", nil)
		return
	}

	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
			return
		}
		uploads = append(uploads, Upload{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data})
	}
	c.Set(middleware.LogFileCountKey, len(uploads))

	added, rejected, err := h.Workspace.AddFiles(b.ID, b.Owner, uploads)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := uploadResponse{Added: added, Rejected: rejected, Batch: b.View()}
	if len(rejected) > 0 {
		resp.Message = NotPDFMessage
	}
	respond.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) removeFile(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	if err := h.Workspace.RemoveFile(b.ID, b.Owner, c.Param("fileId")); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, b.View())
}

type analyzeRequest struct {
	JobDescription      string `json:"jobDescription"`
	SpecialRequirements string `json:"specialRequirements"`
	CandidateType       string `json:"candidateType"`
	PositionID          string `json:"positionId"`
}

func (h *Handler) analyze(c *gin.Context) {
	b, ok := h.batch(c)
	if !ok {
		return
	}
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	c.Set(middleware.LogFileCountKey, b.Count())

	out, err := h.Orchestrator.Analyze(c.Request.Context(), b, Request{
		JobDescription:      req.JobDescription,
		SpecialRequirements: req.SpecialRequirements,
		CandidateType:       llm.ParseCandidateType(req.CandidateType),
		PositionID:          req.PositionID,
	}, middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) batch(c *gin.Context) (*Batch, bool) {
	id := c.Param("id")
	c.Set(middleware.LogBatchIDKey, id)
	b, err := h.Workspace.Batch(id, middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return b, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrFileNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, ErrBatchBusy):
		respond.Error(c, http.StatusConflict, "batch_busy", err.Error(), nil)
	case errors.Is(err, ErrTooManyFiles), errors.Is(err, ErrJobDescriptionRequired), errors.Is(err, ErrNoFiles):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "分析失败", nil)
	}
}
