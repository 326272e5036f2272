package screening

import "resume-screener/internal/analysis"

// MaxFiles bounds the number of resumes held by one batch.
const MaxFiles = 10

// Status is the lifecycle of one uploaded resume.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// File is one resume in a batch. Data never leaves the process.
type File struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Data   []byte           `json:"-"`
	Status Status           `json:"status"`
	Result *analysis.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Upload is a candidate file offered to a batch.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}
