package history

import "resume-screener/internal/analysis"

// MaxRecords bounds the locally kept list and the remote listing.
const MaxRecords = 50

// UnassignedPosition labels a batch run without a selected position.
const UnassignedPosition = "未指定岗位"

// Record is one completed screening batch.
type Record struct {
	ID                  string  `json:"id"`
	Timestamp           int64   `json:"timestamp"`
	PositionName        string  `json:"positionName"`
	JobDescription      string  `json:"jobDescription"`
	SpecialRequirements string  `json:"specialRequirements"`
	Results             []Entry `json:"results"`
	AssignedTo          string  `json:"assignedTo,omitempty"`
	CreatedBy           string  `json:"createdBy,omitempty"`
}

// Entry is the evaluation of one resume file.
type Entry struct {
	FileName string          `json:"fileName"`
	Result   analysis.Result `json:"result"`
}

// Viewer is the user a listing is filtered for.
type Viewer struct {
	ID    string
	Admin bool
}

// CanSee reports whether v may read r. Admins see everything; members see
// records assigned to them.
func (v Viewer) CanSee(r Record) bool {
	return v.Admin || (v.ID != "" && r.AssignedTo == v.ID)
}
