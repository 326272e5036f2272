package positions

// Position is an open role that screening batches can be run against.
type Position struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	JobDescription string `json:"jobDescription,omitempty"`
	CreatedAt      int64  `json:"createdAt"`
}
