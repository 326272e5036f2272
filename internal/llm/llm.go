package llm

import "strings"

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CandidateType selects the evaluation rubric.
type CandidateType string

const (
	Intern      CandidateType = "intern"
	Experienced CandidateType = "experienced"
)

// ParseCandidateType maps free-form input to a rubric. Anything unrecognized
// is treated as an experienced hire.
func ParseCandidateType(raw string) CandidateType {
	if CandidateType(strings.ToLower(strings.TrimSpace(raw))) == Intern {
		return Intern
	}
	return Experienced
}

// PromptInput carries everything needed to evaluate one resume.
type PromptInput struct {
	JobDescription      string
	SpecialRequirements string
	CandidateType       CandidateType
	ResumeText          string
}
