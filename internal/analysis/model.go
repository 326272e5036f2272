package analysis

// Recommendation is the hiring verdict returned for a candidate.
type Recommendation string

const (
	StronglyRecommend Recommendation = "强烈推荐"
	Recommend         Recommendation = "推荐"
	Undecided         Recommendation = "待定"
	NotRecommended    Recommendation = "不推荐"
)

// Valid reports whether r is one of the four verdicts.
func (r Recommendation) Valid() bool {
	switch r {
	case StronglyRecommend, Recommend, Undecided, NotRecommended:
		return true
	}
	return false
}

// HardGateScoreCap is the highest matchScore allowed when hard requirements fail.
const HardGateScoreCap = 59

// Result is the structured evaluation of one resume.
type Result struct {
	CandidateInfo        CandidateInfo  `json:"candidateInfo"`
	MatchScore           int            `json:"matchScore"`
	Confidence           int            `json:"confidence"`
	Summary              string         `json:"summary"`
	Analysis             Breakdown      `json:"analysis"`
	InterviewQuestions   []string       `json:"interviewQuestions"`
	Recommendation       Recommendation `json:"recommendation"`
	HardRequirementsMet  bool           `json:"hardRequirementsMet"`
	HardRequirementsNote string         `json:"hardRequirementsNote,omitempty"`
}

type CandidateInfo struct {
	Name            string  `json:"name"`
	University      string  `json:"university"`
	GraduationYear  string  `json:"graduationYear"`
	Major           string  `json:"major"`
	ExperienceYears float64 `json:"experienceYears"`
}

type Breakdown struct {
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	Risks             string   `json:"risks"`
	Stability         string   `json:"stability"`
	CareerProgression string   `json:"careerProgression"`
	SkillRecency      string   `json:"skillRecency"`
}

// EnforceHardGate caps the score and softens a positive verdict when the
// candidate failed a hard requirement. It reports whether anything changed.
func EnforceHardGate(r *Result) bool {
	if r == nil || r.HardRequirementsMet {
		return false
	}
	changed := false
	if r.MatchScore > HardGateScoreCap {
		r.MatchScore = HardGateScoreCap
		changed = true
	}
	if r.Recommendation == StronglyRecommend || r.Recommendation == Recommend {
		r.Recommendation = Undecided
		changed = true
	}
	return changed
}
