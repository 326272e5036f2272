package analysis

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

// ShapeError reports a model reply that is not a usable Result.
type ShapeError struct {
	Missing []string
	Invalid []string
	Reason  string
}

func (e *ShapeError) Error() string {
	var parts []string
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	return "分析结果格式错误: " + strings.Join(parts, "; ")
}

// Decode validates a model reply and converts it into a Result. Scores are
// rounded and clamped to 0..100 and the hard gate is applied.
func Decode(raw []byte) (Result, error) {
	text := stripFences(string(raw))
	if !gjson.Valid(text) {
		return Result{}, &ShapeError{Reason: "invalid JSON"}
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return Result{}, &ShapeError{Reason: "top level is not an object"}
	}

	c := checker{doc: doc}
	c.object("candidateInfo")
	c.number("matchScore")
	c.number("confidence")
	c.str("summary")
	c.object("analysis")
	c.array("analysis.strengths")
	c.array("analysis.weaknesses")
	c.array("interviewQuestions")
	c.str("recommendation")
	c.boolean("hardRequirementsMet")

	rec := Recommendation(strings.TrimSpace(doc.Get("recommendation").String()))
	if doc.Get("recommendation").Type == gjson.String && !rec.Valid() {
		c.invalid = append(c.invalid, "recommendation")
	}
	if len(c.missing) > 0 || len(c.invalid) > 0 {
		return Result{}, &ShapeError{Missing: c.missing, Invalid: c.invalid}
	}

	info := doc.Get("candidateInfo")
	breakdown := doc.Get("analysis")
	res := Result{
		CandidateInfo: CandidateInfo{
			Name:            info.Get("name").String(),
			University:      info.Get("university").String(),
			GraduationYear:  info.Get("graduationYear").String(),
			Major:           info.Get("major").String(),
			ExperienceYears: info.Get("experienceYears").Float(),
		},
		MatchScore: score(doc.Get("matchScore").Float()),
		Confidence: score(doc.Get("confidence").Float()),
		Summary:    doc.Get("summary").String(),
		Analysis: Breakdown{
			Strengths:         stringList(breakdown.Get("strengths")),
			Weaknesses:        stringList(breakdown.Get("weaknesses")),
			Risks:             breakdown.Get("risks").String(),
			Stability:         breakdown.Get("stability").String(),
			CareerProgression: breakdown.Get("careerProgression").String(),
			SkillRecency:      breakdown.Get("skillRecency").String(),
		},
		InterviewQuestions:   stringList(doc.Get("interviewQuestions")),
		Recommendation:       rec,
		HardRequirementsMet:  doc.Get("hardRequirementsMet").Bool(),
		HardRequirementsNote: doc.Get("hardRequirementsNote").String(),
	}
	EnforceHardGate(&res)
	return res, nil
}

type checker struct {
	doc     gjson.Result
	missing []string
	invalid []string
}

func (c *checker) expect(path string, ok func(gjson.Result) bool) {
	v := c.doc.Get(path)
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		c.missing = append(c.missing, path)
	case !ok(v):
		c.invalid = append(c.invalid, path)
	}
}

func (c *checker) object(path string) {
	c.expect(path, func(v gjson.Result) bool { return v.IsObject() })
}

func (c *checker) array(path string) {
	c.expect(path, func(v gjson.Result) bool { return v.IsArray() })
}

func (c *checker) number(path string) {
	c.expect(path, func(v gjson.Result) bool { return v.Type == gjson.Number })
}

func (c *checker) str(path string) {
	c.expect(path, func(v gjson.Result) bool { return v.Type == gjson.String })
}

func (c *checker) boolean(path string) {
	c.expect(path, func(v gjson.Result) bool { return v.IsBool() })
}

func score(v float64) int {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

func stringList(v gjson.Result) []string {
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
