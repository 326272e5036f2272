package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/intern.txt
	internTemplate string
	//go:embed prompts/experienced.txt
	experiencedTemplate string
)

const (
	internSystemPrompt      = "你是一位拥有10年经验的资深校招专家和人才发展顾问，擅长识别应届生/实习生的潜力和成长性。你必须客观、严谨，重点评估学习能力和实践经验，而非工作年限。输出必须为中文，并以JSON格式返回。"
	experiencedSystemPrompt = "你是一位拥有10年经验的资深猎头和技术面试官，擅长深度分析候选人简历，识别真实能力和潜在风险。你必须客观、严谨，既不过度包装也不过分苛刻。输出必须为中文，并以JSON格式返回。"

	hardGateWithRequirements = "- 首先检查候选人是否满足【特殊要求】中的所有硬性条件\n" +
		"   - 若不满足任何一项，matchScore自动封顶59分，推荐等级为\"不推荐\"或\"待定\"\n" +
		"   - 在summary开头注明：\"⚠️ 硬性门槛不符：[具体原因]\""
	internHardGateDefault      = "- 检查是否有明显的硬性不符（如专业不对口、学历不符等）"
	experiencedHardGateDefault = "- 检查是否有明显的硬性不符（如学历造假、经验严重不足等）"
)

// BuildConversation renders the system and user messages for one resume.
func BuildConversation(in PromptInput) []Message {
	system, tpl, hardGate := experiencedSystemPrompt, experiencedTemplate, experiencedHardGateDefault
	if in.CandidateType == Intern {
		system, tpl, hardGate = internSystemPrompt, internTemplate, internHardGateDefault
	}

	special := ""
	if in.SpecialRequirements != "" {
		special = "\n【特殊要求（硬性门槛）】:\n" + in.SpecialRequirements +
			"\n注意：这些是硬性准入条件，不满足则matchScore必须封顶59分，推荐等级降至\"不推荐\"或\"待定\"。\n"
		hardGate = hardGateWithRequirements
	}

	// Single pass, so placeholders inside the resume text stay literal.
	user := strings.NewReplacer(
		"{{JOB_DESCRIPTION}}", in.JobDescription,
		"{{SPECIAL_REQUIREMENTS}}", special,
		"{{RESUME_TEXT}}", in.ResumeText,
		"{{HARD_GATE_CHECK}}", hardGate,
	).Replace(strings.TrimRight(tpl, "\n"))

	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}
