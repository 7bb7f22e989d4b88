package interview

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/talentscout/hiring-assistant/internal/candidate"
	"github.com/talentscout/hiring-assistant/internal/logger"
)

//go:embed prompts/system.md
var systemPromptTemplate string

func systemPrompt(company string) string {
	template := systemPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "You are a hiring assistant for {{COMPANY}}. Conduct an initial candidate screening."
	}
	return strings.ReplaceAll(template, "{{COMPANY}}", company)
}

func greetingPrompt(company string) string {
	return fmt.Sprintf(`%s

Task: Generate a warm, professional greeting for a candidate starting their interview with %s.
Explain that you're an AI assistant that will help with initial screening by collecting their information
and asking relevant technical questions. Keep it concise and encouraging.`, systemPrompt(company), company)
}

func questionsPrompt(company string, p *candidate.Profile, band string) string {
	return fmt.Sprintf(`%s

Generate 4-5 technical questions specifically tailored for this candidate profile:

CANDIDATE PROFILE:
- Desired Position: %s
- Technology Stack: %s
- Experience Level: %s

Instructions:
- Tailor questions specifically to their desired position
- Match the difficulty to their experience level
- Focus on technologies they specifically mentioned in their tech stack
- Ask practical scenario-based questions rather than just definitions
- Include best practices, problem-solving scenarios, and debugging approaches

Return exactly 4-5 questions, numbered 1-5, with no additional text or formatting.`,
		systemPrompt(company), p.DesiredPosition, p.TechStack, band)
}

func acknowledgmentPrompt(company, answer, nextQuestion string, number, total int) string {
	return fmt.Sprintf(`%s

The candidate just answered a technical question: %s

Provide a brief, positive acknowledgment of their answer (1-2 sentences), then ask the next question:

Next Question (%d of %d): %s

Keep the acknowledgment professional and encouraging.`,
		systemPrompt(company), logger.TruncateForLog(answer, 100), number, total, nextQuestion)
}

func completionPrompt(company, lastAnswer string, total int) string {
	return fmt.Sprintf(`%s

The candidate has just completed all %d technical questions. Their final answer was: %s

Provide a warm acknowledgment that they've completed all the technical questions and ask if they
have anything else to add about their technical background, or if they're ready to conclude the
interview. Keep it professional.`,
		systemPrompt(company), total, logger.TruncateForLog(lastAnswer, 100))
}

func closingPrompt(company string, p *candidate.Profile, keyTech string) string {
	return fmt.Sprintf(`%s

Create a professional, warm closing message for a candidate interview. Use this actual candidate information:
- Name: %s
- Tech Stack: %s
- Experience: %s years
- Desired Position: %s
- Location: %s
- Key Technologies: %s

The message should:
1. Thank them by name
2. Mention specific technologies/skills they discussed
3. Reference their desired position
4. Provide next steps (recruiter contact in 2-3 business days)
5. Sound professional but warm

Keep it concise and personal.`,
		systemPrompt(company), p.FullName, p.TechStack, p.ExperienceYears,
		p.DesiredPosition, p.Location, keyTech)
}

func fallbackPrompt(company, stage, pendingField, input string) string {
	return fmt.Sprintf(`%s

The user provided input that doesn't clearly answer the current question or seems off-topic.
Provide a helpful response that:
- Acknowledges their input politely
- Redirects them back to the current question/stage
- Offers clarification if they seem confused
- Maintains the professional tone

Context: Current stage: %s, Pending field: %s, User input: %s`,
		systemPrompt(company), stage, pendingField, logger.TruncateForLog(input, 200))
}
