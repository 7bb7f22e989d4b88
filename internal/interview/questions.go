package interview

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/talentscout/hiring-assistant/internal/ai"
	"github.com/talentscout/hiring-assistant/internal/candidate"
	"go.uber.org/zap"
)

const (
	minQuestions = 4
	maxQuestions = 5

	techPlaceholder = "{{TECH}}"
)

// Experience bands drive question difficulty.
const (
	BandJunior = "junior (0-2 years)"
	BandMid    = "mid-level (3-5 years)"
	BandSenior = "senior (6+ years)"
)

// QuestionGenerator produces role- and stack-tailored technical questions. It
// asks the completion service first and falls back to deterministic,
// role-matched templates when the service fails or returns unusable output.
type QuestionGenerator struct {
	completer ai.Completer
	company   string
	logger    *zap.Logger
}

func NewQuestionGenerator(completer ai.Completer, company string, log *zap.Logger) *QuestionGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuestionGenerator{completer: completer, company: company, logger: log}
}

// Generate returns between 4 and 5 questions for the profile. It never fails:
// any service problem degrades to the fallback set, which is deterministic
// for identical position, stack and experience input.
func (g *QuestionGenerator) Generate(ctx context.Context, p *candidate.Profile) []string {
	band := ExperienceBand(p.ExperienceYears)

	raw, err := g.completer.Complete(ctx, questionsPrompt(g.company, p, band))
	if err != nil {
		g.logger.Warn("question generation failed, using fallback set",
			zap.String("kind", string(ai.KindOf(err))),
			zap.Error(err),
		)
		return FallbackQuestions(p.DesiredPosition, p.TechStack, band)
	}

	questions := parseQuestionLines(raw)
	if len(questions) < minQuestions {
		g.logger.Warn("unusable question response, using fallback set",
			zap.Int("parsed", len(questions)),
		)
		return FallbackQuestions(p.DesiredPosition, p.TechStack, band)
	}

	if len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}

	g.logger.Info("generated technical questions", zap.Int("count", len(questions)))
	return questions
}

// ExperienceBand classifies the declared years of experience. Unparsable
// input defaults to the mid band.
func ExperienceBand(years string) string {
	value, err := strconv.ParseFloat(strings.TrimSpace(years), 64)
	if err != nil {
		return BandMid
	}

	switch {
	case value <= 2:
		return BandJunior
	case value <= 5:
		return BandMid
	default:
		return BandSenior
	}
}

var questionNumbering = regexp.MustCompile(`^[\d.)Q:\s]+`)

// parseQuestionLines keeps lines that begin with a digit or "Q" and strips
// their numbering. Empty leftovers are discarded.
func parseQuestionLines(text string) []string {
	var questions []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		first := line[0]
		if !(first >= '0' && first <= '9') && first != 'Q' {
			continue
		}

		question := strings.TrimSpace(questionNumbering.ReplaceAllString(line, ""))
		if question != "" {
			questions = append(questions, question)
		}
	}

	return questions
}

// roleCategory pairs position keywords with a question template set. The
// list is ordered and the first match wins; this is a heuristic, not a
// classifier, so mixed titles resolve to whichever category appears first.
type roleCategory struct {
	keywords  []string
	questions []string
}

var roleCategories = []roleCategory{
	{
		keywords: []string{"frontend", "react", "angular", "vue", "ui", "ux"},
		questions: []string{
			"How do you manage state in " + techPlaceholder + " applications?",
			"Explain the difference between controlled and uncontrolled components.",
			"How do you optimize frontend performance and loading times?",
			"Describe your approach to responsive design and cross-browser compatibility.",
			"How do you handle API integration and error handling in frontend applications?",
		},
	},
	{
		keywords: []string{"backend", "api", "server", "microservice"},
		questions: []string{
			"How do you design RESTful APIs using " + techPlaceholder + "?",
			"Explain your approach to database optimization and query performance.",
			"How do you handle authentication and authorization in backend systems?",
			"Describe your experience with caching strategies and when to use them.",
			"How do you ensure scalability and handle high traffic in backend applications?",
		},
	},
	{
		keywords: []string{"full stack", "fullstack", "full-stack"},
		questions: []string{
			"How do you structure a full-stack application using " + techPlaceholder + "?",
			"Explain how you handle data flow between frontend and backend components.",
			"Describe your approach to API design and frontend integration.",
			"How do you manage deployment and version control for full-stack projects?",
			"What's your strategy for debugging issues across the entire application stack?",
		},
	},
	{
		keywords: []string{"data scientist", "machine learning", "ml", "ai"},
		questions: []string{
			"How do you preprocess and clean data using " + techPlaceholder + "?",
			"Explain the difference between supervised and unsupervised learning with examples.",
			"How do you evaluate and validate machine learning models?",
			"Describe your approach to feature engineering and selection.",
			"How do you handle overfitting and ensure model generalization?",
		},
	},
	{
		keywords: []string{"devops", "cloud", "infrastructure", "deployment"},
		questions: []string{
			"How do you automate deployments using " + techPlaceholder + " and CI/CD pipelines?",
			"Explain your approach to infrastructure as code and containerization.",
			"How do you monitor and troubleshoot production systems?",
			"Describe your experience with cloud platforms and scalability strategies.",
			"How do you ensure security and compliance in deployment processes?",
		},
	},
	{
		keywords: []string{"mobile", "ios", "android", "react native", "flutter"},
		questions: []string{
			"How do you optimize mobile app performance using " + techPlaceholder + "?",
			"Explain your approach to handling different screen sizes and orientations.",
			"How do you manage offline functionality and data synchronization?",
			"Describe your strategy for app store deployment and version management.",
			"How do you handle platform-specific features and native integrations?",
		},
	},
	{
		keywords: []string{"qa", "test", "automation"},
		questions: []string{
			"How do you design test cases and automation frameworks using " + techPlaceholder + "?",
			"Explain your approach to API testing and validation.",
			"How do you balance manual and automated testing strategies?",
			"Describe your experience with performance and load testing.",
			"How do you ensure test coverage and quality in continuous integration?",
		},
	},
}

// Generic sets keyed by experience band, used when no role category matches.
var genericQuestions = map[string][]string{
	BandJunior: {
		"Can you explain the basic concepts and syntax of " + techPlaceholder + "?",
		"Describe a simple project you've worked on and the technologies used.",
		"How do you approach learning new technologies and tools?",
		"What debugging techniques do you use when your code doesn't work?",
		"How do you ensure your code is readable and maintainable?",
	},
	BandMid: {
		"Can you explain your experience with " + techPlaceholder + " and its ecosystem?",
		"Describe a challenging technical problem you've solved recently.",
		"How do you approach debugging and troubleshooting complex issues?",
		"What's your preferred development methodology and why?",
		"How do you ensure code quality and collaborate with team members?",
	},
	BandSenior: {
		"How do you architect scalable systems using " + techPlaceholder + "?",
		"Describe your approach to code reviews and mentoring junior developers.",
		"How do you make technical decisions and evaluate trade-offs?",
		"Explain your strategy for handling technical debt and refactoring.",
		"How do you stay current with industry trends and emerging technologies?",
	},
}

// Technologies recognized when extracting the primary technology to
// substitute into fallback templates.
var knownTechnologies = []string{
	"python", "javascript", "java", "c++", "c#", "react", "angular",
	"vue", "node.js", "django", "flask", "spring", "sql", "mongodb",
}

// FallbackQuestions returns the deterministic template set for the first
// matching role category, with the candidate's primary technology
// substituted in. Unmatched positions get a generic set for the band.
func FallbackQuestions(desiredPosition, techStack, band string) []string {
	positionLower := strings.ToLower(desiredPosition)

	templates, ok := genericQuestions[band]
	if !ok {
		templates = genericQuestions[BandMid]
	}

	for _, category := range roleCategories {
		if matchesAny(positionLower, category.keywords) {
			templates = category.questions
			break
		}
	}

	tech := PrimaryTechnology(techStack)
	questions := make([]string, 0, len(templates))
	for _, template := range templates {
		questions = append(questions, strings.ReplaceAll(template, techPlaceholder, tech))
	}

	return questions
}

func matchesAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// PrimaryTechnology picks the first recognized technology in the stack, or
// the first comma-separated token, title-cased. A placeholder is returned
// when nothing usable is found.
func PrimaryTechnology(techStack string) string {
	lower := strings.ToLower(techStack)

	for _, tech := range knownTechnologies {
		if strings.Contains(lower, tech) {
			return titleCase(tech)
		}
	}

	first, _, _ := strings.Cut(techStack, ",")
	if first = strings.TrimSpace(first); first != "" {
		return titleCase(first)
	}

	return "your main technology"
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
