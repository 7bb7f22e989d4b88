package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/talentscout/hiring-assistant/internal/ai"
	"github.com/talentscout/hiring-assistant/internal/candidate"
	"github.com/talentscout/hiring-assistant/internal/logger"
	"github.com/talentscout/hiring-assistant/internal/store"
	"go.uber.org/zap"
)

// Stage is one of the four discrete phases of an interview conversation.
type Stage string

const (
	StageGreeting      Stage = "greeting"
	StageInfoGathering Stage = "info_gathering"
	StageTechQuestions Stage = "tech_questions"
	StageCompleted     Stage = "completed"
)

// Exit keywords terminate the conversation from any stage. Matching is a
// case-insensitive substring check.
var exitKeywords = []string{
	"bye", "goodbye", "exit", "quit", "end", "stop",
	"thanks", "thank you", "done", "finish",
}

// Strings that mark a completion response as unusable for candidate-facing
// text (leftover template placeholders, refusals).
var suspectMarkers = []string{"[", "]", "i cannot", "i'm unable", "as an ai"}

const defaultCompany = "TalentScout"

// Options configures a new Engine. Completer and Store are required;
// everything else has defaults.
type Options struct {
	Completer ai.Completer
	Store     store.Store
	Logger    *zap.Logger
	Company   string

	// ConfigCheck reports configuration validity for diagnostics.
	ConfigCheck func() error
}

// Engine is the per-session conversation state machine. One engine owns one
// candidate profile for the lifetime of one interview; it is not safe for
// concurrent use across turns of the same session.
type Engine struct {
	completer   ai.Completer
	generator   *QuestionGenerator
	store       store.Store
	logger      *zap.Logger
	company     string
	configCheck func() error

	profile       *candidate.Profile
	stage         Stage
	pending       Field
	hasPending    bool
	questionIndex int
	turns         int
	lastAIError   string
	persisted     bool
}

// NewEngine creates an engine at the greeting stage with a fresh profile.
func NewEngine(opts Options) *Engine {
	company := strings.TrimSpace(opts.Company)
	if company == "" {
		company = defaultCompany
	}

	completer := opts.Completer
	if completer == nil {
		completer = &ai.Disabled{}
	}

	profile := candidate.New()
	log := logger.WithFields(opts.Logger, zap.String("session_id", profile.SessionID))

	return &Engine{
		completer:   completer,
		generator:   NewQuestionGenerator(completer, company, log),
		store:       opts.Store,
		logger:      log,
		company:     company,
		configCheck: opts.ConfigCheck,
		profile:     profile,
		stage:       StageGreeting,
	}
}

// Stage returns the current conversation stage.
func (e *Engine) Stage() Stage {
	return e.stage
}

// SessionID returns the identity of the profile owned by this engine.
func (e *Engine) SessionID() string {
	return e.profile.SessionID
}

// Greeting produces the welcome message and moves the conversation into
// info gathering. A static greeting is used when the completion service is
// unavailable.
func (e *Engine) Greeting(ctx context.Context) string {
	e.stage = StageInfoGathering
	e.pending = FieldFullName
	e.hasPending = true

	greeting, err := e.completer.Complete(ctx, greetingPrompt(e.company))
	if err != nil {
		e.recordAIError(err)
		greeting = fmt.Sprintf(`Hello! Welcome to %s. I'm your AI hiring assistant, and I'll help you through the initial screening process.

I'll collect some basic information about you and then ask relevant technical questions based on your experience and skills.`, e.company)
	}

	return greeting + "\n\nLet's start with your full name. What should I call you?"
}

// ProcessMessage handles one user turn and returns the next message to show.
// A turn never fails: an unexpected panic rolls the engine back to its state
// at entry and produces an apology so the candidate can retry the same turn.
func (e *Engine) ProcessMessage(ctx context.Context, input string) (response string) {
	e.turns++

	e.logger.Debug("processing turn",
		zap.Int("turn", e.turns),
		zap.String("stage", string(e.stage)),
		zap.Int("input_length", len(input)),
	)

	snapshot := e.snapshot()
	defer func() {
		if r := recover(); r != nil {
			e.restore(snapshot)
			e.logger.Error("turn failed, state restored", zap.Any("recovered", r))
			response = "I encountered an error while processing your message. Please try again."
		}
	}()

	if containsExitKeyword(input) {
		return e.endConversation(ctx)
	}

	return e.dispatch(ctx, input)
}

func (e *Engine) dispatch(ctx context.Context, input string) string {
	switch e.stage {
	case StageInfoGathering:
		return e.handleInfoGathering(ctx, input)
	case StageTechQuestions:
		return e.handleTechQuestions(ctx, input)
	case StageCompleted:
		return "Thank you! Your assessment is complete. If you have any additional questions, please feel free to ask."
	default:
		return e.handleFallback(ctx, input)
	}
}

type engineSnapshot struct {
	stage         Stage
	pending       Field
	hasPending    bool
	questionIndex int
	answerCount   int
}

func (e *Engine) snapshot() engineSnapshot {
	return engineSnapshot{
		stage:         e.stage,
		pending:       e.pending,
		hasPending:    e.hasPending,
		questionIndex: e.questionIndex,
		answerCount:   len(e.profile.TechnicalAnswers),
	}
}

func (e *Engine) restore(s engineSnapshot) {
	e.stage = s.stage
	e.pending = s.pending
	e.hasPending = s.hasPending
	e.questionIndex = s.questionIndex
	if len(e.profile.TechnicalAnswers) > s.answerCount {
		e.profile.TechnicalAnswers = e.profile.TechnicalAnswers[:s.answerCount]
	}
}

func containsExitKeyword(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, keyword := range exitKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (e *Engine) handleInfoGathering(ctx context.Context, input string) string {
	if !e.hasPending {
		return e.handleFallback(ctx, input)
	}

	sanitized := candidate.Sanitize(input)
	message, ok := acceptField(e.profile, e.pending, sanitized)
	if !ok {
		return message + "\n\n" + e.pending.Prompt()
	}

	e.logger.Info("field collected", zap.String("field", e.pending.Key()))

	next, remaining := nextUnsetField(e.profile)
	if remaining {
		e.pending = next
		return message + "\n\n" + next.Prompt()
	}

	e.hasPending = false
	return e.startTechQuestions(ctx)
}

// startTechQuestions transitions into the question stage. Questions are
// generated exactly once per conversation, here.
func (e *Engine) startTechQuestions(ctx context.Context) string {
	e.stage = StageTechQuestions
	e.profile.TechnicalQuestions = e.generator.Generate(ctx, e.profile)
	e.questionIndex = 0

	first := e.profile.TechnicalQuestions[0]

	return fmt.Sprintf(`Perfect! I have all your information. Now I'll ask you some technical questions specifically tailored for a %s role, focusing on your experience with %s.

The questions will be designed to match your %s years of experience and the specific requirements of the position you're interested in.

Let's start with the first question:

**Question 1:** %s

Please take your time to provide a detailed answer with specific examples from your experience. I'll ask you the next question once you've answered this one.`,
		e.profile.DesiredPosition, e.profile.TechStack, e.profile.ExperienceYears, first)
}

func (e *Engine) handleTechQuestions(ctx context.Context, input string) string {
	// Any non-empty turn counts as an answer; technical answers are not
	// validated.
	e.profile.TechnicalAnswers = append(e.profile.TechnicalAnswers, input)

	total := len(e.profile.TechnicalQuestions)
	e.questionIndex++

	e.logger.Info("technical answer recorded",
		zap.Int("question", e.questionIndex),
		zap.Int("total", total),
	)

	if e.questionIndex < total {
		return e.nextQuestionMessage(ctx, input)
	}

	// Defensive recovery from an inconsistent cursor: if answers lag behind
	// the question count, re-ask the first unanswered question.
	if answered := len(e.profile.TechnicalAnswers); answered < total {
		e.questionIndex = answered
		missing := total - answered
		return fmt.Sprintf(`I notice we still have %d more question(s) to go. Let me continue with the next question:

**Question %d of %d:** %s

Please take your time to provide your response.`,
			missing, answered+1, total, e.profile.TechnicalQuestions[answered])
	}

	return e.completionMessage(ctx, input, total)
}

func (e *Engine) nextQuestionMessage(ctx context.Context, answer string) string {
	total := len(e.profile.TechnicalQuestions)
	number := e.questionIndex + 1
	next := e.profile.TechnicalQuestions[e.questionIndex]

	static := fmt.Sprintf(`Thank you for that detailed answer!

**Question %d of %d:** %s

Please take your time to provide your response.`, number, total, next)

	response, err := e.completer.Complete(ctx, acknowledgmentPrompt(e.company, answer, next, number, total))
	if err != nil {
		e.recordAIError(err)
		return static
	}
	if len(response) <= 20 || containsSuspectMarker(response) {
		return static
	}

	return response
}

func (e *Engine) completionMessage(ctx context.Context, lastAnswer string, total int) string {
	static := fmt.Sprintf(`Excellent! You've completed all %d technical questions. Thank you for your detailed responses.

Is there anything else you'd like to share about your technical background or experience? Otherwise, feel free to let me know when you're ready to conclude the interview by saying 'thank you' or 'that's all'.`, total)

	response, err := e.completer.Complete(ctx, completionPrompt(e.company, lastAnswer, total))
	if err != nil {
		e.recordAIError(err)
		return static
	}
	if len(response) <= 30 || containsSuspectMarker(response) {
		return static
	}

	return response
}

// endConversation persists the profile when identifiable, builds the closing
// message and moves the engine to its terminal stage.
func (e *Engine) endConversation(ctx context.Context) string {
	if e.profile.FullName != "" && e.profile.Email != "" && !e.persisted {
		if e.store == nil {
			e.logger.Warn("no store configured, profile not persisted")
		} else if err := e.store.Save(ctx, e.profile); err != nil {
			// Best effort only: storage problems never reach the candidate.
			e.logger.Error("saving candidate profile", zap.Error(err))
		} else {
			e.persisted = true
			e.logger.Info("candidate profile saved",
				zap.String("email", e.profile.Email),
			)
		}
	}

	message := e.personalizedClosing()

	enhanced, err := e.completer.Complete(ctx, closingPrompt(e.company, e.profile, keyTechText(e.profile)))
	if err != nil {
		e.recordAIError(err)
	} else if len(enhanced) > 50 && !containsSuspectMarker(enhanced) {
		message = enhanced
	}

	e.stage = StageCompleted
	e.hasPending = false

	e.logger.Info("conversation ended",
		zap.Int("turns", e.turns),
		zap.Bool("profile_complete", e.profile.Complete()),
		zap.Bool("persisted", e.persisted),
	)

	return message
}

// personalizedClosing is always constructible from profile fields alone.
func (e *Engine) personalizedClosing() string {
	name := e.profile.FullName
	if name == "" {
		name = "there"
	}

	position := e.profile.DesiredPosition
	if position == "" {
		position = "the positions you're interested in"
	}

	location := e.profile.Location
	if location == "" {
		location = "your location"
	}

	experience := e.profile.ExperienceYears
	if experience == "" {
		experience = "your"
	}

	return fmt.Sprintf(`Thank you so much for your time, %s. We appreciate you sharing your information and answering our questions today.

During our conversation, we gathered your details, including your %s years of experience with %s, your interest in %s, and that you're located in %s. We also discussed technical aspects of your skills and background.

Your information has been securely recorded, and a %s recruiter will be in touch within 2-3 business days to discuss your application further and potentially schedule a next interview.

In the meantime, please feel free to reach out if you have any questions. We look forward to connecting with you soon!`,
		name, experience, keyTechText(e.profile), position, location, e.company)
}

func keyTechText(p *candidate.Profile) string {
	techs := p.KeyTechnologies(3)
	if len(techs) == 0 {
		return "your technical skills"
	}
	return strings.Join(techs, ", ")
}

func (e *Engine) handleFallback(ctx context.Context, input string) string {
	pendingKey := "none"
	if e.hasPending {
		pendingKey = e.pending.Key()
	}

	response, err := e.completer.Complete(ctx, fallbackPrompt(e.company, string(e.stage), pendingKey, input))
	if err != nil {
		e.recordAIError(err)
		if e.hasPending {
			return "I'm sorry, I didn't quite understand that. " + e.pending.Prompt()
		}
		return "I'm sorry, I didn't understand that. Could you please rephrase your response?"
	}

	return response
}

func containsSuspectMarker(response string) bool {
	lower := strings.ToLower(response)
	for _, marker := range suspectMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func (e *Engine) recordAIError(err error) {
	e.lastAIError = err.Error()
}

// Summary is a point-in-time view of the conversation, consumed by the
// presentation layer.
type Summary struct {
	Stage              Stage            `json:"stage"`
	CandidateInfo      candidate.Record `json:"candidate_info"`
	QuestionsGenerated int              `json:"questions_generated"`
	AnswersProvided    int              `json:"answers_provided"`
	TurnCount          int              `json:"turn_count"`
}

func (e *Engine) Summary() Summary {
	return Summary{
		Stage:              e.stage,
		CandidateInfo:      e.profile.Record(),
		QuestionsGenerated: len(e.profile.TechnicalQuestions),
		AnswersProvided:    len(e.profile.TechnicalAnswers),
		TurnCount:          e.turns,
	}
}

// Completion-service probe statuses reported by diagnostics.
const (
	APIStatusWorking    = "working"
	APIStatusUnexpected = "responding_but_unexpected"
	APIStatusFailed     = "failed"
)

// Diagnostics reports the health of the engine's collaborators and a
// snapshot of conversation state.
type Diagnostics struct {
	Timestamp         time.Time         `json:"timestamp"`
	APIStatus         string            `json:"api_status"`
	ConfigStatus      string            `json:"config_status"`
	ConversationState ConversationState `json:"conversation_state"`
	Errors            []string          `json:"errors"`
}

type ConversationState struct {
	Stage           Stage  `json:"stage"`
	PendingField    string `json:"pending_field"`
	TurnCount       int    `json:"turn_count"`
	ProfileComplete bool   `json:"profile_complete"`
	QuestionCount   int    `json:"question_count"`
}

// RunDiagnostics performs a live probe of the completion service and
// snapshots the conversation. The probe is its only side effect.
func (e *Engine) RunDiagnostics(ctx context.Context) Diagnostics {
	diag := Diagnostics{
		Timestamp: time.Now().UTC(),
		Errors:    []string{},
	}

	probe, err := e.completer.Complete(ctx, "Hello, this is a test message. Please respond with 'API test successful'.")
	switch {
	case err != nil:
		diag.APIStatus = APIStatusFailed
		diag.Errors = append(diag.Errors, fmt.Sprintf("API test failed: %v", err))
	case strings.Contains(probe, "API test successful") || len(probe) > 10:
		diag.APIStatus = APIStatusWorking
	default:
		diag.APIStatus = APIStatusUnexpected
		diag.Errors = append(diag.Errors, fmt.Sprintf("unexpected API response: %s", probe))
	}

	if e.configCheck == nil {
		diag.ConfigStatus = "unknown"
	} else if err := e.configCheck(); err != nil {
		diag.ConfigStatus = "invalid"
		diag.Errors = append(diag.Errors, fmt.Sprintf("config validation: %v", err))
	} else {
		diag.ConfigStatus = "valid"
	}

	pendingKey := ""
	if e.hasPending {
		pendingKey = e.pending.Key()
	}

	diag.ConversationState = ConversationState{
		Stage:           e.stage,
		PendingField:    pendingKey,
		TurnCount:       e.turns,
		ProfileComplete: e.profile.Complete(),
		QuestionCount:   len(e.profile.TechnicalQuestions),
	}

	if e.lastAIError != "" {
		diag.Errors = append(diag.Errors, fmt.Sprintf("last completion failure: %s", e.lastAIError))
	}

	return diag
}
