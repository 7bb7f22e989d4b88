package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/talentscout/hiring-assistant/internal/candidate"
)

type captureStore struct {
	saved []*candidate.Profile
	err   error
}

func (s *captureStore) Save(_ context.Context, p *candidate.Profile) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, p)
	return nil
}

func (s *captureStore) LoadAll(_ context.Context) ([]candidate.Record, error) {
	return nil, nil
}

func newTestEngine(completer *scriptedCompleter, store *captureStore) *Engine {
	return NewEngine(Options{
		Completer: completer,
		Store:     store,
		Company:   "TalentScout",
	})
}

func TestGreetingFallsBackWhenServiceFails(t *testing.T) {
	e := newTestEngine(&scriptedCompleter{err: errors.New("quota")}, nil)

	greeting := e.Greeting(context.Background())

	if !strings.Contains(greeting, "Welcome to TalentScout") {
		t.Errorf("greeting missing static welcome: %q", greeting)
	}
	if !strings.Contains(greeting, "full name") {
		t.Errorf("greeting does not ask for the full name: %q", greeting)
	}
	if e.Stage() != StageInfoGathering {
		t.Errorf("stage = %q after greeting", e.Stage())
	}
}

func TestFieldCollectionAdvancesInOrder(t *testing.T) {
	e := newTestEngine(&scriptedCompleter{err: errors.New("down")}, nil)
	e.Greeting(context.Background())

	ctx := context.Background()

	response := e.ProcessMessage(ctx, "John Smith")
	if !strings.Contains(response, "Nice to meet you, John Smith!") {
		t.Fatalf("name not acknowledged: %q", response)
	}
	if !strings.Contains(response, "email address") {
		t.Fatalf("next prompt is not the email prompt: %q", response)
	}

	response = e.ProcessMessage(ctx, "notanemail")
	if !strings.Contains(response, "valid email address") {
		t.Fatalf("invalid email not rejected: %q", response)
	}
	if !strings.Contains(response, "What's your email address?") {
		t.Fatalf("email prompt not re-emitted: %q", response)
	}

	response = e.ProcessMessage(ctx, "john@example.com")
	if !strings.Contains(response, "phone number") {
		t.Fatalf("next prompt is not the phone prompt: %q", response)
	}
}

func TestTechStackRoleInputGetsCorrectiveReprompt(t *testing.T) {
	e := newTestEngine(&scriptedCompleter{err: errors.New("down")}, nil)
	e.Greeting(context.Background())

	ctx := context.Background()
	e.ProcessMessage(ctx, "John Smith")
	e.ProcessMessage(ctx, "john@example.com")
	e.ProcessMessage(ctx, "1234567890")
	e.ProcessMessage(ctx, "4")
	e.ProcessMessage(ctx, "API Developer")
	e.ProcessMessage(ctx, "Madrid")

	response := e.ProcessMessage(ctx, "QA Tester")
	if !strings.Contains(response, "job role instead of technical skills") {
		t.Fatalf("role-shaped stack not flagged: %q", response)
	}
	if e.Stage() != StageInfoGathering {
		t.Errorf("stage advanced despite rejected input: %q", e.Stage())
	}
}

func TestFullInterviewFlowWithFallbackQuestions(t *testing.T) {
	completer := &scriptedCompleter{err: errors.New("service unavailable")}
	store := &captureStore{}
	e := newTestEngine(completer, store)
	e.Greeting(context.Background())

	ctx := context.Background()
	e.ProcessMessage(ctx, "John Smith")
	e.ProcessMessage(ctx, "john@example.com")
	e.ProcessMessage(ctx, "1234567890")
	e.ProcessMessage(ctx, "4")
	e.ProcessMessage(ctx, "API Developer")
	e.ProcessMessage(ctx, "Madrid")

	response := e.ProcessMessage(ctx, "Python, Django, PostgreSQL")
	if e.Stage() != StageTechQuestions {
		t.Fatalf("stage = %q after tech stack accepted", e.Stage())
	}
	if !strings.Contains(response, "**Question 1:**") {
		t.Fatalf("first question not framed: %q", response)
	}
	if !strings.Contains(response, "Python") {
		t.Errorf("fallback question does not reference Python: %q", response)
	}

	total := len(e.profile.TechnicalQuestions)
	if total < minQuestions || total > maxQuestions {
		t.Fatalf("generated %d questions", total)
	}

	for i := 1; i < total; i++ {
		response = e.ProcessMessage(ctx, "I would add an index and measure again.")
		if !strings.Contains(response, "**Question") {
			t.Fatalf("answer %d did not produce the next question: %q", i, response)
		}
	}

	response = e.ProcessMessage(ctx, "I would add an index and measure again.")
	if !strings.Contains(response, "completed all") {
		t.Fatalf("final answer did not produce the completion message: %q", response)
	}
	if got := len(e.profile.TechnicalAnswers); got != total {
		t.Fatalf("recorded %d answers, want %d", got, total)
	}

	response = e.ProcessMessage(ctx, "bye")
	if e.Stage() != StageCompleted {
		t.Fatalf("stage = %q after exit keyword", e.Stage())
	}
	if !strings.Contains(response, "John Smith") {
		t.Errorf("closing message not personalized: %q", response)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d profiles, want 1", len(store.saved))
	}
	if store.saved[0].Email != "john@example.com" {
		t.Errorf("saved profile email = %q", store.saved[0].Email)
	}

	summary := e.Summary()
	if summary.Stage != StageCompleted {
		t.Errorf("summary stage = %q", summary.Stage)
	}
	if summary.AnswersProvided != total {
		t.Errorf("summary answers = %d, want %d", summary.AnswersProvided, total)
	}
}

func TestExitKeywordIsSubstringMatched(t *testing.T) {
	// "Backend Developer" contains "end", so typing it terminates the
	// conversation. Inherited matching behavior, kept as-is.
	e := newTestEngine(&scriptedCompleter{err: errors.New("down")}, &captureStore{})
	e.Greeting(context.Background())

	e.ProcessMessage(context.Background(), "Backend Developer")
	if e.Stage() != StageCompleted {
		t.Errorf("stage = %q, want %q", e.Stage(), StageCompleted)
	}
}

func TestEarlyExitWithoutIdentityIsNotPersisted(t *testing.T) {
	store := &captureStore{}
	e := newTestEngine(&scriptedCompleter{err: errors.New("down")}, store)
	e.Greeting(context.Background())

	ctx := context.Background()
	e.ProcessMessage(ctx, "John Smith")
	response := e.ProcessMessage(ctx, "bye")

	if e.Stage() != StageCompleted {
		t.Fatalf("stage = %q after exit", e.Stage())
	}
	if len(store.saved) != 0 {
		t.Errorf("profile without email persisted")
	}
	if !strings.Contains(response, "Thank you") {
		t.Errorf("no closing message: %q", response)
	}
}

func TestEarlyExitWithIdentityIsPersisted(t *testing.T) {
	store := &captureStore{}
	e := newTestEngine(&scriptedCompleter{err: errors.New("down")}, store)
	e.Greeting(context.Background())

	ctx := context.Background()
	e.ProcessMessage(ctx, "John Smith")
	e.ProcessMessage(ctx, "john@example.com")
	e.ProcessMessage(ctx, "bye")

	if len(store.saved) != 1 {
		t.Fatalf("saved %d profiles, want 1", len(store.saved))
	}
	if store.saved[0].FullName != "John Smith" {
		t.Errorf("saved name = %q", store.saved[0].FullName)
	}
}

func TestStoreFailureDoesNotReachCandidate(t *testing.T) {
	store := &captureStore{err: errors.New("disk full")}
	e := newTestEngine(&scriptedCompleter{err: errors.New("down")}, store)
	e.Greeting(context.Background())

	ctx := context.Background()
	e.ProcessMessage(ctx, "John Smith")
	e.ProcessMessage(ctx, "john@example.com")
	response := e.ProcessMessage(ctx, "bye")

	if strings.Contains(strings.ToLower(response), "error") {
		t.Errorf("storage failure leaked into closing message: %q", response)
	}
	if e.Stage() != StageCompleted {
		t.Errorf("stage = %q", e.Stage())
	}
}

func TestCompletedStageAcknowledgesFurtherInput(t *testing.T) {
	e := newTestEngine(&scriptedCompleter{err: errors.New("down")}, nil)
	e.Greeting(context.Background())
	e.ProcessMessage(context.Background(), "bye")

	response := e.ProcessMessage(context.Background(), "hello again")
	if !strings.Contains(response, "assessment is complete") {
		t.Errorf("unexpected post-completion response: %q", response)
	}
}

func collectIdentity(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()
	e.ProcessMessage(ctx, "John Smith")
	e.ProcessMessage(ctx, "john@example.com")
}

func collectAllFields(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()
	collectIdentity(t, e)
	e.ProcessMessage(ctx, "1234567890")
	e.ProcessMessage(ctx, "4")
	e.ProcessMessage(ctx, "API Developer")
	e.ProcessMessage(ctx, "Madrid")
	e.ProcessMessage(ctx, "Python, Django, PostgreSQL")
}

func TestEnhancedClosingAcceptedWhenLongAndClean(t *testing.T) {
	enhanced := "We appreciate your time today, John. Our recruiting team will review your responses and reach out within a few business days."
	e := newTestEngine(&scriptedCompleter{responses: []string{
		"Welcome aboard!",
		enhanced,
	}}, &captureStore{})
	e.Greeting(context.Background())
	collectIdentity(t, e)

	response := e.ProcessMessage(context.Background(), "bye")
	if response != enhanced {
		t.Fatalf("clean long closing not used verbatim: %q", response)
	}
	if e.Stage() != StageCompleted {
		t.Errorf("stage = %q", e.Stage())
	}
}

func TestShortClosingFallsBackToPersonalized(t *testing.T) {
	e := newTestEngine(&scriptedCompleter{responses: []string{
		"Welcome aboard!",
		"Bye now.",
	}}, &captureStore{})
	e.Greeting(context.Background())
	collectIdentity(t, e)

	response := e.ProcessMessage(context.Background(), "bye")
	if !strings.Contains(response, "Thank you so much for your time, John Smith") {
		t.Fatalf("short closing did not fall back to the personalized message: %q", response)
	}
}

func TestMarkerClosingFallsBackToPersonalized(t *testing.T) {
	e := newTestEngine(&scriptedCompleter{responses: []string{
		"Welcome aboard!",
		"We appreciate your time today, [Candidate Name]. A recruiter will contact you within a few business days.",
	}}, &captureStore{})
	e.Greeting(context.Background())
	collectIdentity(t, e)

	response := e.ProcessMessage(context.Background(), "bye")
	if strings.Contains(response, "[Candidate Name]") {
		t.Fatalf("placeholder-bearing closing used verbatim: %q", response)
	}
	if !strings.Contains(response, "Thank you so much for your time, John Smith") {
		t.Fatalf("marker closing did not fall back to the personalized message: %q", response)
	}
}

func TestAcknowledgmentAcceptedWhenLongAndClean(t *testing.T) {
	ack := "Great answer. Let's keep the momentum going with the next question about your experience."
	e := newTestEngine(&scriptedCompleter{responses: []string{
		"Welcome aboard!",
		"not a numbered list",
		ack,
	}}, nil)
	e.Greeting(context.Background())
	collectAllFields(t, e)

	response := e.ProcessMessage(context.Background(), "I would add an index and measure again.")
	if response != ack {
		t.Fatalf("clean long acknowledgment not used verbatim: %q", response)
	}
}

func TestUnusableAckAndCompletionFallBackToTemplates(t *testing.T) {
	// The repeated marker-bearing response is rejected for both the
	// per-answer acknowledgment and the completion message.
	e := newTestEngine(&scriptedCompleter{responses: []string{
		"Welcome aboard!",
		"not a numbered list",
		"Please see [the next question] below for details of where we go next in our interview.",
	}}, nil)
	e.Greeting(context.Background())
	collectAllFields(t, e)

	ctx := context.Background()
	total := len(e.profile.TechnicalQuestions)

	response := e.ProcessMessage(ctx, "I would add an index and measure again.")
	if !strings.Contains(response, "Thank you for that detailed answer!") {
		t.Fatalf("unusable acknowledgment did not fall back: %q", response)
	}
	if !strings.Contains(response, "**Question 2 of") {
		t.Fatalf("fallback acknowledgment missing next question: %q", response)
	}

	for i := 2; i <= total; i++ {
		response = e.ProcessMessage(ctx, "I would add an index and measure again.")
	}
	if !strings.Contains(response, "completed all") {
		t.Fatalf("unusable completion response did not fall back: %q", response)
	}
}

type panickyCompleter struct{}

func (panickyCompleter) Complete(_ context.Context, _ string) (string, error) {
	panic("completion service blew up")
}

func TestPanicDuringTurnRestoresStateAndApologizes(t *testing.T) {
	e := newTestEngine(&scriptedCompleter{err: errors.New("down")}, nil)
	e.Greeting(context.Background())
	collectAllFields(t, e)

	ctx := context.Background()
	answersBefore := len(e.profile.TechnicalAnswers)
	indexBefore := e.questionIndex

	e.completer = panickyCompleter{}
	response := e.ProcessMessage(ctx, "I would add an index and measure again.")
	if !strings.Contains(response, "I encountered an error") {
		t.Fatalf("panic did not produce the apology: %q", response)
	}
	if e.Stage() != StageTechQuestions {
		t.Errorf("stage changed across failed turn: %q", e.Stage())
	}
	if got := len(e.profile.TechnicalAnswers); got != answersBefore {
		t.Errorf("answers not rolled back: %d, want %d", got, answersBefore)
	}
	if e.questionIndex != indexBefore {
		t.Errorf("question cursor not rolled back: %d, want %d", e.questionIndex, indexBefore)
	}

	// The same turn can be retried once the service behaves.
	e.completer = &scriptedCompleter{err: errors.New("down")}
	response = e.ProcessMessage(ctx, "I would add an index and measure again.")
	if !strings.Contains(response, "**Question 2 of") {
		t.Fatalf("retry after recovery did not advance: %q", response)
	}
}

func TestRunDiagnostics(t *testing.T) {
	ctx := context.Background()

	working := NewEngine(Options{
		Completer:   &scriptedCompleter{responses: []string{"API test successful"}},
		ConfigCheck: func() error { return nil },
	})
	diag := working.RunDiagnostics(ctx)
	if diag.APIStatus != APIStatusWorking {
		t.Errorf("api status = %q, want %q", diag.APIStatus, APIStatusWorking)
	}
	if diag.ConfigStatus != "valid" {
		t.Errorf("config status = %q", diag.ConfigStatus)
	}
	if len(diag.Errors) != 0 {
		t.Errorf("unexpected errors: %v", diag.Errors)
	}

	broken := NewEngine(Options{
		Completer:   &scriptedCompleter{err: errors.New("boom")},
		ConfigCheck: func() error { return errors.New("temperature out of range") },
	})
	diag = broken.RunDiagnostics(ctx)
	if diag.APIStatus != APIStatusFailed {
		t.Errorf("api status = %q, want %q", diag.APIStatus, APIStatusFailed)
	}
	if diag.ConfigStatus != "invalid" {
		t.Errorf("config status = %q", diag.ConfigStatus)
	}
	if len(diag.Errors) < 2 {
		t.Errorf("expected probe and config errors, got %v", diag.Errors)
	}
	if diag.ConversationState.Stage != StageGreeting {
		t.Errorf("conversation stage = %q", diag.ConversationState.Stage)
	}
}
