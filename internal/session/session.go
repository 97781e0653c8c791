// Package session implements the interview session state machine: a single
// linear progression from Setup through InProgress and Summary to Reported,
// with an unconditional reset back to Setup from any phase.
package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/config"
)

// Phase is the lifecycle phase of a session.
type Phase string

// Session phases.
const (
	PhaseSetup      Phase = "setup"
	PhaseInProgress Phase = "in_progress"
	PhaseSummary    Phase = "summary"
	PhaseReported   Phase = "reported"
)

// Sentinel values recorded when a question is skipped.
const (
	SkippedAnswer   = "Skipped"
	SkippedFeedback = "No feedback."
)

// AnswerRecord is one answered or skipped question. Records are append-only
// and never mutated after creation.
type AnswerRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
}

// Gateway is the LLM surface the session depends on. All three operations are
// stateless request/response; failures come back as sentinel strings rather
// than errors (the session decides whether a sentinel is terminal).
type Gateway interface {
	GenerateQuestions(ctx context.Context, cfg config.InterviewConfig, count int) []string
	EvaluateAnswer(ctx context.Context, cfg config.InterviewConfig, question, answer string) string
	SynthesizeReport(ctx context.Context, cfg config.InterviewConfig, records []AnswerRecord, averageScore float64) string
}

// GenerationFailurePrefix marks question-generation sentinels. Any generated
// question list whose first element carries this prefix is a terminal failure.
const GenerationFailurePrefix = "Could not generate"

// Session owns the progress of one interview. It is not safe for concurrent
// use; one logical session is driven by one caller at a time.
type Session struct {
	id          uuid.UUID
	gateway     Gateway
	phase       Phase
	config      config.InterviewConfig
	questions   []string
	current     int
	records     []AnswerRecord
	finalReport string
}

// New returns a fresh session in the Setup phase.
func New(gw Gateway) *Session {
	return &Session{
		id:      uuid.New(),
		gateway: gw,
		phase:   PhaseSetup,
	}
}

// Start validates cfg, generates the question list, and moves the session to
// InProgress. On generation failure the session stays in Setup with no
// questions stored and the error describes the failure.
func (s *Session) Start(ctx context.Context, cfg config.InterviewConfig) error {
	if s.phase != PhaseSetup {
		return &StateError{Action: "start", Phase: s.phase}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	questions := s.gateway.GenerateQuestions(ctx, cfg, cfg.QuestionCount)
	if len(questions) == 0 {
		return &GenerationError{Message: "no questions were generated"}
	}
	if strings.HasPrefix(questions[0], GenerationFailurePrefix) {
		return &GenerationError{Message: questions[0]}
	}

	s.config = cfg
	s.questions = questions
	s.current = 0
	s.records = nil
	s.finalReport = ""
	s.phase = PhaseInProgress
	return nil
}

// SubmitAnswer evaluates answer for the current question and advances.
// An empty (or whitespace-only) answer is rejected with no state change.
// Evaluation failure is not terminal: the sentinel feedback is recorded and
// the session still advances.
func (s *Session) SubmitAnswer(ctx context.Context, answer string) error {
	if s.phase != PhaseInProgress {
		return &StateError{Action: "submit answer", Phase: s.phase}
	}
	if strings.TrimSpace(answer) == "" {
		return ErrEmptyAnswer
	}

	question := s.questions[s.current]
	feedback := s.gateway.EvaluateAnswer(ctx, s.config, question, answer)
	s.advance(AnswerRecord{Question: question, Answer: answer, Feedback: feedback})
	return nil
}

// Skip records the current question as skipped and advances. The gateway is
// not consulted.
func (s *Session) Skip(ctx context.Context) error {
	if s.phase != PhaseInProgress {
		return &StateError{Action: "skip question", Phase: s.phase}
	}

	s.advance(AnswerRecord{
		Question: s.questions[s.current],
		Answer:   SkippedAnswer,
		Feedback: SkippedFeedback,
	})
	return nil
}

// advance appends the record, bumps the index, and moves to Summary once the
// last question is consumed. currentIndex == len(records) holds throughout.
func (s *Session) advance(rec AnswerRecord) {
	s.records = append(s.records, rec)
	s.current++
	if s.current == len(s.questions) {
		s.phase = PhaseSummary
	}
}

// GenerateReport synthesizes the final report over all records and moves the
// session to Reported. Once a report exists further calls return it unchanged
// without consulting the gateway.
func (s *Session) GenerateReport(ctx context.Context) (string, error) {
	if s.phase == PhaseReported {
		return s.finalReport, nil
	}
	if s.phase != PhaseSummary {
		return "", &StateError{Action: "generate report", Phase: s.phase}
	}

	avg := AverageScore(s.records)
	s.finalReport = s.gateway.SynthesizeReport(ctx, s.config, s.Records(), avg)
	s.phase = PhaseReported
	return s.finalReport, nil
}

// Reset discards all session data unconditionally and returns to Setup.
// The resulting state is indistinguishable from a freshly constructed session
// apart from the session ID, which is regenerated.
func (s *Session) Reset() {
	s.id = uuid.New()
	s.phase = PhaseSetup
	s.config = config.InterviewConfig{}
	s.questions = nil
	s.current = 0
	s.records = nil
	s.finalReport = ""
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Config returns the interview configuration captured at Start.
func (s *Session) Config() config.InterviewConfig { return s.config }

// CurrentQuestion returns the question awaiting an answer, if any.
func (s *Session) CurrentQuestion() (string, bool) {
	if s.phase != PhaseInProgress || s.current >= len(s.questions) {
		return "", false
	}
	return s.questions[s.current], true
}

// Progress returns the one-based position of the current question and the
// total question count.
func (s *Session) Progress() (current, total int) {
	return s.current + 1, len(s.questions)
}

// Records returns a copy of the accumulated answer records.
func (s *Session) Records() []AnswerRecord {
	out := make([]AnswerRecord, len(s.records))
	copy(out, s.records)
	return out
}

// FinalReport returns the synthesized report, if one has been generated.
func (s *Session) FinalReport() (string, bool) {
	if s.finalReport == "" {
		return "", false
	}
	return s.finalReport, true
}
