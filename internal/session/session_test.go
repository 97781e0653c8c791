package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/config"
)

// fakeGateway is a canned Gateway implementation for exercising the state
// machine without network calls.
type fakeGateway struct {
	questions []string
	feedback  string
	report    string

	evalCalls   int
	reportCalls int
	lastAvg     float64
}

func (f *fakeGateway) GenerateQuestions(_ context.Context, _ config.InterviewConfig, count int) []string {
	if f.questions != nil {
		return f.questions
	}
	out := make([]string, count)
	for i := range out {
		out[i] = fmt.Sprintf("Question %d?", i+1)
	}
	return out
}

func (f *fakeGateway) EvaluateAnswer(_ context.Context, _ config.InterviewConfig, _, _ string) string {
	f.evalCalls++
	if f.feedback != "" {
		return f.feedback
	}
	return "Feedback: ok\nScore: 7/10\nImprovement Suggestion: none"
}

func (f *fakeGateway) SynthesizeReport(_ context.Context, _ config.InterviewConfig, _ []AnswerRecord, avg float64) string {
	f.reportCalls++
	f.lastAvg = avg
	if f.report != "" {
		return f.report
	}
	return "Overall Strengths: ...\nFinal Score: 7/10"
}

func testConfig(count int) config.InterviewConfig {
	return config.InterviewConfig{
		JobRole:       "Backend Engineer",
		InterviewType: config.TypeTechnical,
		QuestionCount: count,
	}
}

// checkInvariant asserts currentIndex == len(records) through the accessors.
func checkInvariant(t *testing.T, s *Session) {
	t.Helper()
	current, _ := s.Progress()
	assert.Equal(t, len(s.Records()), current-1, "current index must equal record count")
}

func TestStart_MovesToInProgress(t *testing.T) {
	gw := &fakeGateway{}
	s := New(gw)
	require.Equal(t, PhaseSetup, s.Phase())

	require.NoError(t, s.Start(context.Background(), testConfig(3)))

	assert.Equal(t, PhaseInProgress, s.Phase())
	checkInvariant(t, s)
	q, ok := s.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "Question 1?", q)
	current, total := s.Progress()
	assert.Equal(t, 1, current)
	assert.Equal(t, 3, total)
}

func TestStart_InvalidConfigRejected(t *testing.T) {
	s := New(&fakeGateway{})
	cfg := testConfig(3)
	cfg.QuestionCount = 2

	err := s.Start(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, PhaseSetup, s.Phase())
}

func TestStart_GenerationSentinelAbortsStart(t *testing.T) {
	sentinels := [][]string{
		{"Could not generate questions due to a block.", "Could not generate questions due to a block.", "Could not generate questions due to a block."},
		{"Could not generate questions. Check your API key and internet connection."},
		nil,
	}
	for _, questions := range sentinels {
		gw := &fakeGateway{questions: questions}
		if questions == nil {
			gw.questions = []string{}
		}
		s := New(gw)

		err := s.Start(context.Background(), testConfig(3))
		require.Error(t, err)
		var genErr *GenerationError
		assert.ErrorAs(t, err, &genErr)
		assert.Equal(t, PhaseSetup, s.Phase())
		_, ok := s.CurrentQuestion()
		assert.False(t, ok)
		assert.Empty(t, s.Records())
	}
}

func TestStart_TwiceRejected(t *testing.T) {
	s := New(&fakeGateway{})
	require.NoError(t, s.Start(context.Background(), testConfig(3)))

	err := s.Start(context.Background(), testConfig(3))
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, PhaseInProgress, stateErr.Phase)
}

func TestSubmitAnswer_EmptyRejectedWithoutStateChange(t *testing.T) {
	gw := &fakeGateway{}
	s := New(gw)
	require.NoError(t, s.Start(context.Background(), testConfig(3)))

	for _, answer := range []string{"", "   ", "\n\t"} {
		err := s.SubmitAnswer(context.Background(), answer)
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	}

	assert.Empty(t, s.Records())
	assert.Equal(t, 0, gw.evalCalls)
	current, _ := s.Progress()
	assert.Equal(t, 1, current)
	assert.Equal(t, PhaseInProgress, s.Phase())
}

func TestSubmitAnswer_RecordsFeedbackAndAdvances(t *testing.T) {
	gw := &fakeGateway{}
	s := New(gw)
	require.NoError(t, s.Start(context.Background(), testConfig(3)))

	require.NoError(t, s.SubmitAnswer(context.Background(), "I would use a hash map."))
	checkInvariant(t, s)

	records := s.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "Question 1?", records[0].Question)
	assert.Equal(t, "I would use a hash map.", records[0].Answer)
	assert.Contains(t, records[0].Feedback, "Score: 7/10")
	assert.Equal(t, 1, gw.evalCalls)

	q, ok := s.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "Question 2?", q)
}

func TestSkip_RecordsSentinelsWithoutEvaluation(t *testing.T) {
	gw := &fakeGateway{}
	s := New(gw)
	require.NoError(t, s.Start(context.Background(), testConfig(3)))

	require.NoError(t, s.Skip(context.Background()))
	checkInvariant(t, s)

	records := s.Records()
	require.Len(t, records, 1)
	assert.Equal(t, SkippedAnswer, records[0].Answer)
	assert.Equal(t, SkippedFeedback, records[0].Feedback)
	assert.Equal(t, 0, gw.evalCalls)
}

func TestAdvance_AnyMixReachesSummary(t *testing.T) {
	// Scenario from the original flow: answer 1 and 2, skip 3.
	gw := &fakeGateway{}
	s := New(gw)
	require.NoError(t, s.Start(context.Background(), testConfig(3)))

	require.NoError(t, s.SubmitAnswer(context.Background(), "Answer one"))
	checkInvariant(t, s)
	require.NoError(t, s.SubmitAnswer(context.Background(), "Answer two"))
	checkInvariant(t, s)
	require.NoError(t, s.Skip(context.Background()))

	assert.Equal(t, PhaseSummary, s.Phase())
	records := s.Records()
	require.Len(t, records, 3)
	assert.Equal(t, SkippedAnswer, records[2].Answer)

	_, ok := s.CurrentQuestion()
	assert.False(t, ok)
}

func TestSubmitAnswer_RejectedOutsideInProgress(t *testing.T) {
	s := New(&fakeGateway{})

	var stateErr *StateError
	require.ErrorAs(t, s.SubmitAnswer(context.Background(), "hello"), &stateErr)
	require.ErrorAs(t, s.Skip(context.Background()), &stateErr)
}

func TestGenerateReport_SetsReportOnce(t *testing.T) {
	gw := &fakeGateway{report: "Final Score: 8/10"}
	s := New(gw)
	require.NoError(t, s.Start(context.Background(), testConfig(3)))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.SubmitAnswer(context.Background(), "an answer"))
	}
	require.Equal(t, PhaseSummary, s.Phase())

	report, err := s.GenerateReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Final Score: 8/10", report)
	assert.Equal(t, PhaseReported, s.Phase())
	assert.Equal(t, 1, gw.reportCalls)
	assert.InDelta(t, 7.0, gw.lastAvg, 0.001)

	stored, ok := s.FinalReport()
	require.True(t, ok)
	assert.Equal(t, report, stored)

	// Second request is a no-op: same report, no further gateway call.
	again, err := s.GenerateReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report, again)
	assert.Equal(t, 1, gw.reportCalls)
	assert.Equal(t, PhaseReported, s.Phase())
}

func TestGenerateReport_RejectedBeforeSummary(t *testing.T) {
	s := New(&fakeGateway{})
	_, err := s.GenerateReport(context.Background())
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)

	require.NoError(t, s.Start(context.Background(), testConfig(3)))
	_, err = s.GenerateReport(context.Background())
	require.ErrorAs(t, err, &stateErr)
}

func TestReset_FromEveryPhase(t *testing.T) {
	ctx := context.Background()

	prepare := map[string]func(s *Session){
		"in progress with partial records": func(s *Session) {
			require.NoError(t, s.Start(ctx, testConfig(3)))
			require.NoError(t, s.SubmitAnswer(ctx, "partial"))
		},
		"summary": func(s *Session) {
			require.NoError(t, s.Start(ctx, testConfig(3)))
			for i := 0; i < 3; i++ {
				require.NoError(t, s.Skip(ctx))
			}
		},
		"reported": func(s *Session) {
			require.NoError(t, s.Start(ctx, testConfig(3)))
			for i := 0; i < 3; i++ {
				require.NoError(t, s.Skip(ctx))
			}
			_, err := s.GenerateReport(ctx)
			require.NoError(t, err)
		},
	}

	for name, setup := range prepare {
		t.Run(name, func(t *testing.T) {
			s := New(&fakeGateway{})
			setup(s)

			s.Reset()

			assert.Equal(t, PhaseSetup, s.Phase())
			assert.Empty(t, s.Records())
			assert.Equal(t, config.InterviewConfig{}, s.Config())
			_, ok := s.CurrentQuestion()
			assert.False(t, ok)
			_, ok = s.FinalReport()
			assert.False(t, ok)

			// A reset session can start a fresh interview.
			require.NoError(t, s.Start(ctx, testConfig(4)))
			assert.Equal(t, PhaseInProgress, s.Phase())
		})
	}
}

func TestReset_RegeneratesID(t *testing.T) {
	s := New(&fakeGateway{})
	before := s.ID()
	s.Reset()
	assert.NotEqual(t, before, s.ID())
}

func TestRecords_ReturnsCopy(t *testing.T) {
	s := New(&fakeGateway{})
	require.NoError(t, s.Start(context.Background(), testConfig(3)))
	require.NoError(t, s.SubmitAnswer(context.Background(), "an answer"))

	records := s.Records()
	records[0].Answer = "mutated"

	assert.Equal(t, "an answer", s.Records()[0].Answer)
}
