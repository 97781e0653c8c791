// Package gateway implements the three stateless LLM operations an interview
// session depends on: question generation, answer evaluation, and final
// report synthesis. Each operation builds a prompt, performs a single
// synchronous model call, and parses the free-text response. There is no
// retry logic; failures surface as fixed sentinel strings that callers check
// for (generation) or pass through as degraded content (evaluation, report).
package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/session"
)

// Failure and content-block sentinels. The question sentinels share the
// session.GenerationFailurePrefix so Start can detect them by prefix.
const (
	BlockedQuestionsSentinel = "Could not generate questions due to a block."
	FailedQuestionsSentinel  = "Could not generate questions. Check your API key and internet connection."

	BlockedEvaluationSentinel = "Evaluation was blocked. The answer might contain sensitive content."
	FailedEvaluationSentinel  = "Could not evaluate answer due to an error."

	BlockedReportSentinel = "The final report was blocked due to safety settings."
	FailedReportSentinel  = "Could not generate final report."
)

// Gateway performs interview LLM operations through an llm.Client.
type Gateway struct {
	client llm.Client
}

// New wraps client in a Gateway.
func New(client llm.Client) *Gateway {
	return &Gateway{client: client}
}

var _ session.Gateway = (*Gateway)(nil)

// GenerateQuestions asks the model for count interview questions, one per
// line. On failure it returns count copies of a sentinel carrying the
// generation-failure prefix, which the session treats as terminal.
func (g *Gateway) GenerateQuestions(ctx context.Context, cfg config.InterviewConfig, count int) []string {
	prompt := buildQuestionsPrompt(cfg, count)

	text, err := g.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		if llm.IsBlocked(err) {
			return repeat(BlockedQuestionsSentinel, count)
		}
		return repeat(FailedQuestionsSentinel, count)
	}

	var questions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		questions = append(questions, line)
	}
	if len(questions) > count {
		questions = questions[:count]
	}
	return questions
}

// EvaluateAnswer asks the model to grade one answer. The response carries
// three labeled sections (Feedback, Score, Improvement Suggestion) with the
// score formatted exactly as "Score: [n]/10". On failure a sentinel string is
// returned in place of the feedback; the session still records it.
func (g *Gateway) EvaluateAnswer(ctx context.Context, cfg config.InterviewConfig, question, answer string) string {
	prompt := buildEvaluationPrompt(cfg, question, answer)

	text, err := g.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		if llm.IsBlocked(err) {
			return BlockedEvaluationSentinel
		}
		return FailedEvaluationSentinel
	}
	return text
}

// SynthesizeReport asks the model for the final summary report over all
// records, feeding it the precomputed average score. The response carries
// four sections: overall strengths, areas for improvement, suggested
// resources, and a "Final Score: [n]/10" rating.
func (g *Gateway) SynthesizeReport(ctx context.Context, cfg config.InterviewConfig, records []session.AnswerRecord, averageScore float64) string {
	prompt := buildReportPrompt(cfg, records, averageScore)

	text, err := g.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		if llm.IsBlocked(err) {
			return BlockedReportSentinel
		}
		return FailedReportSentinel
	}
	return text
}

// buildQuestionsPrompt assembles the generation prompt: base request, optional
// domain focus, and type-specific guidance.
func buildQuestionsPrompt(cfg config.InterviewConfig, count int) string {
	domainClause := ""
	if cfg.Domain != "" {
		domainClause = fmt.Sprintf(" Focus on the %s domain.", cfg.Domain)
	}

	focusClause := ""
	switch cfg.InterviewType {
	case config.TypeTechnical:
		focusClause = " Include questions on algorithms, data structures, and core concepts relevant to the role."
	case config.TypeBehavioral:
		focusClause = " Ensure these are STAR-format behavioral questions."
	}

	template := prompts.MustGet("interview.json", "generate-questions")
	return prompts.Format(template, map[string]string{
		"Count":         strconv.Itoa(count),
		"JobRole":       cfg.JobRole,
		"InterviewType": string(cfg.InterviewType),
		"DomainClause":  domainClause,
		"FocusClause":   focusClause,
	})
}

// buildEvaluationPrompt assembles the grading prompt with type-specific
// criteria and the exact headings the score extractor depends on.
func buildEvaluationPrompt(cfg config.InterviewConfig, question, answer string) string {
	context := fmt.Sprintf("The candidate is interviewing for a %s role. The question is: '%s'.", cfg.JobRole, question)
	if cfg.Domain != "" {
		context += fmt.Sprintf(" The domain is %s.", cfg.Domain)
	}

	template := prompts.MustGet("interview.json", "evaluate-answer")
	return prompts.Format(template, map[string]string{
		"Context":  context,
		"Question": question,
		"Answer":   answer,
		"Criteria": cfg.Criteria(),
	})
}

// buildReportPrompt interleaves every record as a question/answer/feedback
// block and closes with the section list and the average score.
func buildReportPrompt(cfg config.InterviewConfig, records []session.AnswerRecord, averageScore float64) string {
	var b strings.Builder

	header := prompts.MustGet("interview.json", "final-report-header")
	b.WriteString(prompts.Format(header, map[string]string{
		"JobRole":       cfg.JobRole,
		"InterviewType": string(cfg.InterviewType),
	}))

	recordTemplate := prompts.MustGet("interview.json", "final-report-record")
	for _, rec := range records {
		b.WriteString(prompts.Format(recordTemplate, map[string]string{
			"Question": rec.Question,
			"Answer":   rec.Answer,
			"Feedback": rec.Feedback,
		}))
	}

	footer := prompts.MustGet("interview.json", "final-report-footer")
	b.WriteString(prompts.Format(footer, map[string]string{
		"AverageScore": fmt.Sprintf("%.1f", averageScore),
	}))

	return b.String()
}

// repeat returns n copies of s.
func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
