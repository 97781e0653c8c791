package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name     string
		feedback string
		want     int
		ok       bool
	}{
		{
			name:     "labeled sections",
			feedback: "Feedback: ok\nScore: 7/10\nImprovement Suggestion: none",
			want:     7,
			ok:       true,
		},
		{
			name:     "score of ten",
			feedback: "Score: 10/10",
			want:     10,
			ok:       true,
		},
		{
			name:     "first match wins",
			feedback: "Score: 4/10 but really Score: 9/10",
			want:     4,
			ok:       true,
		},
		{
			name:     "skip sentinel has no score",
			feedback: SkippedFeedback,
			ok:       false,
		},
		{
			name:     "evaluation failure sentinel has no score",
			feedback: "Could not evaluate answer due to an error.",
			ok:       false,
		},
		{
			name:     "drifted format is not parsed",
			feedback: "Score 7 out of 10",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractScore(tt.feedback)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAverageScore_SingleRecord(t *testing.T) {
	records := []AnswerRecord{
		{Question: "Q", Answer: "A", Feedback: "Feedback: ok\nScore: 7/10\nImprovement Suggestion: none"},
	}
	assert.Equal(t, 7.0, AverageScore(records))
}

func TestAverageScore_NoParseableScores(t *testing.T) {
	records := []AnswerRecord{
		{Question: "Q1", Answer: SkippedAnswer, Feedback: SkippedFeedback},
		{Question: "Q2", Answer: "A", Feedback: "Could not evaluate answer due to an error."},
	}
	assert.Equal(t, 0.0, AverageScore(records))
	assert.Equal(t, 0.0, AverageScore(nil))
}

func TestAverageScore_ExcludesUnscoredRecords(t *testing.T) {
	records := []AnswerRecord{
		{Feedback: "Score: 6/10"},
		{Feedback: SkippedFeedback},
		{Feedback: "Score: 9/10"},
	}
	// (6 + 9) / 2, not / 3.
	assert.Equal(t, 7.5, AverageScore(records))
}

func TestAverageScore_TruncatedToOneDecimal(t *testing.T) {
	records := []AnswerRecord{
		{Feedback: "Score: 7/10"},
		{Feedback: "Score: 7/10"},
		{Feedback: "Score: 8/10"},
	}
	// 22/3 = 7.333... truncated, not rounded.
	require.Equal(t, 7.3, AverageScore(records))

	records = []AnswerRecord{
		{Feedback: "Score: 8/10"},
		{Feedback: "Score: 9/10"},
		{Feedback: "Score: 9/10"},
	}
	// 26/3 = 8.666... truncates to 8.6.
	require.Equal(t, 8.6, AverageScore(records))
}
