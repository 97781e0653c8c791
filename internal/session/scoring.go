package session

import (
	"math"
	"regexp"
	"strconv"
)

// scorePattern matches the score line the evaluation prompt demands.
// Only the first match per record counts.
var scorePattern = regexp.MustCompile(`Score: (\d+)/10`)

// ExtractScore scans feedback text for a "Score: <n>/10" mark and returns the
// integer score. ok is false when the feedback carries no parseable score
// (skipped questions, evaluation sentinels, prompt-format drift).
func ExtractScore(feedback string) (score int, ok bool) {
	m := scorePattern.FindStringSubmatch(feedback)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// AverageScore averages the parseable scores across records, truncated to one
// decimal place. Records without a score are excluded from both numerator and
// denominator. With no parseable score at all the average is 0.0.
func AverageScore(records []AnswerRecord) float64 {
	total, counted := 0, 0
	for _, rec := range records {
		if n, ok := ExtractScore(rec.Feedback); ok {
			total += n
			counted++
		}
	}
	if counted == 0 {
		return 0.0
	}
	avg := float64(total) / float64(counted)
	return math.Trunc(avg*10) / 10
}
