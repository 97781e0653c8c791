// Package config provides interview and application configuration.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// APIKeyEnv is the environment variable holding the Gemini API key.
// The interactive flow is never entered when it is unset.
const APIKeyEnv = "GOOGLE_API_KEY"

// InterviewType selects the question style and evaluation criteria.
type InterviewType string

// Interview type constants. The values appear verbatim in prompts
// ("a Backend Engineer Technical Interview"), so they are full phrases.
const (
	TypeTechnical  InterviewType = "Technical Interview"
	TypeBehavioral InterviewType = "Behavioral Interview"
)

// QuestionCount bounds for a single interview.
const (
	MinQuestions = 3
	MaxQuestions = 10
)

// InterviewConfig describes one interview. It is immutable once a session
// has started; the session keeps its own copy.
type InterviewConfig struct {
	JobRole       string        `json:"job_role" validate:"required,min=1"`
	Domain        string        `json:"domain,omitempty"`
	InterviewType InterviewType `json:"interview_type" validate:"required,oneof='Technical Interview' 'Behavioral Interview'"`
	QuestionCount int           `json:"question_count" validate:"required,min=3,max=10"`
}

// Validate validates the InterviewConfig using the validator.
func (c *InterviewConfig) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// Criteria returns the evaluation criteria sentence fragment for the
// interview type, used when building evaluation prompts.
func (c *InterviewConfig) Criteria() string {
	if c.InterviewType == TypeTechnical {
		return "technical accuracy, problem-solving approach, and clarity."
	}
	return "adherence to STAR format (Situation, Task, Action, Result), relevance, and clarity."
}

// LoadAPIKey reads the Gemini API key from the environment.
// A missing key is a fatal startup condition; the returned error carries
// remediation instructions for the user.
func LoadAPIKey() (string, error) {
	key := os.Getenv(APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s not found: create a .env file next to the binary containing %s='Your-Key-Here', or export it in your shell", APIKeyEnv, APIKeyEnv)
	}
	return key, nil
}
