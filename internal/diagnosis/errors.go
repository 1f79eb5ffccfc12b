package diagnosis

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("diagnosis not found")
	ErrInvalidAnswers = errors.New("invalid answers")
)

// AnswerProblem describes one answer rejected by ValidateAnswers.
type AnswerProblem struct {
	QuestionID string `json:"questionId"`
	Issue      string `json:"issue"`
}

// AnswerError lists every problem found in an answer set.
type AnswerError struct {
	Problems []AnswerProblem
}

func (e *AnswerError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s: %s", p.QuestionID, p.Issue))
	}
	return "invalid answers: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalidAnswers) match.
func (e *AnswerError) Is(target error) bool {
	return target == ErrInvalidAnswers
}
