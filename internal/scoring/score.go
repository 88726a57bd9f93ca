// Package scoring holds the pure scoring pass shared by live submission and
// after-the-fact review. It must stay deterministic and side-effect free.
package scoring

import (
	"strings"

	"github.com/lshigami/Quokka/internal/model"
)

// Score runs an exact-match pass over the quiz questions. Every question
// contributes its point value to total; only answered questions whose answer
// equals the correct answer (case-insensitively) contribute to score.
// Unanswered questions score zero. No partial credit.
func Score(questions []model.Question, answers model.AnswerMap) (score, total int) {
	for _, q := range questions {
		total += q.Points
		answer, ok := answers[q.ID]
		if !ok {
			continue
		}
		if strings.EqualFold(answer, q.CorrectAnswer) {
			score += q.Points
		}
	}
	return score, total
}

// Correct reports whether a single answer matches the question's correct
// answer. Review pages use it to mark individual questions.
func Correct(q model.Question, answers model.AnswerMap) bool {
	answer, ok := answers[q.ID]
	return ok && strings.EqualFold(answer, q.CorrectAnswer)
}
