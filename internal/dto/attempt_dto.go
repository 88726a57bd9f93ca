package dto

import "time"

// QuestionReviewDTO pairs a question with the student's answer for the
// post-attempt review page. Correct answers and explanations are visible
// here because the attempt is already sealed.
type QuestionReviewDTO struct {
	QuestionID    uint     `json:"question_id"`
	Text          string   `json:"text"`
	Kind          string   `json:"kind"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
	Points        int      `json:"points"`
	YourAnswer    string   `json:"your_answer,omitempty"`
	Answered      bool     `json:"answered"`
	Correct       bool     `json:"correct"`
	PointsAwarded int      `json:"points_awarded"`
}

// AttemptDetailDTO is the full review of one attempt.
type AttemptDetailDTO struct {
	ID               uint                `json:"id"`
	QuizID           uint                `json:"quiz_id"`
	QuizTitle        string              `json:"quiz_title,omitempty"`
	StudentID        string              `json:"student_id"`
	Score            int                 `json:"score"`
	TotalPoints      int                 `json:"total_points"`
	TimeTakenSeconds int                 `json:"time_taken_seconds"`
	CompletedAt      time.Time           `json:"completed_at"`
	Questions        []QuestionReviewDTO `json:"questions,omitempty"`
}

// AttemptSummaryDTO is for listing attempts.
type AttemptSummaryDTO struct {
	ID               uint      `json:"id"`
	QuizID           uint      `json:"quiz_id"`
	StudentID        string    `json:"student_id"`
	Score            int       `json:"score"`
	TotalPoints      int       `json:"total_points"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	CompletedAt      time.Time `json:"completed_at"`
}

// QuizStatsDTO aggregates the attempts recorded for a quiz.
type QuizStatsDTO struct {
	QuizID       uint    `json:"quiz_id"`
	AttemptCount int     `json:"attempt_count"`
	AverageScore float64 `json:"average_score"`
	HighestScore int     `json:"highest_score"`
	LowestScore  int     `json:"lowest_score"`
	TotalPoints  int     `json:"total_points"`
}
