package dto

import "time"

// QuestionCreateDTO is used within QuizCreateDTO for admin quiz creation.
type QuestionCreateDTO struct {
	Text          string   `json:"text" binding:"required"`
	Kind          string   `json:"kind" binding:"required,oneof=multiple-choice true-false short-answer"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer" binding:"required"`
	Points        int      `json:"points" binding:"required,gt=0"`
	Explanation   string   `json:"explanation"`
	OrderInQuiz   int      `json:"order_in_quiz" binding:"required,min=1"`
}

// QuizCreateDTO is for admin to create a new quiz with all its questions.
type QuizCreateDTO struct {
	Title            string              `json:"title" binding:"required"`
	Description      string              `json:"description,omitempty"`
	TimeLimitMinutes int                 `json:"time_limit_minutes" binding:"required,gt=0"`
	IsActive         *bool               `json:"is_active"`
	StartTime        *time.Time          `json:"start_time"`
	EndTime          *time.Time          `json:"end_time"`
	Questions        []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// QuestionResponseDTO is the student-facing view of a question. The correct
// answer and explanation are deliberately absent; they only appear in review
// DTOs after an attempt is sealed.
type QuestionResponseDTO struct {
	ID          uint     `json:"id"`
	Text        string   `json:"text"`
	Kind        string   `json:"kind"`
	Options     []string `json:"options,omitempty"`
	Points      int      `json:"points"`
	OrderInQuiz int      `json:"order_in_quiz"`
}

// QuizResponseDTO is the full student-facing quiz detail.
type QuizResponseDTO struct {
	ID               uint                  `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description,omitempty"`
	TimeLimitMinutes int                   `json:"time_limit_minutes"`
	IsActive         bool                  `json:"is_active"`
	StartTime        *time.Time            `json:"start_time,omitempty"`
	EndTime          *time.Time            `json:"end_time,omitempty"`
	Questions        []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}

// QuizSummaryDTO is used for listing quizzes.
type QuizSummaryDTO struct {
	ID               uint       `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	IsActive         bool       `json:"is_active"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	QuestionCount    int        `json:"question_count"`
	CreatedAt        time.Time  `json:"created_at"`
}

// AdminQuizResponseDTO is the admin-facing quiz detail, correct answers
// included.
type AdminQuizResponseDTO struct {
	ID               uint                     `json:"id"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description,omitempty"`
	TimeLimitMinutes int                      `json:"time_limit_minutes"`
	IsActive         bool                     `json:"is_active"`
	StartTime        *time.Time               `json:"start_time,omitempty"`
	EndTime          *time.Time               `json:"end_time,omitempty"`
	Questions        []AdminQuestionDetailDTO `json:"questions,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}

type AdminQuestionDetailDTO struct {
	ID            uint     `json:"id"`
	Text          string   `json:"text"`
	Kind          string   `json:"kind"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Points        int      `json:"points"`
	Explanation   string   `json:"explanation,omitempty"`
	OrderInQuiz   int      `json:"order_in_quiz"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
