package model

import (
	"time"

	"gorm.io/gorm"
)

// Attempt is the append-only record of a completed quiz attempt. The unique
// (quiz_id, student_id) index is the storage-level guard against duplicate
// creation when auto-submit races a manual submit.
type Attempt struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	QuizID    uint   `json:"quiz_id" gorm:"not null;uniqueIndex:idx_attempts_quiz_student"`
	Quiz      Quiz   `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	StudentID string `json:"student_id" gorm:"not null;uniqueIndex:idx_attempts_quiz_student;index"`
	SessionID uint   `json:"session_id" gorm:"not null"`

	Answers          AnswerMap `json:"answers" gorm:"type:jsonb"`
	Score            int       `json:"score"`
	TotalPoints      int       `json:"total_points"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	CompletedAt      time.Time `json:"completed_at" gorm:"not null"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
