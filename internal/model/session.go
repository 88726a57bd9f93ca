package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is a student's live attempt at a quiz. At most one incomplete
// Session exists per (quiz, student); it is sealed (Completed set, score
// fields filled) on submit and never mutated afterwards.
type Session struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Token     string `json:"token" gorm:"uniqueIndex;not null"`
	QuizID    uint   `json:"quiz_id" gorm:"not null;index"`
	Quiz      Quiz   `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	StudentID string `json:"student_id" gorm:"not null;index"`

	Answers AnswerMap `json:"answers" gorm:"type:jsonb"`
	Flagged UintSlice `json:"flagged_questions" gorm:"type:jsonb"`

	StartedAt    time.Time `json:"started_at" gorm:"not null"`
	LastActivity time.Time `json:"last_activity"`
	Completed    bool      `json:"is_completed" gorm:"default:false;index"`

	// Set only once the session is sealed.
	Score            *int `json:"score,omitempty"`
	TotalPoints      *int `json:"total_points,omitempty"`
	TimeTakenSeconds *int `json:"time_taken_seconds,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
