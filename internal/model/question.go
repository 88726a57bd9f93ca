package model

import (
	"time"

	"gorm.io/gorm"
)

// Question kinds. KindMatching is declared for forward compatibility but is
// rejected at quiz creation and at session start; it is never scorable.
const (
	KindMultipleChoice = "multiple-choice"
	KindTrueFalse      = "true-false"
	KindShortAnswer    = "short-answer"
	KindMatching       = "matching"
)

type Question struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	QuizID      uint        `json:"quiz_id" gorm:"not null;index"`
	Text        string      `json:"text" gorm:"type:text;not null"`
	Kind        string      `json:"kind" gorm:"not null"`
	Options     StringSlice `json:"options,omitempty" gorm:"type:jsonb"`
	// CorrectAnswer is compared case-insensitively against the submitted
	// answer. For multiple-choice it must be one of Options.
	CorrectAnswer string         `json:"correct_answer" gorm:"not null"`
	Points        int            `json:"points" gorm:"not null"`
	Explanation   string         `json:"explanation,omitempty" gorm:"type:text"`
	OrderInQuiz   int            `json:"order_in_quiz" gorm:"not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
