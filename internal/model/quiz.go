package model

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description,omitempty"`
	// TimeLimitMinutes drives the session countdown (timeLimit * 60 seconds).
	TimeLimitMinutes int        `json:"time_limit_minutes" gorm:"not null"`
	IsActive         bool       `json:"is_active" gorm:"default:true"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	Questions        []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}
