package repository

import (
	"errors"

	"github.com/lshigami/Quokka/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	// CreateIfAbsent persists the attempt unless one already exists for the
	// same (quiz, student) pair. The unique index on that pair backs this up
	// at the storage level, so even two racing processes end up with one
	// attempt.
	CreateIfAbsent(attempt *model.Attempt) (*model.Attempt, bool, error)
	FindByIDWithQuiz(id uint) (*model.Attempt, error)
	FindAllByQuiz(quizID uint) ([]model.Attempt, error)
	FindByQuizAndStudent(quizID uint, studentID string) (*model.Attempt, error)
	FindAllByStudent(studentID string) ([]model.Attempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) CreateIfAbsent(attempt *model.Attempt) (*model.Attempt, bool, error) {
	var existing model.Attempt
	err := r.db.Where("quiz_id = ? AND student_id = ?", attempt.QuizID, attempt.StudentID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if createErr := r.db.Create(attempt).Error; createErr != nil {
		// A concurrent submit may have won the unique index; surface its row
		// instead of the conflict.
		if lookupErr := r.db.Where("quiz_id = ? AND student_id = ?", attempt.QuizID, attempt.StudentID).First(&existing).Error; lookupErr == nil {
			return &existing, false, nil
		}
		return nil, false, createErr
	}
	return attempt, true, nil
}

func (r *attemptRepository) FindByIDWithQuiz(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.Preload("Quiz.Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.order_in_quiz ASC")
	}).First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindAllByQuiz(quizID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.Where("quiz_id = ?", quizID).Order("completed_at DESC").Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) FindByQuizAndStudent(quizID uint, studentID string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.Where("quiz_id = ? AND student_id = ?", quizID, studentID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindAllByStudent(studentID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.Where("student_id = ?", studentID).Order("completed_at DESC").Find(&attempts).Error
	return attempts, err
}
