package repository

import (
	"errors"

	"github.com/lshigami/Quokka/internal/model"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(sess *model.Session) error
	// UpdateFields merges the named columns into the session row.
	UpdateFields(id uint, fields map[string]interface{}) error
	// FindIncomplete returns the student's unfinished session for the quiz,
	// or (nil, nil) when there is none.
	FindIncomplete(quizID uint, studentID string) (*model.Session, error)
	FindByToken(token string) (*model.Session, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(sess *model.Session) error {
	return r.db.Create(sess).Error
}

func (r *sessionRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&model.Session{}).Where("id = ?", id).Updates(fields).Error
}

func (r *sessionRepository) FindIncomplete(quizID uint, studentID string) (*model.Session, error) {
	var sess model.Session
	err := r.db.
		Where("quiz_id = ? AND student_id = ? AND completed = ?", quizID, studentID, false).
		Order("created_at DESC").
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *sessionRepository) FindByToken(token string) (*model.Session, error) {
	var sess model.Session
	err := r.db.Where("token = ?", token).First(&sess).Error
	if err != nil {
		return nil, err
	}
	return &sess, nil
}
