package repository

import (
	"github.com/lshigami/Quokka/internal/model"
	"github.com/lshigami/Quokka/internal/session"
)

// sessionStore bundles the repositories into the narrow persistence surface
// the session state machine depends on.
type sessionStore struct {
	quizzes  QuizRepository
	sessions SessionRepository
	attempts AttemptRepository
}

func NewSessionStore(quizzes QuizRepository, sessions SessionRepository, attempts AttemptRepository) session.Store {
	return &sessionStore{quizzes: quizzes, sessions: sessions, attempts: attempts}
}

func (s *sessionStore) QuizByID(id uint) (*model.Quiz, error) {
	return s.quizzes.FindByIDWithQuestions(id)
}

func (s *sessionStore) IncompleteSession(quizID uint, studentID string) (*model.Session, error) {
	return s.sessions.FindIncomplete(quizID, studentID)
}

func (s *sessionStore) CreateSession(sess *model.Session) error {
	return s.sessions.Create(sess)
}

func (s *sessionStore) UpdateSession(id uint, fields map[string]interface{}) error {
	return s.sessions.UpdateFields(id, fields)
}

func (s *sessionStore) CreateAttemptIfAbsent(a *model.Attempt) (*model.Attempt, bool, error) {
	return s.attempts.CreateIfAbsent(a)
}
