package session

import "github.com/lshigami/Quokka/internal/model"

// Store is the persistence the state machine needs. The gorm repositories
// satisfy it in production; tests use an in-memory implementation.
type Store interface {
	// QuizByID loads a quiz with its questions.
	QuizByID(id uint) (*model.Quiz, error)
	// IncompleteSession returns the student's unfinished session for the
	// quiz, or (nil, nil) when there is none.
	IncompleteSession(quizID uint, studentID string) (*model.Session, error)
	CreateSession(s *model.Session) error
	// UpdateSession merges the named fields into the session record.
	UpdateSession(id uint, fields map[string]interface{}) error
	// CreateAttemptIfAbsent persists the attempt unless one already exists
	// for the same (quiz, student) pair, returning the surviving record and
	// whether it was created by this call.
	CreateAttemptIfAbsent(a *model.Attempt) (*model.Attempt, bool, error)
}
