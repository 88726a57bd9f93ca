package session

import "errors"

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrQuizInactive    = errors.New("quiz is not active")
	ErrWindowNotOpen   = errors.New("quiz has not started yet")
	ErrWindowClosed    = errors.New("quiz has ended")
	ErrInvalidQuiz     = errors.New("invalid quiz definition")
	ErrUnsupportedKind = errors.New("unsupported question kind")

	ErrNotActive       = errors.New("session is not active")
	ErrUnknownQuestion = errors.New("question is not part of this quiz")

	ErrUnknownSignal = errors.New("unknown proctoring signal")
	ErrDetached      = errors.New("proctoring monitor is detached")
)
