package service

import (
	"errors"

	"github.com/lshigami/Quokka/config"
	"github.com/lshigami/Quokka/internal/dto"
	"github.com/lshigami/Quokka/internal/session"
	"github.com/rs/zerolog/log"
)

// ErrSessionNotFound means no live runner exists for the given token. The
// session may have been sealed and evicted, or the token is simply wrong.
var ErrSessionNotFound = errors.New("session not found")

type SessionService interface {
	Start(quizID uint, studentID string) (*dto.SessionStateDTO, error)
	State(token string) (*dto.SessionStateDTO, error)
	SetAnswer(token string, req dto.AnswerUpdateDTO) (*dto.SessionStateDTO, error)
	ToggleFlag(token string, req dto.FlagUpdateDTO) (*dto.FlagStateDTO, error)
	Navigate(token string, req dto.PositionUpdateDTO) (*dto.PositionStateDTO, error)
	ReportSignal(token string, req dto.SignalEventDTO) (*dto.SignalVerdictDTO, error)
	Submit(token string) (*dto.SubmitResultDTO, error)
}

type sessionService struct {
	registry *session.Registry
}

func NewSessionService(store session.Store, cfg *config.Config) SessionService {
	return &sessionService{
		registry: session.NewRegistry(session.Config{
			Store:              store,
			ViolationThreshold: cfg.Proctoring.ViolationThreshold,
		}),
	}
}

func (s *sessionService) Start(quizID uint, studentID string) (*dto.SessionStateDTO, error) {
	runner, err := s.registry.StartOrResume(quizID, studentID)
	if err != nil {
		log.Warn().Err(err).Uint("quizID", quizID).Str("studentID", studentID).Msg("Session start rejected")
		return nil, err
	}
	return stateDTO(runner.Snapshot()), nil
}

func (s *sessionService) State(token string) (*dto.SessionStateDTO, error) {
	runner, ok := s.registry.ByToken(token)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return stateDTO(runner.Snapshot()), nil
}

func (s *sessionService) SetAnswer(token string, req dto.AnswerUpdateDTO) (*dto.SessionStateDTO, error) {
	runner, ok := s.registry.ByToken(token)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := runner.SetAnswer(req.QuestionID, req.Answer); err != nil {
		return nil, err
	}
	return stateDTO(runner.Snapshot()), nil
}

func (s *sessionService) ToggleFlag(token string, req dto.FlagUpdateDTO) (*dto.FlagStateDTO, error) {
	runner, ok := s.registry.ByToken(token)
	if !ok {
		return nil, ErrSessionNotFound
	}
	flagged, err := runner.ToggleFlag(req.QuestionID)
	if err != nil {
		return nil, err
	}
	snap := runner.Snapshot()
	return &dto.FlagStateDTO{
		QuestionID: req.QuestionID,
		Flagged:    flagged,
		Flags:      snap.Flagged,
	}, nil
}

func (s *sessionService) Navigate(token string, req dto.PositionUpdateDTO) (*dto.PositionStateDTO, error) {
	runner, ok := s.registry.ByToken(token)
	if !ok {
		return nil, ErrSessionNotFound
	}
	index, err := runner.Navigate(req.Index)
	if err != nil {
		return nil, err
	}
	return &dto.PositionStateDTO{Index: index}, nil
}

func (s *sessionService) ReportSignal(token string, req dto.SignalEventDTO) (*dto.SignalVerdictDTO, error) {
	runner, ok := s.registry.ByToken(token)
	if !ok {
		return nil, ErrSessionNotFound
	}
	verdict, err := runner.ReportSignal(session.SignalKind(req.Kind))
	if err != nil {
		return nil, err
	}

	out := &dto.SignalVerdictDTO{
		Suppress:       verdict.Suppress,
		Message:        verdict.Message,
		ViolationCount: verdict.Count,
		Terminated:     verdict.Terminated,
		Warnings:       runner.Snapshot().Violations,
	}
	if verdict.Terminated {
		out.Redirect = session.RedirectReview
	}
	return out, nil
}

func (s *sessionService) Submit(token string) (*dto.SubmitResultDTO, error) {
	runner, ok := s.registry.ByToken(token)
	if !ok {
		return nil, ErrSessionNotFound
	}
	result, err := runner.Submit()
	if err != nil {
		return nil, err
	}
	return resultDTO(result), nil
}

func stateDTO(snap session.Snapshot) *dto.SessionStateDTO {
	out := &dto.SessionStateDTO{
		Token:            snap.Token,
		State:            string(snap.State),
		QuizID:           snap.QuizID,
		StudentID:        snap.StudentID,
		CurrentIndex:     snap.CurrentIndex,
		RemainingSeconds: snap.RemainingSeconds,
		Answers:          snap.Answers,
		Flagged:          snap.Flagged,
		Warnings:         snap.Violations,
		ViolationCount:   snap.ViolationCount,
		Redirect:         snap.Redirect,
	}
	if snap.Result != nil {
		out.Result = resultDTO(snap.Result)
	}
	return out
}

func resultDTO(r *session.Result) *dto.SubmitResultDTO {
	return &dto.SubmitResultDTO{
		AttemptID:        r.AttemptID,
		Score:            r.Score,
		TotalPoints:      r.TotalPoints,
		TimeTakenSeconds: r.TimeTakenSeconds,
		Reason:           string(r.Reason),
		Redirect:         session.RedirectReview,
	}
}
