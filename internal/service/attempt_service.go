package service

import (
	"errors"
	"fmt"

	"github.com/lshigami/Quokka/internal/dto"
	"github.com/lshigami/Quokka/internal/model"
	"github.com/lshigami/Quokka/internal/repository"
	"github.com/lshigami/Quokka/internal/scoring"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrAttemptNotFound = errors.New("attempt not found")

type AttemptService interface {
	GetAttemptDetails(attemptID uint) (*dto.AttemptDetailDTO, error)
	GetMyAttempt(quizID uint, studentID string) (*dto.AttemptSummaryDTO, error)
	GetStudentHistory(studentID string) ([]dto.AttemptSummaryDTO, error)
	GetQuizStats(quizID uint) (*dto.QuizStatsDTO, error)
}

type attemptService struct {
	attemptRepo repository.AttemptRepository
	quizRepo    repository.QuizRepository
}

func NewAttemptService(attemptRepo repository.AttemptRepository, quizRepo repository.QuizRepository) AttemptService {
	return &attemptService{attemptRepo: attemptRepo, quizRepo: quizRepo}
}

// GetAttemptDetails builds the review view: every question with the correct
// answer, the explanation and the student's own answer graded again from the
// sealed answer map.
func (s *attemptService) GetAttemptDetails(attemptID uint) (*dto.AttemptDetailDTO, error) {
	attempt, err := s.attemptRepo.FindByIDWithQuiz(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Failed to load attempt for review")
		return nil, fmt.Errorf("error fetching attempt %d: %w", attemptID, err)
	}

	detail := &dto.AttemptDetailDTO{
		ID:               attempt.ID,
		QuizID:           attempt.QuizID,
		QuizTitle:        attempt.Quiz.Title,
		StudentID:        attempt.StudentID,
		Score:            attempt.Score,
		TotalPoints:      attempt.TotalPoints,
		TimeTakenSeconds: attempt.TimeTakenSeconds,
		CompletedAt:      attempt.CompletedAt,
		Questions:        make([]dto.QuestionReviewDTO, 0, len(attempt.Quiz.Questions)),
	}

	for _, q := range attempt.Quiz.Questions {
		answer, answered := attempt.Answers[q.ID]
		correct := scoring.Correct(q, attempt.Answers)
		awarded := 0
		if correct {
			awarded = q.Points
		}
		detail.Questions = append(detail.Questions, dto.QuestionReviewDTO{
			QuestionID:    q.ID,
			Text:          q.Text,
			Kind:          q.Kind,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Points:        q.Points,
			YourAnswer:    answer,
			Answered:      answered,
			Correct:       correct,
			PointsAwarded: awarded,
		})
	}
	return detail, nil
}

func (s *attemptService) GetMyAttempt(quizID uint, studentID string) (*dto.AttemptSummaryDTO, error) {
	attempt, err := s.attemptRepo.FindByQuizAndStudent(quizID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		log.Error().Err(err).Uint("quizID", quizID).Str("studentID", studentID).Msg("Failed to look up attempt")
		return nil, fmt.Errorf("error fetching attempt for quiz %d: %w", quizID, err)
	}
	summary := summaryDTO(*attempt)
	return &summary, nil
}

func (s *attemptService) GetStudentHistory(studentID string) ([]dto.AttemptSummaryDTO, error) {
	attempts, err := s.attemptRepo.FindAllByStudent(studentID)
	if err != nil {
		log.Error().Err(err).Str("studentID", studentID).Msg("Failed to list student attempts")
		return nil, fmt.Errorf("error fetching attempts: %w", err)
	}
	out := make([]dto.AttemptSummaryDTO, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, summaryDTO(a))
	}
	return out, nil
}

// GetQuizStats aggregates in memory; attempt volume per quiz is bounded by
// one attempt per student.
func (s *attemptService) GetQuizStats(quizID uint) (*dto.QuizStatsDTO, error) {
	if _, err := s.quizRepo.FindByID(quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quiz not found with ID %d: %w", quizID, err)
		}
		return nil, fmt.Errorf("error fetching quiz %d: %w", quizID, err)
	}

	attempts, err := s.attemptRepo.FindAllByQuiz(quizID)
	if err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Msg("Failed to list quiz attempts")
		return nil, fmt.Errorf("error fetching attempts for quiz %d: %w", quizID, err)
	}

	stats := &dto.QuizStatsDTO{QuizID: quizID, AttemptCount: len(attempts)}
	if len(attempts) == 0 {
		return stats, nil
	}

	sum := 0
	stats.HighestScore = attempts[0].Score
	stats.LowestScore = attempts[0].Score
	stats.TotalPoints = attempts[0].TotalPoints
	for _, a := range attempts {
		sum += a.Score
		if a.Score > stats.HighestScore {
			stats.HighestScore = a.Score
		}
		if a.Score < stats.LowestScore {
			stats.LowestScore = a.Score
		}
	}
	stats.AverageScore = float64(sum) / float64(len(attempts))
	return stats, nil
}

func summaryDTO(a model.Attempt) dto.AttemptSummaryDTO {
	return dto.AttemptSummaryDTO{
		ID:               a.ID,
		QuizID:           a.QuizID,
		StudentID:        a.StudentID,
		Score:            a.Score,
		TotalPoints:      a.TotalPoints,
		TimeTakenSeconds: a.TimeTakenSeconds,
		CompletedAt:      a.CompletedAt,
	}
}
