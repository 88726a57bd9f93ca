package service

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Quokka/internal/dto"
	"github.com/lshigami/Quokka/internal/repository"
	"github.com/rs/zerolog/log"
)

type QuizService interface {
	GetAllQuizzes() ([]dto.QuizSummaryDTO, error)
	GetQuizDetails(quizID uint) (*dto.QuizResponseDTO, error)
}

type quizService struct {
	quizRepo repository.QuizRepository
}

func NewQuizService(quizRepo repository.QuizRepository) QuizService {
	return &quizService{quizRepo: quizRepo}
}

func (s *quizService) GetAllQuizzes() ([]dto.QuizSummaryDTO, error) {
	quizzes, err := s.quizRepo.FindAllWithQuestionCount()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list quizzes from repository")
		return nil, fmt.Errorf("error fetching quizzes: %w", err)
	}

	dtos := make([]dto.QuizSummaryDTO, 0, len(quizzes))
	for _, q := range quizzes {
		dtos = append(dtos, dto.QuizSummaryDTO{
			ID:               q.Quiz.ID,
			Title:            q.Quiz.Title,
			Description:      q.Quiz.Description,
			TimeLimitMinutes: q.Quiz.TimeLimitMinutes,
			IsActive:         q.Quiz.IsActive,
			StartTime:        q.Quiz.StartTime,
			EndTime:          q.Quiz.EndTime,
			QuestionCount:    q.QuestionCount,
			CreatedAt:        q.Quiz.CreatedAt,
		})
	}
	return dtos, nil
}

// GetQuizDetails returns the student-facing quiz. QuestionResponseDTO has no
// correct-answer field, so copier drops it on the floor here; answers only
// surface through attempt review.
func (s *quizService) GetQuizDetails(quizID uint) (*dto.QuizResponseDTO, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Msg("Failed to get quiz details from repository")
		return nil, fmt.Errorf("quiz not found with ID %d: %w", quizID, err)
	}

	var resp dto.QuizResponseDTO
	if err := copier.Copy(&resp, quiz); err != nil {
		log.Error().Err(err).Msg("Failed to copy Quiz model to QuizResponseDTO")
		return nil, fmt.Errorf("error preparing quiz details response: %w", err)
	}

	resp.Questions = make([]dto.QuestionResponseDTO, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		resp.Questions = append(resp.Questions, dto.QuestionResponseDTO{
			ID:          q.ID,
			Text:        q.Text,
			Kind:        q.Kind,
			Options:     q.Options,
			Points:      q.Points,
			OrderInQuiz: q.OrderInQuiz,
		})
	}
	return &resp, nil
}
