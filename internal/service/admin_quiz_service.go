package service

import (
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Quokka/internal/dto"
	"github.com/lshigami/Quokka/internal/model"
	"github.com/lshigami/Quokka/internal/repository"
	"github.com/rs/zerolog/log"
)

type AdminQuizService interface {
	CreateQuiz(req dto.QuizCreateDTO) (*dto.AdminQuizResponseDTO, error)
}

type adminQuizService struct {
	quizRepo repository.QuizRepository
}

func NewAdminQuizService(quizRepo repository.QuizRepository) AdminQuizService {
	return &adminQuizService{quizRepo: quizRepo}
}

func (s *adminQuizService) CreateQuiz(req dto.QuizCreateDTO) (*dto.AdminQuizResponseDTO, error) {
	orderSeen := make(map[int]bool)
	questions := make([]model.Question, 0, len(req.Questions))

	for _, qDto := range req.Questions {
		if orderSeen[qDto.OrderInQuiz] {
			return nil, fmt.Errorf("duplicate order_in_quiz %d found in questions", qDto.OrderInQuiz)
		}
		orderSeen[qDto.OrderInQuiz] = true

		switch qDto.Kind {
		case model.KindMultipleChoice:
			if len(qDto.Options) < 2 {
				return nil, fmt.Errorf("question %q: multiple-choice needs at least two options", qDto.Text)
			}
			if !containsOption(qDto.Options, qDto.CorrectAnswer) {
				return nil, fmt.Errorf("question %q: correct answer must be one of the listed options", qDto.Text)
			}
		case model.KindTrueFalse:
			if !strings.EqualFold(qDto.CorrectAnswer, "True") && !strings.EqualFold(qDto.CorrectAnswer, "False") {
				return nil, fmt.Errorf("question %q: true-false answer must be True or False", qDto.Text)
			}
		case model.KindShortAnswer:
			// Any non-empty answer is acceptable; binding enforces non-empty.
		default:
			// The binding tag already rejects this (matching included); keep
			// the guard for callers that bypass the HTTP layer.
			return nil, fmt.Errorf("question %q: unsupported kind %q", qDto.Text, qDto.Kind)
		}

		var question model.Question
		copier.Copy(&question, &qDto)
		question.Options = model.StringSlice(qDto.Options)
		questions = append(questions, question)
	}

	if req.StartTime != nil && req.EndTime != nil && req.EndTime.Before(*req.StartTime) {
		return nil, fmt.Errorf("quiz window ends before it starts")
	}

	quiz := model.Quiz{
		Title:            req.Title,
		Description:      req.Description,
		TimeLimitMinutes: req.TimeLimitMinutes,
		IsActive:         true,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Questions:        questions,
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	if err := s.quizRepo.Create(&quiz); err != nil {
		log.Error().Err(err).Msg("Failed to create quiz in database")
		return nil, fmt.Errorf("database error creating quiz: %w", err)
	}

	created, err := s.quizRepo.FindByIDWithQuestions(quiz.ID)
	if err != nil {
		log.Error().Err(err).Uint("quizID", quiz.ID).Msg("Failed to reload created quiz for response")
		created = &quiz
	}

	var resp dto.AdminQuizResponseDTO
	if err := copier.Copy(&resp, created); err != nil {
		log.Error().Err(err).Msg("Failed to copy Quiz model to AdminQuizResponseDTO")
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}

	resp.Questions = make([]dto.AdminQuestionDetailDTO, 0, len(created.Questions))
	for _, q := range created.Questions {
		resp.Questions = append(resp.Questions, dto.AdminQuestionDetailDTO{
			ID:            q.ID,
			Text:          q.Text,
			Kind:          q.Kind,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			Explanation:   q.Explanation,
			OrderInQuiz:   q.OrderInQuiz,
		})
	}
	return &resp, nil
}

func containsOption(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}
