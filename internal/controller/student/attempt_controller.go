package student

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Quokka/internal/dto"
	"github.com/lshigami/Quokka/internal/service"
	"github.com/rs/zerolog/log"
)

type AttemptController struct {
	attemptService service.AttemptService
}

func NewAttemptController(attemptService service.AttemptService) *AttemptController {
	return &AttemptController{attemptService: attemptService}
}

// GetAttemptDetails godoc
// @Summary Review a sealed attempt
// @Description Full review of one attempt: every question with the correct answer, explanation and the student's graded answer.
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid attempt ID format"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /attempts/{attempt_id} [get]
func (c *AttemptController) GetAttemptDetails(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid attempt ID format"})
		return
	}

	detail, err := c.attemptService.GetAttemptDetails(uint(attemptID))
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Attempt not found"})
			return
		}
		log.Error().Err(err).Uint64("attemptID", attemptID).Msg("GetAttemptDetails: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve attempt"})
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// GetMyAttempt godoc
// @Summary Get the student's attempt for a quiz
// @Description Each student has at most one attempt per quiz; returns it if present.
// @Tags Attempts
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param student_id query string true "Student identifier"
// @Success 200 {object} dto.AttemptSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid quiz ID or missing student_id"
// @Failure 404 {object} dto.ErrorResponse "No attempt recorded"
// @Router /quizzes/{quiz_id}/my-attempts [get]
func (c *AttemptController) GetMyAttempt(ctx *gin.Context) {
	quizID, err := strconv.ParseUint(ctx.Param("quiz_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid quiz ID format"})
		return
	}
	studentID := ctx.Query("student_id")
	if studentID == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "student_id query parameter is required"})
		return
	}

	attempt, err := c.attemptService.GetMyAttempt(uint(quizID), studentID)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "No attempt recorded for this quiz"})
			return
		}
		log.Error().Err(err).Uint64("quizID", quizID).Msg("GetMyAttempt: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve attempt"})
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// GetStudentHistory godoc
// @Summary List a student's attempts across quizzes
// @Tags Attempts
// @Produce json
// @Param student_id path string true "Student identifier"
// @Success 200 {array} dto.AttemptSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{student_id}/attempts [get]
func (c *AttemptController) GetStudentHistory(ctx *gin.Context) {
	attempts, err := c.attemptService.GetStudentHistory(ctx.Param("student_id"))
	if err != nil {
		log.Error().Err(err).Str("studentID", ctx.Param("student_id")).Msg("GetStudentHistory: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve attempts"})
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// GetQuizStats godoc
// @Summary Aggregate attempt statistics for a quiz
// @Tags Attempts
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Success 200 {object} dto.QuizStatsDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid quiz ID format"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Router /quizzes/{quiz_id}/stats [get]
func (c *AttemptController) GetQuizStats(ctx *gin.Context) {
	quizID, err := strconv.ParseUint(ctx.Param("quiz_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid quiz ID format"})
		return
	}

	stats, err := c.attemptService.GetQuizStats(uint(quizID))
	if err != nil {
		log.Warn().Err(err).Uint64("quizID", quizID).Msg("GetQuizStats: Service error")
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Quiz not found"})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}
