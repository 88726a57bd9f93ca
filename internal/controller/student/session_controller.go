package student

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Quokka/internal/dto"
	"github.com/lshigami/Quokka/internal/service"
	"github.com/lshigami/Quokka/internal/session"
	"github.com/rs/zerolog/log"
)

type SessionController struct {
	sessionService service.SessionService
}

func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// StartSession godoc
// @Summary Start or resume a quiz session
// @Description Starts a timed session for the student, or resumes their incomplete one. The countdown begins (or continues) immediately.
// @Tags Sessions
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param student_id query string true "Student identifier"
// @Success 201 {object} dto.SessionStateDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid quiz ID or missing student_id"
// @Failure 403 {object} dto.ErrorResponse "Quiz inactive or outside its availability window"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Failure 422 {object} dto.ErrorResponse "Quiz definition cannot be run"
// @Router /quizzes/{quiz_id}/sessions [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
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

	state, err := c.sessionService.Start(uint(quizID), studentID)
	if err != nil {
		status, msg := startErrorStatus(err)
		log.Warn().Err(err).Uint64("quizID", quizID).Str("studentID", studentID).Msg("StartSession rejected")
		ctx.JSON(status, dto.ErrorResponse{Message: msg, Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, state)
}

// GetSession godoc
// @Summary Get the live state of a session
// @Tags Sessions
// @Produce json
// @Param session_id path string true "Session token"
// @Success 200 {object} dto.SessionStateDTO
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{session_id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	state, err := c.sessionService.State(ctx.Param("session_id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session not found"})
		return
	}
	ctx.JSON(http.StatusOK, state)
}

// UpdateAnswer godoc
// @Summary Record an answer
// @Description Overwrites the student's answer for one question. Persistence is asynchronous; the in-memory session is authoritative.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session token"
// @Param answer body dto.AnswerUpdateDTO true "Question and answer"
// @Success 200 {object} dto.SessionStateDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or unknown question"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session is no longer active"
// @Router /sessions/{session_id}/answer [put]
func (c *SessionController) UpdateAnswer(ctx *gin.Context) {
	var req dto.AnswerUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	state, err := c.sessionService.SetAnswer(ctx.Param("session_id"), req)
	if err != nil {
		c.mutationError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, state)
}

// ToggleFlag godoc
// @Summary Toggle the review flag on a question
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session token"
// @Param flag body dto.FlagUpdateDTO true "Question to toggle"
// @Success 200 {object} dto.FlagStateDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or unknown question"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session is no longer active"
// @Router /sessions/{session_id}/flag [put]
func (c *SessionController) ToggleFlag(ctx *gin.Context) {
	var req dto.FlagUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	state, err := c.sessionService.ToggleFlag(ctx.Param("session_id"), req)
	if err != nil {
		c.mutationError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, state)
}

// UpdatePosition godoc
// @Summary Move the current-question pointer
// @Description Navigation is clamped to the question range and never rejected for being out of bounds.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session token"
// @Param position body dto.PositionUpdateDTO true "Target question index"
// @Success 200 {object} dto.PositionStateDTO
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session is no longer active"
// @Router /sessions/{session_id}/position [put]
func (c *SessionController) UpdatePosition(ctx *gin.Context) {
	var req dto.PositionUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	state, err := c.sessionService.Navigate(ctx.Param("session_id"), req)
	if err != nil {
		c.mutationError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, state)
}

// ReportSignal godoc
// @Summary Report a proctoring signal
// @Description The client reports environment events (fullscreen exit, tab switch, copy attempt). The verdict says whether to suppress the browser default and whether the session was terminated.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session token"
// @Param event body dto.SignalEventDTO true "Observed signal"
// @Success 200 {object} dto.SignalVerdictDTO
// @Failure 400 {object} dto.ErrorResponse "Unknown signal kind"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session is no longer active"
// @Router /sessions/{session_id}/events [post]
func (c *SessionController) ReportSignal(ctx *gin.Context) {
	var req dto.SignalEventDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	verdict, err := c.sessionService.ReportSignal(ctx.Param("session_id"), req)
	if err != nil {
		c.mutationError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, verdict)
}

// SubmitSession godoc
// @Summary Submit the session
// @Description Seals the session: stops the timer, scores the answers and records the attempt. Submitting an already completed session returns the same result.
// @Tags Sessions
// @Produce json
// @Param session_id path string true "Session token"
// @Success 200 {object} dto.SubmitResultDTO
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session cannot be submitted in its current state"
// @Failure 500 {object} dto.ErrorResponse "Sealing failed; the session stays submitting and the call can be retried"
// @Router /sessions/{session_id}/submit [post]
func (c *SessionController) SubmitSession(ctx *gin.Context) {
	result, err := c.sessionService.Submit(ctx.Param("session_id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session not found"})
			return
		}
		if errors.Is(err, session.ErrNotActive) {
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Session cannot be submitted", Details: []string{err.Error()}})
			return
		}
		log.Error().Err(err).Str("token", ctx.Param("session_id")).Msg("SubmitSession: Sealing failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to submit session, retry the request", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (c *SessionController) mutationError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session not found"})
	case errors.Is(err, session.ErrNotActive):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Session is no longer active", Details: []string{err.Error()}})
	case errors.Is(err, session.ErrUnknownQuestion), errors.Is(err, session.ErrUnknownSignal):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request", Details: []string{err.Error()}})
	default:
		log.Error().Err(err).Msg("Session mutation failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
	}
}

func startErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrQuizNotFound):
		return http.StatusNotFound, "Quiz not found"
	case errors.Is(err, session.ErrQuizInactive),
		errors.Is(err, session.ErrWindowNotOpen),
		errors.Is(err, session.ErrWindowClosed):
		return http.StatusForbidden, "Quiz is not available"
	case errors.Is(err, session.ErrInvalidQuiz), errors.Is(err, session.ErrUnsupportedKind):
		return http.StatusUnprocessableEntity, "Quiz definition cannot be run"
	default:
		return http.StatusInternalServerError, "Failed to start session"
	}
}
