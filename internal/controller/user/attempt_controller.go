package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/psymetrics/sessioncore/internal/controller"
	"github.com/psymetrics/sessioncore/internal/dto"
	"github.com/psymetrics/sessioncore/internal/service"
	"github.com/rs/zerolog/log"
)

// AttemptController exposes the attempt lifecycle to participant
// clients: start, answer, finish, and the fresh-score reads.
type AttemptController struct {
	attemptService service.AttemptService
}

func NewAttemptController(attemptService service.AttemptService) *AttemptController {
	return &AttemptController{attemptService: attemptService}
}

// StartAttempt godoc
// @Summary Start (or resume) an attempt on a session module
// @Description Idempotent: an existing attempt for (session, user, test) is returned unchanged. Rejected when the session window is not active or the user is not registered.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param session_id path int true "Session ID"
// @Param test_id path int true "Test ID"
// @Param start body dto.StartAttemptRequest true "User starting the attempt"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "User not registered"
// @Failure 404 {object} dto.ErrorResponse "Session or test not found"
// @Failure 409 {object} dto.ErrorResponse "Session not active"
// @Router /sessions/{session_id}/tests/{test_id}/attempts/start [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	sessionID, err := strconv.ParseUint(ctx.Param("session_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Session ID format"})
		return
	}
	testID, err := strconv.ParseUint(ctx.Param("test_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Test ID format"})
		return
	}

	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, err := c.attemptService.Start(uint(sessionID), req.UserID, uint(testID))
	if err != nil {
		log.Warn().Err(err).Uint64("sessionID", sessionID).Uint64("testID", testID).Msg("StartAttempt: service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// SubmitAnswer godoc
// @Summary Submit an answer for a question
// @Description Upserts the answer keyed by question_id. Rejected with 409 once the attempt is finalized, including when this very call trips the lazy time-limit expiry.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param answer body dto.SubmitAnswerRequest true "Answer payload"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Attempt or question not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt finalized"
// @Router /attempts/{attempt_id}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Attempt ID format"})
		return
	}

	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, err := c.attemptService.SubmitAnswer(uint(attemptID), req)
	if err != nil {
		log.Warn().Err(err).Uint64("attemptID", attemptID).Msg("SubmitAnswer: service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// FinishAttempt godoc
// @Summary Finish an attempt
// @Description Participant-initiated completion. Rejected once the attempt is already completed or auto-completed.
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid Attempt ID format"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already finalized"
// @Router /attempts/{attempt_id}/finish [post]
func (c *AttemptController) FinishAttempt(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Attempt ID format"})
		return
	}

	attempt, err := c.attemptService.Finish(uint(attemptID))
	if err != nil {
		log.Warn().Err(err).Uint64("attemptID", attemptID).Msg("FinishAttempt: service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// GetAttempt godoc
// @Summary Get attempt details with a fresh score
// @Description Returns the attempt, its answers and a score recomputed from the raw answers. Reading also applies the lazy time-limit expiry.
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptDetailResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid Attempt ID format"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /attempts/{attempt_id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Attempt ID format"})
		return
	}

	detail, err := c.attemptService.GetAttempt(uint(attemptID))
	if err != nil {
		log.Warn().Err(err).Uint64("attemptID", attemptID).Msg("GetAttempt: service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// GetScore godoc
// @Summary Get the freshly computed score of an attempt
// @Description Always recomputed from raw answers and question metadata; never served from a cache.
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.ComputedScore
// @Failure 400 {object} dto.ErrorResponse "Invalid Attempt ID format"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /attempts/{attempt_id}/score [get]
func (c *AttemptController) GetScore(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Attempt ID format"})
		return
	}

	score, err := c.attemptService.GetScore(uint(attemptID))
	if err != nil {
		log.Warn().Err(err).Uint64("attemptID", attemptID).Msg("GetScore: service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, score)
}

// GetUserScoreSummary godoc
// @Summary Get a user's multi-attempt score summary
// @Description Averages scaled scores (never raw scores) across the user's attempts; zero attempts yield zeros.
// @Tags Attempts
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} dto.UserScoreSummary
// @Failure 400 {object} dto.ErrorResponse "Invalid User ID format"
// @Router /users/{user_id}/score-summary [get]
func (c *AttemptController) GetUserScoreSummary(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid User ID format"})
		return
	}

	summary, err := c.attemptService.GetUserScoreSummary(uint(userID))
	if err != nil {
		log.Error().Err(err).Uint64("userID", userID).Msg("GetUserScoreSummary: service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}
