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

// ParticipantController exposes session registration to participant
// clients.
type ParticipantController struct {
	participantService service.ParticipantService
}

func NewParticipantController(participantService service.ParticipantService) *ParticipantController {
	return &ParticipantController{participantService: participantService}
}

// Register godoc
// @Summary Register a user into a session
// @Description Idempotent registration; repeating the call returns the existing participant unchanged. Rejected after the late-entry grace window when the session does not allow late entry.
// @Tags Participants
// @Accept json
// @Produce json
// @Param session_id path int true "Session ID"
// @Param registration body dto.RegisterParticipantRequest true "User to register"
// @Success 200 {object} dto.ParticipantResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Late entry window passed"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session closed or full"
// @Router /sessions/{session_id}/participants [post]
func (c *ParticipantController) Register(ctx *gin.Context) {
	sessionID, err := strconv.ParseUint(ctx.Param("session_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Session ID format"})
		return
	}

	var req dto.RegisterParticipantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	participant, err := c.participantService.Register(uint(sessionID), req.UserID)
	if err != nil {
		log.Warn().Err(err).Uint64("sessionID", sessionID).Uint("userID", req.UserID).Msg("Register: service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, participant)
}
