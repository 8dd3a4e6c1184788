package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/psymetrics/sessioncore/internal/controller"
	"github.com/psymetrics/sessioncore/internal/dto"
	"github.com/psymetrics/sessioncore/internal/service"
	"github.com/rs/zerolog/log"
)

// SessionController exposes the stored-session lifecycle to admins.
type SessionController struct {
	sessionService service.SessionService
}

func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// CreateSession godoc
// @Summary (Admin) Create a session
// @Description Creates a session in draft. The time window is validated here: end_time must be after start_time.
// @Tags Admin - Sessions
// @Accept json
// @Produce json
// @Param session body dto.CreateSessionRequest true "Session definition"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed window or body"
// @Failure 404 {object} dto.ErrorResponse "Module test not found"
// @Router /admin/sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req dto.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	session, err := c.sessionService.CreateSession(req)
	if err != nil {
		log.Warn().Err(err).Msg("CreateSession: service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, session)
}

// GetSession godoc
// @Summary (Admin) Get a session with derived window fields
// @Description is_active, is_expired and effective_status are recomputed from the clock on every read; the stored status is never rewritten by time.
// @Tags Admin - Sessions
// @Produce json
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid Session ID format"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /admin/sessions/{session_id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	sessionID, err := strconv.ParseUint(ctx.Param("session_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Session ID format"})
		return
	}

	session, err := c.sessionService.GetSession(uint(sessionID))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, session)
}

// Activate godoc
// @Summary (Admin) Activate a draft session
// @Tags Admin - Sessions
// @Produce json
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session not in draft"
// @Router /admin/sessions/{session_id}/activate [post]
func (c *SessionController) Activate(ctx *gin.Context) {
	c.transition(ctx, c.sessionService.Activate)
}

// Complete godoc
// @Summary (Admin) Complete an active session
// @Tags Admin - Sessions
// @Produce json
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session not active"
// @Router /admin/sessions/{session_id}/complete [post]
func (c *SessionController) Complete(ctx *gin.Context) {
	c.transition(ctx, c.sessionService.Complete)
}

// Cancel godoc
// @Summary (Admin) Cancel a session
// @Tags Admin - Sessions
// @Produce json
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session already terminal"
// @Router /admin/sessions/{session_id}/cancel [post]
func (c *SessionController) Cancel(ctx *gin.Context) {
	c.transition(ctx, c.sessionService.Cancel)
}

func (c *SessionController) transition(ctx *gin.Context, fn func(uint) (*dto.SessionResponse, error)) {
	sessionID, err := strconv.ParseUint(ctx.Param("session_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Session ID format"})
		return
	}

	session, err := fn(uint(sessionID))
	if err != nil {
		log.Warn().Err(err).Uint64("sessionID", sessionID).Msg("Session transition: service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, session)
}
