package admin

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/psymetrics/sessioncore/internal/controller"
	"github.com/psymetrics/sessioncore/internal/dto"
	"github.com/psymetrics/sessioncore/internal/service"
	"github.com/rs/zerolog/log"
)

// MonitorController serves the polling live dashboards. Every response
// is re-derived from current rows; clients choose their own poll
// cadence.
type MonitorController struct {
	liveStats service.LiveStatsService
}

func NewMonitorController(liveStats service.LiveStatsService) *MonitorController {
	return &MonitorController{liveStats: liveStats}
}

// GetLiveStats godoc
// @Summary (Admin) Live session statistics
// @Description Session-wide counts, completion rate and per-module breakdown, recomputed on every poll. Reading also runs the lazy no-show sweep.
// @Tags Admin - Live Monitor
// @Produce json
// @Param session_id path int true "Session ID"
// @Success 200 {object} dto.SessionLiveStats
// @Failure 400 {object} dto.ErrorResponse "Invalid Session ID format"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /admin/sessions/{session_id}/live-test/stats [get]
func (c *MonitorController) GetLiveStats(ctx *gin.Context) {
	sessionID, err := strconv.ParseUint(ctx.Param("session_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Session ID format"})
		return
	}

	stats, err := c.liveStats.SessionStats(uint(sessionID))
	if err != nil {
		log.Warn().Err(err).Uint64("sessionID", sessionID).Msg("GetLiveStats: service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// GetLiveParticipants godoc
// @Summary (Admin) Per-participant live progress
// @Description Progress percentage, pace-based estimated completion time and the at-risk flag for every participant.
// @Tags Admin - Live Monitor
// @Produce json
// @Param session_id path int true "Session ID"
// @Success 200 {array} dto.ParticipantProgress
// @Failure 400 {object} dto.ErrorResponse "Invalid Session ID format"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /admin/sessions/{session_id}/live-test/participants [get]
func (c *MonitorController) GetLiveParticipants(ctx *gin.Context) {
	sessionID, err := strconv.ParseUint(ctx.Param("session_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Session ID format"})
		return
	}

	rows, err := c.liveStats.ParticipantProgress(uint(sessionID))
	if err != nil {
		log.Warn().Err(err).Uint64("sessionID", sessionID).Msg("GetLiveParticipants: service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, rows)
}

// GetOverview godoc
// @Summary (Admin) Bulk live overview
// @Description Aggregates several sessions at once. Per-session failures are listed under failed_session_ids instead of failing the batch.
// @Tags Admin - Live Monitor
// @Produce json
// @Param session_ids query string true "Comma-separated session IDs"
// @Success 200 {object} dto.LiveOverview
// @Failure 400 {object} dto.ErrorResponse "Missing or malformed session_ids"
// @Router /admin/live-test/overview [get]
func (c *MonitorController) GetOverview(ctx *gin.Context) {
	raw := ctx.Query("session_ids")
	if raw == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "session_ids query parameter is required"})
		return
	}

	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid session id: " + part})
			return
		}
		ids = append(ids, uint(id))
	}

	ctx.JSON(http.StatusOK, c.liveStats.Overview(ids))
}
