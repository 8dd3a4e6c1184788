// Package controller holds helpers shared by the admin and user
// controller packages.
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psymetrics/sessioncore/internal/apperr"
	"github.com/psymetrics/sessioncore/internal/dto"
)

// StatusFor maps a service error to its HTTP status via the apperr
// sentinels.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes the mapped status with the error message. Internal
// errors keep their detail out of the response body.
func RespondError(ctx *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		ctx.JSON(status, dto.ErrorResponse{Message: "internal server error"})
		return
	}
	ctx.JSON(status, dto.ErrorResponse{Message: err.Error()})
}
