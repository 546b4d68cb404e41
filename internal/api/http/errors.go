package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qb9r2873g/voice-room/internal/domain"
)

// respondError maps the domain taxonomy to HTTP statuses. Store failures
// collapse into a generic 500 so storage details never reach callers.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, domain.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrMeetingEnded):
		ctx.JSON(http.StatusGone, gin.H{"error": "meeting has ended"})
	case errors.Is(err, domain.ErrMeetingFull):
		ctx.JSON(http.StatusConflict, gin.H{"error": "meeting is full"})
	case errors.Is(err, domain.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": "conflicting update, retry"})
	case errors.Is(err, domain.ErrCodeExhausted):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not allocate a meeting code"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
