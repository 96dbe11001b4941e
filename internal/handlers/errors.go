package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripslot/attractions-backend/internal/database"
	"github.com/tripslot/attractions-backend/internal/services"
)

// statusForError maps service errors onto HTTP statuses. Unknown errors
// fall through to 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAttractionNotFound),
		errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrReviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAccountLocked):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrGuestLimit),
		errors.Is(err, services.ErrGuestCountInvalid),
		errors.Is(err, services.ErrInvalidDateFormat),
		errors.Is(err, services.ErrDateOutOfRange),
		errors.Is(err, services.ErrInsufficientSlots),
		errors.Is(err, services.ErrInsufficientSlotsForUpdate):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrCostCeiling),
		errors.Is(err, services.ErrReviewNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidStatus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrConflict), database.IsUniqueViolation(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error response for a service failure. Internal
// errors are logged and masked.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).WithError(err).Error("Request failed")
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	if database.IsUniqueViolation(err) {
		c.JSON(status, gin.H{"error": "Resource already exists"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
