package httputil

import (
	"errors"
	"net/http"

	"lingua-app/internal/enrollment"

	"github.com/gin-gonic/gin"
)

// WriteEnrollmentError maps coordinator failures onto the HTTP surface.
// Denials carry the machine-readable reason and an upsell hint so the client
// can route to the purchase flow.
func WriteEnrollmentError(c *gin.Context, err error) {
	var e *enrollment.Error
	if !errors.As(err, &e) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Booking failed"})
		return
	}

	switch e.Code {
	case enrollment.CodeNotEligible:
		c.JSON(http.StatusForbidden, gin.H{
			"error":  "You don't have access to this content",
			"reason": string(e.Reason),
			"upsell": e.Upsell(),
		})
	case enrollment.CodeAlreadyEnrolled:
		c.JSON(http.StatusConflict, gin.H{"error": "You are already enrolled"})
	case enrollment.CodeClassFull:
		c.JSON(http.StatusConflict, gin.H{"error": "This class is full"})
	case enrollment.CodeInsufficientCredits:
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":  "Not enough credits for this booking",
			"upsell": true,
		})
	case enrollment.CodeSchedulingFailed:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not compute the class schedule"})
	case enrollment.CodeStorage:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Booking failed"})
	}
}
