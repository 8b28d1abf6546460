package stripewebhooks

import (
	"time"

	"lingua-app/database"
	"lingua-app/internal/api/httputil"
	"lingua-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

// A deleted subscription closes the window at the period end; access lapses
// on its own once end_date passes.
func handleSubscriptionDeleted(c *gin.Context, sub *stripe.Subscription) error {
	if sub.ID == "" {
		return nil
	}

	status := string(sub.Status)
	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0)

	var window users.Subscription
	if err := database.DB.Where("stripe_subscription_id = ?", sub.ID).First(&window).Error; err != nil {
		if userID := userIDFromMetadata(sub.Metadata); userID != 0 {
			httputil.InvalidateEntitlements(c, userID)
		}
		return nil
	}

	if err := database.DB.Model(&window).Updates(map[string]interface{}{
		"stripe_status": status,
		"end_date":      periodEnd,
	}).Error; err != nil {
		return err
	}

	httputil.InvalidateEntitlements(c, window.UserID)
	return nil
}
