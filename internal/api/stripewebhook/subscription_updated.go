package stripewebhooks

import (
	"fmt"
	"strconv"
	"time"

	"lingua-app/database"
	"lingua-app/internal/api/httputil"
	"lingua-app/internal/domain/plans"
	"lingua-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

func handleSubscriptionUpdated(c *gin.Context, sub *stripe.Subscription) error {
	if sub.ID == "" || sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return fmt.Errorf("subscription missing id/items/price")
	}

	subscriptionID := sub.ID
	activePriceID := sub.Items.Data[0].Price.ID
	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0)
	status := string(sub.Status)

	var window users.Subscription
	if err := database.DB.Where("stripe_subscription_id = ?", subscriptionID).First(&window).Error; err != nil {
		// acknowledge to avoid Stripe retries if the window was never opened here
		return nil
	}

	updates := map[string]interface{}{
		"end_date":      periodEnd,
		"stripe_status": status,
	}

	// Plan changes through the billing portal re-key the window's kind.
	var plan plans.Plan
	if err := database.DB.Where("stripe_price_id = ?", activePriceID).First(&plan).Error; err == nil {
		if kind, ok := plans.SubscriptionKindFor(&plan); ok {
			updates["kind"] = string(kind)
			updates["plan_id"] = plan.ID
		}
	}

	if err := database.DB.Model(&window).Updates(updates).Error; err != nil {
		return err
	}

	httputil.InvalidateEntitlements(c, window.UserID)
	return nil
}

func userIDFromMetadata(md map[string]string) uint {
	if md == nil {
		return 0
	}
	s := md["user_id"]
	if s == "" {
		return 0
	}
	uid, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(uid)
}
