package stripewebhooks

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"lingua-app/database"
	"lingua-app/internal/api/httputil"
	"lingua-app/internal/domain/billing"
	"lingua-app/internal/domain/plans"
	"lingua-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/subscription"
	"gorm.io/gorm"
)

func handleCheckoutSessionCompleted(c *gin.Context, session *stripe.CheckoutSession) error {
	// Fetch full session with expansions
	fullSession, err := checkoutsession.Get(session.ID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Expand: []*string{
				stripe.String("subscription"),
				stripe.String("customer"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to fetch expanded checkout session: %w", err)
	}

	if fullSession.Mode == stripe.CheckoutSessionModePayment {
		return fulfillCreditPack(c, fullSession)
	}
	return fulfillSubscription(c, fullSession)
}

// fulfillCreditPack grants the pack's credits as one atomic increment and
// records the payment. The payment row's unique session id makes redelivered
// webhooks a no-op.
func fulfillCreditPack(c *gin.Context, session *stripe.CheckoutSession) error {
	userID, err := userIDFromMetadataOrRef(session.Metadata, session.ClientReferenceID)
	if err != nil {
		return err
	}

	planID, err := planIDFromMetadata(session.Metadata)
	if err != nil {
		return err
	}

	var plan plans.Plan
	if err := database.DB.First(&plan, planID).Error; err != nil {
		return fmt.Errorf("plan not found for id=%d: %w", planID, err)
	}
	if plan.Credits <= 0 {
		return fmt.Errorf("plan %d is not a credit pack", plan.ID)
	}

	payment := billing.Payment{
		UserID:          userID,
		PlanID:          &plan.ID,
		StripeSessionID: session.ID,
		AmountEUR:       float64(session.AmountTotal) / 100.0,
		CreditsGranted:  plan.Credits,
		Status:          "paid",
	}

	// The payment row carries the dedup key, so it must commit together with
	// the credit grant: a failed grant rolls the row back and the redelivered
	// event retries both writes.
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return tx.Exec(
			`UPDATE users SET credits = credits + ?, updated_at = now() WHERE id = ?`,
			plan.Credits, userID,
		).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// redelivered event, already fulfilled
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fulfill credit pack: %w", err)
	}

	httputil.InvalidateEntitlements(c, userID)
	fmt.Printf("✅ Granted %d credits to user %d\n", plan.Credits, userID)
	return nil
}

// fulfillSubscription opens (or refreshes) the entitlement window for the
// purchased plan and records the payment.
func fulfillSubscription(c *gin.Context, session *stripe.CheckoutSession) error {
	if session.Subscription == nil || session.Subscription.ID == "" {
		return errors.New("checkout session missing subscription")
	}
	subscriptionID := session.Subscription.ID

	subData, err := subscription.Get(subscriptionID, nil)
	if err != nil || subData == nil || subData.Items == nil || len(subData.Items.Data) == 0 || subData.Items.Data[0].Price == nil {
		return fmt.Errorf("failed to fetch subscription items: %w", err)
	}

	userID, err := userIDFromMetadataOrRef(subData.Metadata, session.ClientReferenceID)
	if err != nil {
		return err
	}

	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	// Map Stripe price -> Plan -> entitlement kind
	priceID := subData.Items.Data[0].Price.ID
	var plan plans.Plan
	if err := database.DB.Where("stripe_price_id = ?", priceID).First(&plan).Error; err != nil {
		return fmt.Errorf("plan not found for stripe price_id=%s: %w", priceID, err)
	}
	kind, ok := plans.SubscriptionKindFor(&plan)
	if !ok {
		return fmt.Errorf("plan %d (%s) is not a subscription plan", plan.ID, plan.Kind)
	}

	now := time.Now()
	periodEnd := time.Unix(subData.CurrentPeriodEnd, 0)
	status := string(subData.Status)

	// Upsert the window keyed on the Stripe subscription id.
	var window users.Subscription
	err = database.DB.Where("stripe_subscription_id = ?", subscriptionID).First(&window).Error
	if err != nil {
		window = users.Subscription{
			UserID:               userID,
			Kind:                 string(kind),
			StartDate:            now,
			EndDate:              periodEnd,
			PlanID:               &plan.ID,
			StripeSubscriptionID: &subscriptionID,
			StripeStatus:         &status,
		}
		if err := database.DB.Create(&window).Error; err != nil {
			return fmt.Errorf("failed to create subscription window: %w", err)
		}
	} else {
		if err := database.DB.Model(&window).Updates(map[string]interface{}{
			"kind":          string(kind),
			"end_date":      periodEnd,
			"plan_id":       plan.ID,
			"stripe_status": status,
		}).Error; err != nil {
			return fmt.Errorf("failed to refresh subscription window: %w", err)
		}
	}

	payment := billing.Payment{
		UserID:               userID,
		PlanID:               &plan.ID,
		StripeSessionID:      session.ID,
		StripeSubscriptionID: &subscriptionID,
		AmountEUR:            float64(session.AmountTotal) / 100.0,
		Status:               "paid",
	}
	if err := database.DB.Create(&payment).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	httputil.InvalidateEntitlements(c, userID)
	return nil
}

func userIDFromMetadataOrRef(md map[string]string, clientRef string) (uint, error) {
	userIDStr := ""
	if md != nil {
		userIDStr = md["user_id"]
	}
	if userIDStr == "" {
		userIDStr = clientRef
	}
	if userIDStr == "" {
		return 0, errors.New("missing user_id (metadata.user_id or client_reference_id)")
	}

	uid64, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user_id %q: %w", userIDStr, err)
	}
	return uint(uid64), nil
}

func planIDFromMetadata(md map[string]string) (uint, error) {
	if md == nil || md["plan_id"] == "" {
		return 0, errors.New("missing plan_id metadata")
	}
	pid64, err := strconv.ParseUint(md["plan_id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid plan_id %q: %w", md["plan_id"], err)
	}
	return uint(pid64), nil
}
