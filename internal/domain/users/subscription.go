package users

import "time"

// Subscription is one purchased (or granted) entitlement window. A user may
// hold several at once; validity is evaluated per check, never cached.
type Subscription struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"index;not null"`
	Kind   string `gorm:"type:varchar(32);not null"` // access.SubscriptionKind values

	StartDate time.Time
	EndDate   time.Time `gorm:"index"`

	PlanID               *uint
	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;uniqueIndex:idx_subscriptions_stripe_sub_id"`
	StripeStatus         *string `gorm:"column:stripe_status"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
