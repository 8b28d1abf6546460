package plans

type Plan struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string
	Kind          string `gorm:"column:kind"` // "group_premium" | "unlimited_credits" | "credit_pack"
	PriceEUR      float64
	StripePriceID string `gorm:"column:stripe_price_id;not null;uniqueIndex:idx_plans_stripe_price_id"`
	Interval      string // month/year for subscriptions, empty for credit packs
	Credits       int    `gorm:"not null;default:0"` // credits granted per credit-pack purchase
}
