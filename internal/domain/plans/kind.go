package plans

import (
	"strings"

	"lingua-app/internal/domain/access"
)

// Kind constants (single source of truth)
const (
	KindNone             = "none"
	KindGroupPremium     = "group_premium"
	KindUnlimitedCredits = "unlimited_credits"
	KindCreditPack       = "credit_pack"
)

// PlanKind returns the effective kind for a plan.
// Priority:
// 1. Explicit Kind stored in DB
// 2. Fallback inference from shape (legacy safety net)
func PlanKind(p *Plan) string {
	if p == nil {
		return KindNone
	}

	kind := strings.ToLower(strings.TrimSpace(p.Kind))
	switch kind {
	case KindGroupPremium, KindUnlimitedCredits, KindCreditPack:
		return kind
	}

	// Fallback: a plan with no billing interval can only be a one-off pack.
	if p.Interval == "" || p.Credits > 0 {
		return KindCreditPack
	}
	return KindGroupPremium
}

// IsSubscription reports whether purchasing the plan opens a subscription
// window (as opposed to a one-off credit pack).
func IsSubscription(p *Plan) bool {
	switch PlanKind(p) {
	case KindGroupPremium, KindUnlimitedCredits:
		return true
	default:
		return false
	}
}

// SubscriptionKindFor maps a subscription plan to the access engine's
// subscription kind. ok=false for credit packs and unknown plans.
func SubscriptionKindFor(p *Plan) (access.SubscriptionKind, bool) {
	switch PlanKind(p) {
	case KindGroupPremium:
		return access.KindGroupPremiumPlan, true
	case KindUnlimitedCredits:
		return access.KindUnlimitedCredits, true
	default:
		return "", false
	}
}
