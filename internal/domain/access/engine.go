package access

import "time"

// RequiredKind is the closed mapping {content × tier -> subscription kind
// that unlocks it}. ok=false means no subscription kind applies (standard
// content is never subscription-gated).
func RequiredKind(content ContentType, tier ClassTier) (SubscriptionKind, bool) {
	switch content {
	case ContentPremiumGroup:
		return KindGroupPremiumPlan, true
	case ContentPremiumClass:
		switch tier {
		case TierGroupPremium:
			return KindGroupPremiumPlan, true
		case TierIndividualPremium:
			return KindUnlimitedCredits, true
		}
	}
	return "", false
}

// CheckAccess decides whether a user may access the given content. Rules are
// priority-ordered, first match wins:
//
//  1. free access + premium group   -> grant (community access)
//  2. free access + premium class   -> deny (the free trial deliberately
//     excludes 1:1 premium classes; community access only)
//  3. free access + anything else   -> grant
//  4. any subscription window with EndDate > now whose kind matches the
//     requested content -> grant
//  5. premium class + credits > 0   -> grant (deduction happens at commit
//     time, never here)
//  6. deny
//
// No side effects; the snapshot is never mutated.
func CheckAccess(now time.Time, e Entitlements, content ContentType, tier ClassTier) Decision {
	if e.FreeAccess {
		switch content {
		case ContentPremiumGroup:
			return Decision{Granted: true, Reason: ReasonFreeTrialAccess}
		case ContentPremiumClass:
			return Decision{Granted: false, Reason: ReasonFreeTrialExcludesIndividualClasses}
		default:
			return Decision{Granted: true, Reason: ReasonFreeAccessEnabled}
		}
	}

	if required, ok := RequiredKind(content, tier); ok {
		for _, w := range e.Subscriptions {
			if w.Kind == required && w.ValidAt(now) {
				return Decision{Granted: true, Reason: ReasonValidSubscription}
			}
		}
	}

	if content == ContentPremiumClass && e.Credits > 0 {
		return Decision{Granted: true, Reason: ReasonAvailableCredits}
	}

	return Decision{Granted: false, Reason: ReasonNoValidEntitlement}
}
