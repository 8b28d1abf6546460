package access

import "time"

type ContentType string

const (
	ContentPremiumGroup ContentType = "premium_group"
	ContentPremiumClass ContentType = "premium_class"
	ContentStandard     ContentType = "standard"
)

type ClassTier string

const (
	TierIndividualPremium ClassTier = "individual_premium"
	TierGroupPremium      ClassTier = "group_premium"
	TierGroupStandard     ClassTier = "group_standard"
)

func (t ClassTier) IsValid() bool {
	switch t {
	case TierIndividualPremium, TierGroupPremium, TierGroupStandard:
		return true
	default:
		return false
	}
}

// IsPremium reports whether classes of this tier are gated content.
func (t ClassTier) IsPremium() bool {
	return t == TierIndividualPremium || t == TierGroupPremium
}

// ContentFor maps a class tier to the coarse content category used by the
// eligibility check.
func ContentFor(t ClassTier) ContentType {
	switch t {
	case TierIndividualPremium, TierGroupPremium:
		return ContentPremiumClass
	default:
		return ContentStandard
	}
}

type SubscriptionKind string

const (
	KindGroupPremiumPlan SubscriptionKind = "group_premium_plan"
	KindUnlimitedCredits SubscriptionKind = "unlimited_credits"
	KindFreeTrial        SubscriptionKind = "free_trial"
)

// SubscriptionWindow is one subscription as the engine sees it. A window is
// valid iff EndDate is strictly after the evaluation time; StartDate plays no
// part in validity.
type SubscriptionWindow struct {
	Kind      SubscriptionKind `json:"kind"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
}

func (w SubscriptionWindow) ValidAt(now time.Time) bool {
	return w.EndDate.After(now)
}

// Entitlements is the read-only snapshot of a user's access-relevant state.
// It is passed by value into CheckAccess and never mutated there.
type Entitlements struct {
	FreeAccess       bool                 `json:"free_access"`
	Credits          int                  `json:"credits"`
	Subscriptions    []SubscriptionWindow `json:"subscriptions"`
	EnrolledClassIDs []string             `json:"enrolled_class_ids"`
	JoinedGroupIDs   []string             `json:"joined_group_ids"`
}

type Reason string

const (
	ReasonFreeTrialAccess                    Reason = "free_trial_access"
	ReasonFreeTrialExcludesIndividualClasses Reason = "free_trial_excludes_individual_classes"
	ReasonFreeAccessEnabled                  Reason = "free_access_enabled"
	ReasonValidSubscription                  Reason = "valid_subscription"
	ReasonAvailableCredits                   Reason = "available_credits"
	ReasonNoValidEntitlement                 Reason = "no_valid_entitlement"
)

type Decision struct {
	Granted bool   `json:"granted"`
	Reason  Reason `json:"reason"`
}

// NeedsUpsell reports whether a denial should route the user to the purchase
// flow (subscription/credit related) rather than a plain error message.
func (d Decision) NeedsUpsell() bool {
	if d.Granted {
		return false
	}
	switch d.Reason {
	case ReasonNoValidEntitlement, ReasonFreeTrialExcludesIndividualClasses:
		return true
	default:
		return false
	}
}
