package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func groupPremiumSub(end time.Time) SubscriptionWindow {
	return SubscriptionWindow{
		Kind:      KindGroupPremiumPlan,
		StartDate: end.AddDate(0, -1, 0),
		EndDate:   end,
	}
}

func TestCheckAccess_FreeTrialAsymmetry(t *testing.T) {
	// Free access always grants premium groups and always denies premium
	// classes, regardless of credits or subscriptions.
	snapshots := []Entitlements{
		{FreeAccess: true},
		{FreeAccess: true, Credits: 50},
		{FreeAccess: true, Subscriptions: []SubscriptionWindow{groupPremiumSub(testNow.AddDate(1, 0, 0))}},
	}

	for _, e := range snapshots {
		d := CheckAccess(testNow, e, ContentPremiumGroup, TierGroupPremium)
		assert.True(t, d.Granted)
		assert.Equal(t, ReasonFreeTrialAccess, d.Reason)

		d = CheckAccess(testNow, e, ContentPremiumClass, TierIndividualPremium)
		assert.False(t, d.Granted)
		assert.Equal(t, ReasonFreeTrialExcludesIndividualClasses, d.Reason)
	}
}

func TestCheckAccess_FreeAccessOtherContent(t *testing.T) {
	d := CheckAccess(testNow, Entitlements{FreeAccess: true}, ContentStandard, TierGroupStandard)
	assert.True(t, d.Granted)
	assert.Equal(t, ReasonFreeAccessEnabled, d.Reason)
}

func TestCheckAccess_SubscriptionValidityBoundary(t *testing.T) {
	tests := []struct {
		name    string
		end     time.Time
		granted bool
	}{
		{"ends before now", testNow.Add(-time.Hour), false},
		{"ends exactly now", testNow, false},
		{"ends just after now", testNow.Add(time.Second), true},
		{"ends far in the future", testNow.AddDate(1, 0, 0), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := Entitlements{Subscriptions: []SubscriptionWindow{groupPremiumSub(tc.end)}}
			d := CheckAccess(testNow, e, ContentPremiumGroup, TierGroupPremium)
			assert.Equal(t, tc.granted, d.Granted)
			if tc.granted {
				assert.Equal(t, ReasonValidSubscription, d.Reason)
			} else {
				assert.Equal(t, ReasonNoValidEntitlement, d.Reason)
			}
		})
	}
}

func TestCheckAccess_StartDateIrrelevant(t *testing.T) {
	// A future StartDate does not matter as long as EndDate is ahead.
	e := Entitlements{Subscriptions: []SubscriptionWindow{{
		Kind:      KindGroupPremiumPlan,
		StartDate: testNow.AddDate(0, 0, 5),
		EndDate:   testNow.AddDate(0, 1, 0),
	}}}
	d := CheckAccess(testNow, e, ContentPremiumGroup, TierGroupPremium)
	assert.True(t, d.Granted)
}

func TestCheckAccess_SubscriptionKindMustMatch(t *testing.T) {
	// A group-premium plan does not unlock individual premium classes.
	e := Entitlements{Subscriptions: []SubscriptionWindow{groupPremiumSub(testNow.AddDate(0, 1, 0))}}

	d := CheckAccess(testNow, e, ContentPremiumClass, TierIndividualPremium)
	assert.False(t, d.Granted)

	// ...but does unlock group premium classes.
	d = CheckAccess(testNow, e, ContentPremiumClass, TierGroupPremium)
	assert.True(t, d.Granted)
	assert.Equal(t, ReasonValidSubscription, d.Reason)
}

func TestCheckAccess_CreditsFallback(t *testing.T) {
	e := Entitlements{Credits: 1}

	d := CheckAccess(testNow, e, ContentPremiumClass, TierIndividualPremium)
	assert.True(t, d.Granted)
	assert.Equal(t, ReasonAvailableCredits, d.Reason)

	// Credits never unlock premium groups.
	d = CheckAccess(testNow, e, ContentPremiumGroup, TierGroupPremium)
	assert.False(t, d.Granted)
	assert.Equal(t, ReasonNoValidEntitlement, d.Reason)
}

func TestCheckAccess_NeverMutatesSnapshot(t *testing.T) {
	e := Entitlements{Credits: 3, Subscriptions: []SubscriptionWindow{groupPremiumSub(testNow.AddDate(0, 1, 0))}}

	for i := 0; i < 10; i++ {
		_ = CheckAccess(testNow, e, ContentPremiumClass, TierIndividualPremium)
		_ = CheckAccess(testNow, e, ContentPremiumGroup, TierGroupPremium)
	}

	assert.Equal(t, 3, e.Credits)
	require.Len(t, e.Subscriptions, 1)
}

func TestCheckAccess_EmptySnapshotDenies(t *testing.T) {
	d := CheckAccess(testNow, Entitlements{}, ContentPremiumClass, TierIndividualPremium)
	assert.False(t, d.Granted)
	assert.Equal(t, ReasonNoValidEntitlement, d.Reason)
}

func TestRequiredKind(t *testing.T) {
	kind, ok := RequiredKind(ContentPremiumGroup, TierGroupPremium)
	require.True(t, ok)
	assert.Equal(t, KindGroupPremiumPlan, kind)

	kind, ok = RequiredKind(ContentPremiumClass, TierIndividualPremium)
	require.True(t, ok)
	assert.Equal(t, KindUnlimitedCredits, kind)

	_, ok = RequiredKind(ContentStandard, TierGroupStandard)
	assert.False(t, ok)
}
