package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lingua-app/internal/domain/access"
)

func TestPlanKindExplicitWins(t *testing.T) {
	p := &Plan{Kind: "unlimited_credits", Interval: "", Credits: 10}
	assert.Equal(t, KindUnlimitedCredits, PlanKind(p))
}

func TestPlanKindFallbackShape(t *testing.T) {
	tests := []struct {
		name string
		plan *Plan
		want string
	}{
		{"nil plan", nil, KindNone},
		{"no interval is a pack", &Plan{Interval: ""}, KindCreditPack},
		{"credits imply a pack", &Plan{Interval: "month", Credits: 5}, KindCreditPack},
		{"monthly without credits", &Plan{Interval: "month"}, KindGroupPremium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlanKind(tt.plan))
		})
	}
}

func TestSubscriptionKindFor(t *testing.T) {
	kind, ok := SubscriptionKindFor(&Plan{Kind: KindGroupPremium, Interval: "month"})
	assert.True(t, ok)
	assert.Equal(t, access.KindGroupPremiumPlan, kind)

	kind, ok = SubscriptionKindFor(&Plan{Kind: KindUnlimitedCredits, Interval: "month"})
	assert.True(t, ok)
	assert.Equal(t, access.KindUnlimitedCredits, kind)

	_, ok = SubscriptionKindFor(&Plan{Kind: KindCreditPack})
	assert.False(t, ok)

	assert.False(t, IsSubscription(&Plan{Kind: KindCreditPack}))
	assert.True(t, IsSubscription(&Plan{Kind: KindGroupPremium, Interval: "month"}))
}
