package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripeStatus(t *testing.T) {
	s := func(v string) *string { return &v }

	assert.Equal(t, "none", NormalizeStripeStatus(nil))
	assert.Equal(t, "none", NormalizeStripeStatus(s("  ")))
	assert.Equal(t, "active", NormalizeStripeStatus(s("active")))
	assert.Equal(t, "past_due", NormalizeStripeStatus(s("unpaid")))
	assert.Equal(t, "canceled", NormalizeStripeStatus(s("incomplete_expired")))
	assert.Equal(t, "paused", NormalizeStripeStatus(s(" paused ")))
}
