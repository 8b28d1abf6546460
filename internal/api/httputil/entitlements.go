package httputil

import (
	"context"
	"log"
)

// EntitlementInvalidator is the slice of the entitlement cache the API layer
// needs after a mutation: drop the stale snapshot and let the next read
// re-prime it from the database.
type EntitlementInvalidator interface {
	Invalidate(ctx context.Context, userID uint) error
}

var entitlementCache EntitlementInvalidator

// SetEntitlementCache wires the cache at startup. Handlers tolerate it being
// unset (tests, cacheless deployments).
func SetEntitlementCache(inv EntitlementInvalidator) {
	entitlementCache = inv
}

func InvalidateEntitlements(ctx context.Context, userID uint) {
	if entitlementCache == nil {
		return
	}
	if err := entitlementCache.Invalidate(ctx, userID); err != nil {
		log.Printf("entitlement cache invalidation failed for user %d: %v", userID, err)
	}
}
