package middleware

import (
	"net/http"

	"lingua-app/database"
	"lingua-app/internal/domain/access"
	"lingua-app/internal/domain/users"
	"lingua-app/internal/enrollment"

	"github.com/gin-gonic/gin"
)

const EntitlementsKey = "entitlements"

// LoadEntitlements resolves the signed-in user's entitlement snapshot, cache
// first, and stores it in the request context. A cache miss falls back to the
// database and re-primes the cache; read paths downstream never touch the
// users table themselves. Booking commits always re-fetch fresh regardless.
func LoadEntitlements(cache enrollment.EntitlementStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if cache != nil {
			if snap, err := cache.Get(c.Request.Context(), userID); err == nil && snap != nil {
				c.Set(EntitlementsKey, *snap)
				c.Next()
				return
			}
		}

		var user users.User
		if err := database.DB.Preload("Subscriptions").First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		snap := user.Entitlements()
		if cache != nil {
			_ = cache.Set(c.Request.Context(), userID, snap)
		}
		c.Set(EntitlementsKey, snap)
		c.Next()
	}
}

// Entitlements returns the snapshot stored by LoadEntitlements.
func Entitlements(c *gin.Context) (access.Entitlements, bool) {
	v, ok := c.Get(EntitlementsKey)
	if !ok {
		return access.Entitlements{}, false
	}
	snap, ok := v.(access.Entitlements)
	return snap, ok
}
