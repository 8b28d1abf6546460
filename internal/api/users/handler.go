package users

import (
	"log"
	"net/http"
	"time"

	"lingua-app/database"
	"lingua-app/internal/api/httputil"
	"lingua-app/internal/app/http/middleware"
	"lingua-app/internal/domain/access"
	"lingua-app/internal/domain/users"
	infrastripe "lingua-app/internal/infra/stripe"

	"github.com/gin-gonic/gin"
)

func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.
		Preload("Subscriptions").
		First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	now := time.Now()

	// Prefer the snapshot LoadEntitlements already resolved for this request.
	snap, ok := middleware.Entitlements(c)
	if !ok {
		snap = user.Entitlements()
	}

	subs := make([]SubscriptionDTO, 0, len(user.Subscriptions))
	for _, s := range user.Subscriptions {
		subs = append(subs, SubscriptionDTO{
			Kind:      s.Kind,
			StartDate: s.StartDate,
			EndDate:   s.EndDate,
			Valid:     s.EndDate.After(now),
			Status:    infrastripe.NormalizeStripeStatus(s.StripeStatus),
		})
	}

	resp := MeResponse{
		User: UserDTO{
			ID:               user.ID,
			Email:            user.Email,
			Name:             user.Name,
			Lastname:         user.Lastname,
			Tel:              stringPtrIfNotEmpty(user.Tel),
			Role:             user.Role,
			IsVerified:       user.IsVerified,
			NativeLanguage:   user.NativeLanguage,
			LearningLanguage: user.LearningLanguage,
			Level:            user.Level,
		},
		Billing: BillingDTO{
			Subscriptions: subs,
			Credits:       snap.Credits,
			Trial:         buildTrialDTO(now, user.Subscriptions),
		},
		Access: AccessDTO{
			FreeAccess:       snap.FreeAccess,
			PremiumGroups:    buildDecisionDTO(access.CheckAccess(now, snap, access.ContentPremiumGroup, access.TierGroupPremium)),
			IndividualClass:  buildDecisionDTO(access.CheckAccess(now, snap, access.ContentPremiumClass, access.TierIndividualPremium)),
			GroupClass:       buildDecisionDTO(access.CheckAccess(now, snap, access.ContentPremiumClass, access.TierGroupPremium)),
			EnrolledClassIDs: snap.EnrolledClassIDs,
			JoinedGroupIDs:   snap.JoinedGroupIDs,
		},
	}

	c.JSON(http.StatusOK, resp)
}

func buildDecisionDTO(d access.Decision) DecisionDTO {
	return DecisionDTO{
		Granted: d.Granted,
		Reason:  string(d.Reason),
		Upsell:  d.NeedsUpsell(),
	}
}

func buildTrialDTO(now time.Time, subs []users.Subscription) *TrialDTO {
	for _, s := range subs {
		if s.Kind != string(access.KindFreeTrial) {
			continue
		}
		start, end := s.StartDate, s.EndDate
		dto := &TrialDTO{StartsAt: &start, EndsAt: &end}
		if end.After(now) {
			days := int(end.Sub(now).Hours() / 24)
			dto.DaysLeft = &days
		}
		return dto
	}
	return nil
}

func stringPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func UpdateProfile(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var body struct {
		Name             *string `json:"name"`
		Lastname         *string `json:"lastname"`
		Tel              *string `json:"tel"`
		NativeLanguage   *string `json:"native_language"`
		LearningLanguage *string `json:"learning_language"`
		Level            *string `json:"level"`
		AvatarImageID    *string `json:"avatar_image_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	updates := map[string]interface{}{}
	if body.Name != nil {
		updates["name"] = *body.Name
	}
	if body.Lastname != nil {
		updates["lastname"] = *body.Lastname
	}
	if body.Tel != nil {
		updates["tel"] = *body.Tel
	}
	if body.NativeLanguage != nil {
		updates["native_language"] = *body.NativeLanguage
	}
	if body.LearningLanguage != nil {
		updates["learning_language"] = *body.LearningLanguage
	}
	if body.Level != nil {
		updates["level"] = *body.Level
	}
	if body.AvatarImageID != nil {
		updates["avatar_image_id"] = *body.AvatarImageID
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := database.DB.Model(&users.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// ActivateFreeTrial flips the free_access flag during the trial window. The
// flag unlocks premium groups only; 1:1 premium classes stay gated.
func ActivateFreeTrial(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.Preload("Subscriptions").First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.FreeAccess {
		c.JSON(http.StatusOK, gin.H{"message": "Free trial already active"})
		return
	}

	now := time.Now()
	inTrial := false
	for _, s := range user.Subscriptions {
		if s.Kind == string(access.KindFreeTrial) && s.EndDate.After(now) {
			inTrial = true
			break
		}
	}
	if !inTrial {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your free trial period has ended", "upsell": true})
		return
	}

	if err := database.DB.Model(&users.User{}).Where("id = ?", userID).Update("free_access", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate free trial"})
		return
	}

	httputil.InvalidateEntitlements(c, userID)

	c.JSON(http.StatusOK, gin.H{"message": "Free trial activated. You now have access to all community groups."})
}

func VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	type Token struct {
		UserID int
	}
	var t Token
	if err := database.DB.Table("verification_tokens").Where("token = ?", token).First(&t).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := database.DB.Model(&users.User{}).Where("id = ?", t.UserID).Update("is_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify user"})
		return
	}

	// Best-effort cleanup; the user is verified either way.
	if err := database.DB.Exec("DELETE FROM verification_tokens WHERE token = ?", token).Error; err != nil {
		log.Printf("users: verification token cleanup failed: %v", err)
	}

	redirectURL := "http://localhost:5173/signin"
	c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}
