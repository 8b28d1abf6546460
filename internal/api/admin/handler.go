package admin

import (
	"net/http"
	"strconv"
	"time"

	"lingua-app/database"
	"lingua-app/internal/api/httputil"
	"lingua-app/internal/domain/billing"
	"lingua-app/internal/domain/classes"
	"lingua-app/internal/domain/groups"
	"lingua-app/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Lastname         string  `json:"lastname"`
	Tel              string  `json:"tel"`
	Email            string  `json:"email"`
	Role             string  `json:"role"`
	IsVerified       bool    `json:"is_verified"`
	FreeAccess       bool    `json:"free_access"`
	Credits          int     `json:"credits"`
	LearningLanguage string  `json:"learning_language"`
	EnrolledClasses  int     `json:"enrolled_classes"`
	JoinedGroups     int     `json:"joined_groups"`
	StripeCustomerID *string `json:"stripe_customer_id,omitempty"`
}

type AdminPayment struct {
	ID             uint    `json:"id"`
	Email          string  `json:"email"`
	PlanName       *string `json:"plan_name,omitempty"`
	AmountEUR      float64 `json:"amount_eur"`
	CreditsGranted int     `json:"credits_granted"`
	Status         string  `json:"status"`
	InvoiceID      *string `json:"invoice_id,omitempty"`
	ReceiptURL     *string `json:"receipt_url,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers      int            `json:"total_users"`
	TotalClasses    int            `json:"total_classes"`
	TotalGroups     int            `json:"total_groups"`
	TotalRevenue    float64        `json:"total_revenue"`
	RecentRevenue   float64        `json:"recent_revenue"`
	ActiveWindows   int            `json:"active_subscriptions"`
	WindowsPerKind  map[string]int `json:"subscriptions_per_kind"`
	CreditsOutstand int            `json:"credits_outstanding"`
}

func AdminDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the admin dashboard 👑",
	})
}

func ListAllUsers(c *gin.Context) {
	var all []users.User
	err := database.DB.Find(&all).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	var adminUsers []AdminUser
	for _, u := range all {
		adminUsers = append(adminUsers, AdminUser{
			ID:               u.ID,
			Name:             u.Name,
			Lastname:         u.Lastname,
			Tel:              u.Tel,
			Email:            u.Email,
			Role:             u.Role,
			IsVerified:       u.IsVerified,
			FreeAccess:       u.FreeAccess,
			Credits:          u.Credits,
			LearningLanguage: u.LearningLanguage,
			EnrolledClasses:  len(u.EnrolledClassIDs),
			JoinedGroups:     len(u.JoinedGroupIDs),
			StripeCustomerID: u.StripeCustomerID,
		})
	}

	c.JSON(http.StatusOK, adminUsers)
}

func ListAllPayments(c *gin.Context) {
	var payments []billing.Payment
	err := database.DB.Preload("User").Preload("Plan").Order("created_at DESC").Find(&payments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	var result []AdminPayment
	for _, p := range payments {
		var planName *string
		if p.Plan != nil {
			planName = &p.Plan.Name
		}
		result = append(result, AdminPayment{
			ID:             p.ID,
			Email:          p.User.Email,
			PlanName:       planName,
			AmountEUR:      p.AmountEUR,
			CreditsGranted: p.CreditsGranted,
			Status:         p.Status,
			InvoiceID:      p.InvoiceID,
			ReceiptURL:     p.ReceiptURL,
			CreatedAt:      p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, result)
}

func GetAdminStats(c *gin.Context) {
	var stats AdminStats

	var totalUsers, totalClasses, totalGroups, activeWindows int64
	var totalRevenue, recentRevenue float64
	var creditsOut int64

	database.DB.Model(&users.User{}).Count(&totalUsers)
	database.DB.Model(&classes.Class{}).Count(&totalClasses)
	database.DB.Model(&groups.Group{}).Count(&totalGroups)
	database.DB.Model(&billing.Payment{}).Where("status = ?", "paid").Select("COALESCE(SUM(amount_eur), 0)").Scan(&totalRevenue)

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	database.DB.Model(&billing.Payment{}).
		Where("status = ? AND created_at >= ?", "paid", thirtyDaysAgo).
		Select("COALESCE(SUM(amount_eur), 0)").Scan(&recentRevenue)

	database.DB.Model(&users.Subscription{}).Where("end_date > ?", time.Now()).Count(&activeWindows)
	database.DB.Model(&users.User{}).Select("COALESCE(SUM(credits), 0)").Scan(&creditsOut)

	stats.TotalUsers = int(totalUsers)
	stats.TotalClasses = int(totalClasses)
	stats.TotalGroups = int(totalGroups)
	stats.TotalRevenue = totalRevenue
	stats.RecentRevenue = recentRevenue
	stats.ActiveWindows = int(activeWindows)
	stats.CreditsOutstand = int(creditsOut)

	type KindCount struct {
		Kind  string
		Count int
	}
	var counts []KindCount

	database.DB.
		Table("subscriptions").
		Select("kind, COUNT(id) as count").
		Where("end_date > ?", time.Now()).
		Group("kind").
		Scan(&counts)

	stats.WindowsPerKind = map[string]int{}
	for _, kc := range counts {
		stats.WindowsPerKind[kc.Kind] = kc.Count
	}

	c.JSON(http.StatusOK, stats)
}

func GetUserDetails(c *gin.Context) {
	userID := c.Param("id")

	var user users.User
	if err := database.DB.Preload("Subscriptions").First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var payments []billing.Payment
	if err := database.DB.Preload("Plan").Where("user_id = ?", userID).Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"payments": payments,
	})
}

// GrantCredits manually adjusts a user's balance (support flows).
func GrantCredits(c *gin.Context) {
	userID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	userID := uint(userID64)

	var body struct {
		Credits int `json:"credits" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Credits == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "credits must be a non-zero integer"})
		return
	}

	res := database.DB.Exec(
		`UPDATE users SET credits = credits + ?, updated_at = now() WHERE id = ? AND credits + ? >= 0`,
		body.Credits, userID, body.Credits,
	)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust credits"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Adjustment would make the balance negative"})
		return
	}

	// Drop the cached snapshot so access checks see the new balance.
	httputil.InvalidateEntitlements(c, userID)

	c.JSON(http.StatusOK, gin.H{"message": "Credits adjusted"})
}
