package routes

import (
	"context"

	adminapi "lingua-app/internal/api/admin"
	authapi "lingua-app/internal/api/auth"
	"lingua-app/internal/api/billing"
	classesapi "lingua-app/internal/api/classes"
	groupsapi "lingua-app/internal/api/groups"
	"lingua-app/internal/api/httputil"
	"lingua-app/internal/api/plans"
	stripewebhooks "lingua-app/internal/api/stripewebhook"
	"lingua-app/internal/api/users"
	"lingua-app/internal/app/http/middleware"
	"lingua-app/internal/chat"
	"lingua-app/internal/enrollment"
	"lingua-app/internal/storage"

	"lingua-app/database"

	"github.com/gin-gonic/gin"
)

// EntitlementCache is what the HTTP layer needs from the session cache:
// the coordinator's read/write pair plus invalidation for billing events.
type EntitlementCache interface {
	enrollment.EntitlementStore
	Invalidate(ctx context.Context, userID uint) error
}

func RegisterRoutes(r *gin.Engine, cache EntitlementCache) {
	// wiring
	classStore := storage.NewClassStore(database.DB)
	groupStore := storage.NewGroupStore(database.DB)
	userStore := storage.NewUserStore(database.DB)
	tutorStore := storage.NewTutorStore(database.DB)

	chatSvc := chat.NewService(database.DB)
	hub := chat.NewHub(chatSvc)
	go hub.Run()

	coordinator := enrollment.New(classStore, groupStore, userStore, tutorStore, chatSvc, cache)

	classesapi.Init(coordinator, chatSvc)
	groupsapi.Init(coordinator, chatSvc, groupStore)
	httputil.SetEntitlementCache(cache)

	r.POST("/webhook", stripewebhooks.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/plans", plans.ListPlans)
	public.GET("/verify", users.VerifyEmail)
	public.POST("/resend-verification", authapi.ResendVerification)
	public.POST("/request-password-reset", authapi.RequestPasswordReset)
	public.POST("/reset-password", authapi.ResetPassword)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())

	auth.GET("/me", middleware.LoadEntitlements(cache), users.GetCurrentUser)
	auth.PUT("/me", users.UpdateProfile)
	auth.POST("/free-trial/activate", users.ActivateFreeTrial)
	auth.POST("/change-password", authapi.ChangePassword)

	auth.GET("/classes", classesapi.ListClasses)
	auth.GET("/classes/:id", classesapi.GetClass)
	auth.GET("/classes/:id/slots", classesapi.PreviewSlots)
	auth.POST("/classes", classesapi.CreateClass)
	auth.POST("/classes/:id/book", classesapi.BookClass)

	auth.GET("/groups", groupsapi.ListGroups)
	auth.GET("/groups/:id", groupsapi.GetGroup)
	auth.POST("/groups/:id/join", groupsapi.JoinGroup)

	auth.GET("/payments", billing.GetPaymentHistory)
	auth.POST("/create-checkout-session", billing.CreateCheckoutSession)
	auth.POST("/billing-portal", billing.CreateBillingPortal)

	auth.GET("/ws", hub.ServeWs)
	auth.GET("/channels/:id/messages", chat.HistoryHandler(chatSvc))

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/dashboard", adminapi.AdminDashboard)
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/payments", adminapi.ListAllPayments)
	admin.GET("/stats", adminapi.GetAdminStats)
	admin.GET("/user/:id", adminapi.GetUserDetails)
	admin.POST("/user/:id/credits", adminapi.GrantCredits)
	admin.POST("/sync-plans", plans.SyncPlansFromStripe)
	admin.POST("/groups", groupsapi.CreateGroup)
	admin.POST("/groups/:id/classes", groupsapi.LinkClass)
}
