package main

import (
	"log"
	"os"
	"time"

	"lingua-app/config"
	"lingua-app/database"
	routes "lingua-app/internal/app/http"
	"lingua-app/internal/cache"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	r := gin.Default()

	// ✅ Add CORS middleware BEFORE registering routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("CORS_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, newEntitlementCache())

	r.Run(":" + config.PORT)
}

// newEntitlementCache picks Redis when REDIS_URL is set, otherwise the
// in-process store.
func newEntitlementCache() routes.EntitlementCache {
	if config.REDIS_URL == "" {
		log.Println("REDIS_URL not set, using in-memory entitlement cache")
		return cache.NewMemoryEntitlementStore()
	}

	opts, err := redis.ParseURL(config.REDIS_URL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	return cache.NewRedisEntitlementStore(redis.NewClient(opts), 15*time.Minute)
}
