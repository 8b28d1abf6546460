package database

import (
	"fmt"
	"log"
	"os"

	"lingua-app/internal/chat"
	"lingua-app/internal/domain/billing"
	"lingua-app/internal/domain/classes"
	"lingua-app/internal/domain/groups"
	"lingua-app/internal/domain/media"
	"lingua-app/internal/domain/plans"
	"lingua-app/internal/domain/tutors"
	"lingua-app/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db

	// ✅ REQUIRED for UUID generation
	if err := DB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatal("❌ Failed to enable pgcrypto extension:", err)
	}

	// ✅ Auto-migrate all domain models
	if err := DB.AutoMigrate(
		// core
		&users.User{},
		&users.VerificationToken{},
		&users.Subscription{},
		&plans.Plan{},
		&billing.Payment{},

		// media
		&media.Image{},

		// catalog
		&classes.Class{},
		&groups.Group{},
		&tutors.Tutor{},

		// chat
		&chat.Channel{},
		&chat.ChannelMember{},
		&chat.Message{},
	); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
}
