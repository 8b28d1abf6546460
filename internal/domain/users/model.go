package users

import (
	"time"

	"github.com/lib/pq"

	"lingua-app/internal/domain/access"
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	Name         string
	Lastname     string
	Tel          string
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role         string  // user | tutor | admin
	IsVerified   bool

	// profile / account settings
	NativeLanguage   string
	LearningLanguage string
	Level            string // CEFR: A1..C2
	AvatarImageID    *string

	// entitlements
	FreeAccess bool `gorm:"column:free_access;not null;default:false"`
	Credits    int  `gorm:"not null;default:0"`

	// membership mirrors, kept in sync by the enrollment coordinator
	EnrolledClassIDs pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	JoinedGroupIDs   pq.StringArray `gorm:"type:text[];not null;default:'{}'"`

	Subscriptions []Subscription

	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entitlements builds the read-only snapshot the access engine consumes.
func (u User) Entitlements() access.Entitlements {
	subs := make([]access.SubscriptionWindow, 0, len(u.Subscriptions))
	for _, s := range u.Subscriptions {
		subs = append(subs, access.SubscriptionWindow{
			Kind:      access.SubscriptionKind(s.Kind),
			StartDate: s.StartDate,
			EndDate:   s.EndDate,
		})
	}
	return access.Entitlements{
		FreeAccess:       u.FreeAccess,
		Credits:          u.Credits,
		Subscriptions:    subs,
		EnrolledClassIDs: append([]string(nil), u.EnrolledClassIDs...),
		JoinedGroupIDs:   append([]string(nil), u.JoinedGroupIDs...),
	}
}

func (u User) IsEnrolledIn(classID string) bool {
	for _, id := range u.EnrolledClassIDs {
		if id == classID {
			return true
		}
	}
	return false
}

func (u User) HasJoined(groupID string) bool {
	for _, id := range u.JoinedGroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
