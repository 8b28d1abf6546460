package classes

import (
	"time"

	"github.com/lib/pq"

	"lingua-app/internal/domain/access"
)

type Class struct {
	ID          string `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Language    string `gorm:"index" json:"language"`
	Level       string `json:"level"` // CEFR: A1..C2

	Tier string `gorm:"type:varchar(32);not null" json:"tier"` // access.ClassTier values

	// ClassDateTime is the anchor timestamp recurring occurrences are
	// computed from; for one-time classes it is the (re)scheduled date.
	ClassDateTime   time.Time `gorm:"not null" json:"class_date_time"`
	DurationMinutes int       `gorm:"not null;default:60" json:"duration_minutes"`
	RecurrenceType  string    `gorm:"type:varchar(16);not null;default:'one_time'" json:"recurrence_type"`
	OccurrenceCount int       `gorm:"not null;default:1" json:"occurrence_count"`

	AvailableSpots int           `gorm:"not null" json:"available_spots"`
	MemberIDs      pq.Int64Array `gorm:"type:bigint[];not null;default:'{}'" json:"member_ids"`

	AdminID   uint    `gorm:"not null" json:"admin_id"`
	TutorID   *uint   `gorm:"index" json:"tutor_id,omitempty"`
	GroupID   *string `gorm:"type:uuid;index" json:"group_id,omitempty"`
	ChannelID *string `gorm:"type:uuid" json:"channel_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Class) ClassTier() access.ClassTier {
	return access.ClassTier(c.Tier)
}

func (c *Class) IsPremium() bool {
	return c.ClassTier().IsPremium()
}

func (c *Class) HasMember(userID uint) bool {
	for _, id := range c.MemberIDs {
		if id == int64(userID) {
			return true
		}
	}
	return false
}

func (c *Class) IsFull() bool {
	return len(c.MemberIDs) >= c.AvailableSpots
}
