package groups

import (
	"time"

	"github.com/lib/pq"

	"lingua-app/internal/domain/access"
)

type Group struct {
	ID          string `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Language    string `gorm:"index" json:"language"`

	IsPremium bool `gorm:"not null;default:false" json:"is_premium"`

	MemberIDs pq.Int64Array  `gorm:"type:bigint[];not null;default:'{}'" json:"member_ids"`
	ClassIDs  pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"class_ids"`

	ChannelID *string `gorm:"type:uuid" json:"channel_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *Group) ContentType() access.ContentType {
	if g.IsPremium {
		return access.ContentPremiumGroup
	}
	return access.ContentStandard
}

func (g *Group) HasMember(userID uint) bool {
	for _, id := range g.MemberIDs {
		if id == int64(userID) {
			return true
		}
	}
	return false
}
