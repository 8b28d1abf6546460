package tutors

import (
	"time"

	"github.com/lib/pq"
)

type Tutor struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"uniqueIndex;not null"`

	Bio       string
	Languages pq.StringArray `gorm:"type:text[];not null;default:'{}'"`

	// StudentIDs is the set of users who have booked at least one of this
	// tutor's classes.
	StudentIDs pq.Int64Array `gorm:"type:bigint[];not null;default:'{}'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
