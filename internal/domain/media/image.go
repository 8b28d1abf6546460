package media

import "time"

// Image is an uploaded avatar/profile picture record.
type Image struct {
	ID           string  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID      uint    `gorm:"index" json:"owner_id"`
	OriginalPath string  `gorm:"not null" json:"original_path"`
	WebpPath     *string `json:"webp_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
