package chat

import "time"

// Channel is the real-time room attached to a premium individual class or a
// group. Type is "class" or "group".
type Channel struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type      string    `gorm:"type:varchar(16);not null" json:"type"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ChannelMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChannelID string    `gorm:"type:uuid;not null;uniqueIndex:idx_channel_members_channel_user" json:"channel_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_channel_members_channel_user" json:"user_id"`
	Role      string    `gorm:"type:varchar(16);not null;default:'member'" json:"role"` // member | tutor | admin
	JoinedAt  time.Time `json:"joined_at"`
}

type Message struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ChannelID string    `gorm:"type:uuid;not null;index" json:"channel_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Content   string    `gorm:"not null" json:"content"`
	FileURL   *string   `json:"file_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
