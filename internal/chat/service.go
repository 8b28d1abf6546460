package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service is the persistence side of chat: channel lifecycle and membership.
// The enrollment coordinator talks to it through its ChannelService interface.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// CreateChannel provisions the room for a new class or group and returns its id.
func (s *Service) CreateChannel(ctx context.Context, channelType, name string) (string, error) {
	ch := Channel{ID: uuid.NewString(), Type: channelType, Name: name}
	if err := s.db.WithContext(ctx).Create(&ch).Error; err != nil {
		return "", err
	}
	return ch.ID, nil
}

// AddMember records channel membership. Re-adding an existing member is a
// no-op; the channel row is created on demand so stale class records with a
// dangling channel id still succeed.
func (s *Service) AddMember(ctx context.Context, channelID string, userID uint, channelType, role string) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Channel{ID: channelID, Type: channelType}).Error
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ChannelMember{
			ChannelID: channelID,
			UserID:    userID,
			Role:      role,
			JoinedAt:  time.Now(),
		}).Error
}

func (s *Service) IsMember(ctx context.Context, channelID string, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *Service) SaveMessage(ctx context.Context, msg *Message) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

// History returns the most recent messages in the channel, oldest first.
func (s *Service) History(ctx context.Context, channelID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	var msgs []Message
	err := s.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
