package storage

import (
	"context"

	"gorm.io/gorm"

	"lingua-app/internal/domain/users"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) GetUser(ctx context.Context, id uint) (*users.User, error) {
	var user users.User
	if err := s.db.WithContext(ctx).Preload("Subscriptions").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) AppendEnrolledClass(ctx context.Context, userID uint, classID string) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE users
		SET enrolled_class_ids = array_append(enrolled_class_ids, ?), updated_at = now()
		WHERE id = ?
		  AND NOT (enrolled_class_ids @> ARRAY[?]::text[])`,
		classID, userID, classID,
	).Error
}

func (s *UserStore) AppendJoinedGroup(ctx context.Context, userID uint, groupID string) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE users
		SET joined_group_ids = array_append(joined_group_ids, ?), updated_at = now()
		WHERE id = ?
		  AND NOT (joined_group_ids @> ARRAY[?]::text[])`,
		groupID, userID, groupID,
	).Error
}

// DeductCredits refuses to take the balance below zero; the guard and the
// subtraction are one statement, so concurrent bookings cannot both spend
// the same credits.
func (s *UserStore) DeductCredits(ctx context.Context, userID uint, n int) (bool, error) {
	res := s.db.WithContext(ctx).Exec(`
		UPDATE users
		SET credits = credits - ?, updated_at = now()
		WHERE id = ? AND credits >= ?`,
		n, userID, n,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *UserStore) RefundCredits(ctx context.Context, userID uint, n int) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE users
		SET credits = credits + ?, updated_at = now()
		WHERE id = ?`,
		n, userID,
	).Error
}
