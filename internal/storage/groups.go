package storage

import (
	"context"

	"gorm.io/gorm"

	"lingua-app/internal/domain/groups"
)

type GroupStore struct {
	db *gorm.DB
}

func NewGroupStore(db *gorm.DB) *GroupStore { return &GroupStore{db: db} }

func (s *GroupStore) GetGroup(ctx context.Context, id string) (*groups.Group, error) {
	var group groups.Group
	if err := s.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// AddMember appends with a set-union guard; joining twice is a no-op.
func (s *GroupStore) AddMember(ctx context.Context, groupID string, userID uint) (bool, error) {
	res := s.db.WithContext(ctx).Exec(`
		UPDATE groups
		SET member_ids = array_append(member_ids, ?), updated_at = now()
		WHERE id = ?
		  AND NOT (member_ids @> ARRAY[?]::bigint[])`,
		int64(userID), groupID, int64(userID),
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// LinkClass records a class on the group's class list (admin flow).
func (s *GroupStore) LinkClass(ctx context.Context, groupID, classID string) error {
	return s.db.WithContext(ctx).Exec(`
		UPDATE groups
		SET class_ids = array_append(class_ids, ?), updated_at = now()
		WHERE id = ?
		  AND NOT (class_ids @> ARRAY[?]::text[])`,
		classID, groupID, classID,
	).Error
}
