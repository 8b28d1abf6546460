package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"lingua-app/internal/domain/classes"
)

// ClassStore persists classes in Postgres. Member sets are bigint[] columns
// updated with array guards so concurrent bookings can never overshoot
// available_spots.
type ClassStore struct {
	db *gorm.DB
}

func NewClassStore(db *gorm.DB) *ClassStore { return &ClassStore{db: db} }

func (s *ClassStore) GetClass(ctx context.Context, id string) (*classes.Class, error) {
	var class classes.Class
	if err := s.db.WithContext(ctx).First(&class, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

// AddMemberIfCapacity is a single conditional UPDATE: the membership guard
// and the capacity guard sit in the WHERE clause, so the check and the append
// commit atomically. RowsAffected == 0 means one of the guards failed; a
// re-read tells which.
func (s *ClassStore) AddMemberIfCapacity(ctx context.Context, classID string, userID uint) (added bool, full bool, err error) {
	res := s.db.WithContext(ctx).Exec(`
		UPDATE classes
		SET member_ids = array_append(member_ids, ?), updated_at = now()
		WHERE id = ?
		  AND NOT (member_ids @> ARRAY[?]::bigint[])
		  AND cardinality(member_ids) < available_spots`,
		int64(userID), classID, int64(userID),
	)
	if res.Error != nil {
		return false, false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, false, nil
	}

	class, err := s.GetClass(ctx, classID)
	if err != nil {
		return false, false, err
	}
	if class.HasMember(userID) {
		return false, false, nil
	}
	return false, class.IsFull(), nil
}

func (s *ClassStore) UpdateAnchor(ctx context.Context, classID string, anchor time.Time) error {
	return s.db.WithContext(ctx).
		Model(&classes.Class{}).
		Where("id = ?", classID).
		Update("class_date_time", anchor).Error
}
