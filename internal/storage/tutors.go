package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lingua-app/internal/domain/tutors"
)

type TutorStore struct {
	db *gorm.DB
}

func NewTutorStore(db *gorm.DB) *TutorStore { return &TutorStore{db: db} }

// AddStudent records the student on the tutor owned by tutorUserID. Not every
// class admin has a tutor record; a missing one is skipped, not an error.
func (s *TutorStore) AddStudent(ctx context.Context, tutorUserID, studentID uint) error {
	res := s.db.WithContext(ctx).Exec(`
		UPDATE tutors
		SET student_ids = array_append(student_ids, ?), updated_at = now()
		WHERE user_id = ?
		  AND NOT (student_ids @> ARRAY[?]::bigint[])`,
		int64(studentID), tutorUserID, int64(studentID),
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var tutor tutors.Tutor
		err := s.db.WithContext(ctx).First(&tutor, "user_id = ?", tutorUserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return nil
}
