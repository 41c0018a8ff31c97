package repository

import (
	"context"

	"mealmate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) WithTx(tx *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: tx}
}

// Upsert writes the single attendance row for (meetup, user). A repeated
// verification overwrites the method and proof columns.
func (r *AttendanceRepository) Upsert(ctx context.Context, rec *models.AttendanceRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "meetup_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"method", "status", "latitude", "longitude", "distance_meters",
			"token_id", "confirmed_by", "confirmed_at", "updated_at",
		}),
	}).Create(rec).Error
}

func (r *AttendanceRepository) Get(ctx context.Context, meetupID, userID uint) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := r.db.WithContext(ctx).Where("meetup_id = ? AND user_id = ?", meetupID, userID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// InsertMutual records a peer attestation and reports whether it was new.
func (r *AttendanceRepository) InsertMutual(ctx context.Context, mc *models.MutualConfirmation) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(mc)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AttendanceRepository) CountMutualFor(ctx context.Context, meetupID, confirmedID uint) (int64, error) {
	var c int64
	err := r.db.WithContext(ctx).Model(&models.MutualConfirmation{}).
		Where("meetup_id = ? AND confirmed_id = ?", meetupID, confirmedID).
		Count(&c).Error
	return c, err
}
