package repository

import (
	"context"

	"mealmate/internal/models"

	"gorm.io/gorm"
)

type PenaltyRepository struct {
	db *gorm.DB
}

func NewPenaltyRepository(db *gorm.DB) *PenaltyRepository {
	return &PenaltyRepository{db: db}
}

func (r *PenaltyRepository) WithTx(tx *gorm.DB) *PenaltyRepository {
	return &PenaltyRepository{db: tx}
}

func (r *PenaltyRepository) Create(ctx context.Context, p *models.PenaltyRecord) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// PenalizedUserIDs returns members already penalized for the meetup.
func (r *PenaltyRepository) PenalizedUserIDs(ctx context.Context, meetupID uint, penaltyType string) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.PenaltyRecord{}).
		Where("meetup_id = ? AND type = ?", meetupID, penaltyType).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *PenaltyRepository) ListByMeetup(ctx context.Context, meetupID uint) ([]models.PenaltyRecord, error) {
	var list []models.PenaltyRecord
	err := r.db.WithContext(ctx).Where("meetup_id = ?", meetupID).Order("id ASC").Find(&list).Error
	return list, err
}
