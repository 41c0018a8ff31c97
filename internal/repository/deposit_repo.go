package repository

import (
	"context"

	"mealmate/internal/domain"
	"mealmate/internal/models"

	"gorm.io/gorm"
)

type DepositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

func (r *DepositRepository) WithTx(tx *gorm.DB) *DepositRepository {
	return &DepositRepository{db: tx}
}

func (r *DepositRepository) Create(ctx context.Context, d *models.Deposit) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DepositRepository) GetByID(ctx context.Context, id uint) (*models.Deposit, error) {
	var d models.Deposit
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DepositRepository) LockByID(ctx context.Context, id uint) (*models.Deposit, error) {
	var d models.Deposit
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// GetActive returns the open (PAID) deposit of a membership.
func (r *DepositRepository) GetActive(ctx context.Context, meetupID, userID uint) (*models.Deposit, error) {
	var d models.Deposit
	err := r.db.WithContext(ctx).
		Where("meetup_id = ? AND user_id = ? AND status = ?", meetupID, userID, domain.DepositPaid).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Finalize moves a deposit to a terminal status and frees its active slot.
func (r *DepositRepository) Finalize(ctx context.Context, d *models.Deposit) error {
	return r.db.WithContext(ctx).Model(d).Updates(map[string]interface{}{
		"status":       d.Status,
		"active_key":   nil,
		"finalized_at": d.FinalizedAt,
	}).Error
}

// LockActiveByMeetup locks the PAID deposits of the given members.
func (r *DepositRepository) LockActiveByMeetup(ctx context.Context, meetupID uint, userIDs []uint) ([]models.Deposit, error) {
	var list []models.Deposit
	if len(userIDs) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Clauses(forUpdate).
		Where("meetup_id = ? AND status = ? AND user_id IN ?", meetupID, domain.DepositPaid, userIDs).
		Find(&list).Error
	return list, err
}

func (r *DepositRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Deposit, error) {
	var list []models.Deposit
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
