package repository

import (
	"context"

	"mealmate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

func (r *PointsRepository) WithTx(tx *gorm.DB) *PointsRepository {
	return &PointsRepository{db: tx}
}

// Ensure creates a zero balance for the user if none exists. Concurrent
// callers race on the unique index and the loser does nothing.
func (r *PointsRepository) Ensure(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PointsBalance{UserID: userID}).Error
}

func (r *PointsRepository) GetByUserID(ctx context.Context, userID uint) (*models.PointsBalance, error) {
	var b models.PointsBalance
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// LockByUserID reads the balance with a row lock for a read-then-write.
func (r *PointsRepository) LockByUserID(ctx context.Context, userID uint) (*models.PointsBalance, error) {
	var b models.PointsBalance
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("user_id = ?", userID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PointsRepository) SaveBalance(ctx context.Context, b *models.PointsBalance) error {
	return r.db.WithContext(ctx).Model(b).Updates(map[string]interface{}{
		"available_points": b.AvailablePoints,
		"total_earned":     b.TotalEarned,
		"total_used":       b.TotalUsed,
	}).Error
}

func (r *PointsRepository) AppendTransaction(ctx context.Context, tx *models.PointsTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *PointsRepository) ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.PointsTransaction, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&models.PointsTransaction{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.PointsTransaction
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// SumByType totals the log per transaction type, for reconciliation.
func (r *PointsRepository) SumByType(ctx context.Context, userID uint, txType string) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&models.PointsTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ?", userID, txType).
		Scan(&sum).Error
	return sum, err
}
