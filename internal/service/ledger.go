package service

import (
	"context"
	"fmt"
	"time"

	"mealmate/internal/domain"
	"mealmate/internal/models"
	"mealmate/internal/repository"

	"gorm.io/gorm"
)

// PointsLedger owns spendable point balances and their append-only log.
// Every mutation locks the balance row and writes the log entry in the same
// transaction as the caller's own effect.
type PointsLedger struct {
	db     *gorm.DB
	points *repository.PointsRepository
}

func NewPointsLedger(db *gorm.DB, points *repository.PointsRepository) *PointsLedger {
	return &PointsLedger{db: db, points: points}
}

// GetBalance never fails for a user without a balance; one is created at zero.
func (l *PointsLedger) GetBalance(ctx context.Context, userID uint) (*models.PointsBalance, error) {
	if err := l.points.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("ensure balance: %w", err)
	}
	b, err := l.points.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

func (l *PointsLedger) Earn(ctx context.Context, userID uint, amount int64, reason, referenceID string) (*models.PointsBalance, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	var out *models.PointsBalance
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := l.earn(ctx, tx, userID, amount, reason, referenceID)
		out = b
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *PointsLedger) Spend(ctx context.Context, userID uint, amount int64, reason, referenceID string) (*models.PointsBalance, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	var out *models.PointsBalance
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := l.spend(ctx, tx, userID, amount, reason, referenceID)
		out = b
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TransactionPage is one page of a user's ledger history, newest first.
type TransactionPage struct {
	Items    []models.PointsTransaction `json:"items"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
	Total    int64                      `json:"total"`
}

func (l *PointsLedger) ListTransactions(ctx context.Context, userID uint, page, size int) (*TransactionPage, error) {
	limit, offset := pageBounds(page, size)
	items, total, err := l.points.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return &TransactionPage{Items: items, Page: offset/limit + 1, PageSize: limit, Total: total}, nil
}

// Reconcile compares the balance row against the transaction log.
func (l *PointsLedger) Reconcile(ctx context.Context, userID uint) (bool, error) {
	b, err := l.GetBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	earned, err := l.points.SumByType(ctx, userID, domain.PointsTxEarn)
	if err != nil {
		return false, fmt.Errorf("sum earned: %w", err)
	}
	used, err := l.points.SumByType(ctx, userID, domain.PointsTxSpend)
	if err != nil {
		return false, fmt.Errorf("sum used: %w", err)
	}
	return earned == b.TotalEarned && used == b.TotalUsed && earned-used == b.AvailablePoints, nil
}

func (l *PointsLedger) lock(ctx context.Context, repo *repository.PointsRepository, userID uint) (*models.PointsBalance, error) {
	if err := repo.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("ensure balance: %w", err)
	}
	b, err := repo.LockByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock balance: %w", err)
	}
	return b, nil
}

// earn credits inside the caller's transaction.
func (l *PointsLedger) earn(ctx context.Context, tx *gorm.DB, userID uint, amount int64, reason, referenceID string) (*models.PointsBalance, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	repo := l.points.WithTx(tx)
	b, err := l.lock(ctx, repo, userID)
	if err != nil {
		return nil, err
	}
	b.AvailablePoints += amount
	b.TotalEarned += amount
	if err := l.write(ctx, repo, b, domain.PointsTxEarn, amount, reason, referenceID); err != nil {
		return nil, err
	}
	return b, nil
}

// spend debits inside the caller's transaction. The sufficiency check reads
// the locked row, so two concurrent spends cannot both pass it.
func (l *PointsLedger) spend(ctx context.Context, tx *gorm.DB, userID uint, amount int64, reason, referenceID string) (*models.PointsBalance, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	repo := l.points.WithTx(tx)
	b, err := l.lock(ctx, repo, userID)
	if err != nil {
		return nil, err
	}
	if b.AvailablePoints < amount {
		return nil, domain.ErrInsufficientPoints
	}
	b.AvailablePoints -= amount
	b.TotalUsed += amount
	if err := l.write(ctx, repo, b, domain.PointsTxSpend, amount, reason, referenceID); err != nil {
		return nil, err
	}
	return b, nil
}

func (l *PointsLedger) write(ctx context.Context, repo *repository.PointsRepository, b *models.PointsBalance, txType string, amount int64, reason, referenceID string) error {
	if err := repo.SaveBalance(ctx, b); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	entry := &models.PointsTransaction{
		UserID:       b.UserID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: b.AvailablePoints,
		Reason:       reason,
		ReferenceID:  referenceID,
		CreatedAt:    time.Now(),
	}
	if err := repo.AppendTransaction(ctx, entry); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}
