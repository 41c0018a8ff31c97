package models

import "time"

// PointsBalance is the spendable points wallet. TotalEarned - TotalUsed always
// equals AvailablePoints.
type PointsBalance struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	AvailablePoints int64     `gorm:"not null;default:0" json:"available_points"`
	TotalEarned     int64     `gorm:"not null;default:0" json:"total_earned"`
	TotalUsed       int64     `gorm:"not null;default:0" json:"total_used"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (PointsBalance) TableName() string {
	return "points_balances"
}

// PointsTransaction is append-only; rows are never updated or deleted.
type PointsTransaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Type         string    `gorm:"size:10;not null;index" json:"type"` // EARN, SPEND
	Amount       int64     `gorm:"not null" json:"amount"`
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`
	Reason       string    `gorm:"size:50;not null" json:"reason"`
	ReferenceID  string    `gorm:"size:128;index" json:"reference_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (PointsTransaction) TableName() string {
	return "points_transactions"
}
