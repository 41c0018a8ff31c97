package models

import (
	"fmt"
	"time"

	"mealmate/internal/domain"
)

type Deposit struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	MeetupID      uint   `gorm:"not null;index" json:"meetup_id"`
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	Amount        int64  `gorm:"not null" json:"amount"`
	Status        string `gorm:"size:20;not null;index" json:"status"` // PAID, REFUNDED, CONVERTED, FORFEITED
	PaymentMethod string `gorm:"size:20;not null" json:"payment_method"`
	Reference     string `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	ProviderRef   string `gorm:"size:128" json:"provider_ref,omitempty"`
	// ActiveKey is "meetupID:userID" while PAID and NULL once terminal; the
	// unique index keeps one open deposit per membership.
	ActiveKey   *string    `gorm:"size:64;uniqueIndex" json:"-"`
	FinalizedAt *time.Time `json:"finalized_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Deposit) TableName() string {
	return "deposits"
}

func (d *Deposit) IsTerminal() bool { return d.Status != domain.DepositPaid }

func DepositActiveKey(meetupID, userID uint) string {
	return fmt.Sprintf("%d:%d", meetupID, userID)
}
