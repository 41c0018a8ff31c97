package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the local projection of an authenticated account. Rows are created
// on first use from the token's user id, so Email may be unknown. TrustScore
// is the reputation that no-show penalties lower; it is never spendable.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Nickname   string         `gorm:"size:64;not null;default:''" json:"nickname"`
	Email      *string        `gorm:"uniqueIndex;size:255" json:"email,omitempty"`
	TrustScore int            `gorm:"not null;default:100" json:"trust_score"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
