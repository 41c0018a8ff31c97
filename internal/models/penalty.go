package models

import "time"

type PenaltyRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_penalty_once,unique;index" json:"user_id"`
	MeetupID  uint      `gorm:"not null;index:idx_penalty_once,unique" json:"meetup_id"`
	Type      string    `gorm:"size:20;not null;index:idx_penalty_once,unique" json:"type"`
	Amount    int       `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"size:255" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (PenaltyRecord) TableName() string {
	return "penalty_records"
}
