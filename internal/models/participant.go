package models

import (
	"time"

	"mealmate/internal/domain"
)

// Participant is one (meetup, user) membership. Rows are hard-deleted on leave
// so the pair can be requested again.
type Participant struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	MeetupID   uint       `gorm:"not null;index:idx_participant_pair,unique" json:"meetup_id"`
	UserID     uint       `gorm:"not null;index:idx_participant_pair,unique;index" json:"user_id"`
	Status     string     `gorm:"size:20;not null;index" json:"status"`
	Attended   bool       `gorm:"not null;default:false" json:"attended"`
	AttendedAt *time.Time `json:"attended_at"`
	JoinedAt   time.Time  `gorm:"not null" json:"joined_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Participant) TableName() string {
	return "meetup_participants"
}

func (p *Participant) IsApproved() bool { return p.Status == domain.ParticipantApproved }
