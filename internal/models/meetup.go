package models

import (
	"time"

	"gorm.io/gorm"

	"mealmate/internal/domain"
)

type Meetup struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	HostID               uint           `gorm:"not null;index" json:"host_id"`
	Title                string         `gorm:"size:120;not null" json:"title"`
	Description          string         `gorm:"type:text" json:"description"`
	Capacity             int            `gorm:"not null" json:"capacity"`
	LiveParticipantCount int            `gorm:"not null;default:0" json:"live_participant_count"`
	Status               string         `gorm:"size:20;not null;index" json:"status"`
	ScheduledAt          time.Time      `gorm:"not null;index" json:"scheduled_at"`
	Latitude             float64        `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude            float64        `gorm:"type:decimal(11,8);not null" json:"longitude"`
	Address              string         `gorm:"size:255" json:"address"`
	CancelledAt          *time.Time     `json:"cancelled_at"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Meetup) TableName() string {
	return "meetups"
}

func (m *Meetup) IsHost(userID uint) bool { return m.HostID == userID }

func (m *Meetup) IsFull() bool { return m.LiveParticipantCount >= m.Capacity }

// SyncFillStatus flips between RECRUITING and FILLED after a count change.
// Other statuses are left alone.
func (m *Meetup) SyncFillStatus() {
	switch m.Status {
	case domain.MeetupStatusRecruiting:
		if m.IsFull() {
			m.Status = domain.MeetupStatusFilled
		}
	case domain.MeetupStatusFilled:
		if !m.IsFull() {
			m.Status = domain.MeetupStatusRecruiting
		}
	}
}
