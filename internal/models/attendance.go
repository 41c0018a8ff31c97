package models

import "time"

// AttendanceRecord is the single authoritative proof of presence per
// membership. Re-verifying overwrites the method and proof columns.
type AttendanceRecord struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	MeetupID       uint       `gorm:"not null;index:idx_attendance_pair,unique" json:"meetup_id"`
	UserID         uint       `gorm:"not null;index:idx_attendance_pair,unique" json:"user_id"`
	Method         string     `gorm:"size:20;not null" json:"method"` // GPS, QR, HOST_CONFIRM
	Status         string     `gorm:"size:20;not null" json:"status"` // CONFIRMED
	Latitude       *float64   `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude      *float64   `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`
	DistanceMeters *float64   `gorm:"type:decimal(10,2)" json:"distance_meters,omitempty"`
	TokenID        string     `gorm:"size:64" json:"token_id,omitempty"`
	ConfirmedBy    *uint      `json:"confirmed_by,omitempty"`
	ConfirmedAt    *time.Time `json:"confirmed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// MutualConfirmation is a peer attestation. Advisory only; it never marks
// anyone as attended.
type MutualConfirmation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MeetupID    uint      `gorm:"not null;index:idx_mutual_triple,unique" json:"meetup_id"`
	ConfirmerID uint      `gorm:"not null;index:idx_mutual_triple,unique" json:"confirmer_id"`
	ConfirmedID uint      `gorm:"not null;index:idx_mutual_triple,unique" json:"confirmed_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (MutualConfirmation) TableName() string {
	return "mutual_confirmations"
}
