package repository

import (
	"context"
	"time"

	"mealmate/internal/domain"
	"mealmate/internal/models"

	"gorm.io/gorm"
)

type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) WithTx(tx *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: tx}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ParticipantRepository) Get(ctx context.Context, meetupID, userID uint) (*models.Participant, error) {
	var p models.Participant
	err := r.db.WithContext(ctx).Where("meetup_id = ? AND user_id = ?", meetupID, userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) Delete(ctx context.Context, p *models.Participant) error {
	return r.db.WithContext(ctx).Delete(p).Error
}

func (r *ParticipantRepository) UpdateStatus(ctx context.Context, p *models.Participant, status string) error {
	return r.db.WithContext(ctx).Model(p).Update("status", status).Error
}

// MarkAttended sets attended once; later calls keep the first timestamp.
func (r *ParticipantRepository) MarkAttended(ctx context.Context, meetupID, userID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("meetup_id = ? AND user_id = ? AND attended = ?", meetupID, userID, false).
		Updates(map[string]interface{}{"attended": true, "attended_at": at}).Error
}

func (r *ParticipantRepository) ListByMeetup(ctx context.Context, meetupID uint) ([]models.Participant, error) {
	var list []models.Participant
	err := r.db.WithContext(ctx).Where("meetup_id = ?", meetupID).Order("joined_at ASC, id ASC").Find(&list).Error
	return list, err
}

// ListAbsentees returns approved members other than the host who never
// achieved attended=true.
func (r *ParticipantRepository) ListAbsentees(ctx context.Context, meetupID, hostID uint) ([]models.Participant, error) {
	var list []models.Participant
	err := r.db.WithContext(ctx).
		Where("meetup_id = ? AND status = ? AND attended = ? AND user_id <> ?", meetupID, domain.ParticipantApproved, false, hostID).
		Order("user_id ASC").
		Find(&list).Error
	return list, err
}

// AttendanceCounts is the aggregate row behind the attendance summary.
type AttendanceCounts struct {
	Approved int64
	Attended int64
}

func (r *ParticipantRepository) CountAttendance(ctx context.Context, meetupID uint) (AttendanceCounts, error) {
	var c AttendanceCounts
	err := r.db.WithContext(ctx).Model(&models.Participant{}).
		Select("COUNT(*) AS approved, COALESCE(SUM(CASE WHEN attended THEN 1 ELSE 0 END), 0) AS attended").
		Where("meetup_id = ? AND status = ?", meetupID, domain.ParticipantApproved).
		Scan(&c).Error
	return c, err
}
