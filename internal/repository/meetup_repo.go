package repository

import (
	"context"

	"mealmate/internal/models"

	"gorm.io/gorm"
)

type MeetupRepository struct {
	db *gorm.DB
}

func NewMeetupRepository(db *gorm.DB) *MeetupRepository {
	return &MeetupRepository{db: db}
}

// WithTx binds the repository to an open transaction.
func (r *MeetupRepository) WithTx(tx *gorm.DB) *MeetupRepository {
	return &MeetupRepository{db: tx}
}

func (r *MeetupRepository) Create(ctx context.Context, m *models.Meetup) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MeetupRepository) GetByID(ctx context.Context, id uint) (*models.Meetup, error) {
	var m models.Meetup
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// LockByID reads the meetup with a row lock; the count and status are only
// written after this read inside the same transaction.
func (r *MeetupRepository) LockByID(ctx context.Context, id uint) (*models.Meetup, error) {
	var m models.Meetup
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MeetupRepository) Save(ctx context.Context, m *models.Meetup) error {
	return r.db.WithContext(ctx).Save(m).Error
}
