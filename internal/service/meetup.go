package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"mealmate/internal/domain"
	"mealmate/internal/models"
	"mealmate/internal/repository"
	"mealmate/pkg/location"

	"gorm.io/gorm"
)

const minCapacity = 2

// MeetupService covers the host-side lifecycle of a meetup record.
type MeetupService struct {
	db           *gorm.DB
	meetups      *repository.MeetupRepository
	participants *repository.ParticipantRepository
	now          func() time.Time
}

func NewMeetupService(db *gorm.DB, meetups *repository.MeetupRepository, participants *repository.ParticipantRepository) *MeetupService {
	return &MeetupService{db: db, meetups: meetups, participants: participants, now: time.Now}
}

type CreateMeetupInput struct {
	HostID      uint
	Title       string
	Description string
	Capacity    int
	ScheduledAt time.Time
	Location    location.Point
	Address     string
}

// MeetupPatch holds the updatable fields; nil means "leave unchanged".
type MeetupPatch struct {
	Title       *string
	Description *string
	Capacity    *int
	ScheduledAt *time.Time
	Location    *location.Point
	Address     *string
}

func (s *MeetupService) validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return domain.ErrInvalidTitle
	}
	return nil
}

func (s *MeetupService) validateSchedule(at time.Time) error {
	if !at.After(s.now()) {
		return domain.ErrInvalidSchedule
	}
	return nil
}

// Create inserts a RECRUITING meetup together with the host's APPROVED
// membership, so the live count starts at one.
func (s *MeetupService) Create(ctx context.Context, in CreateMeetupInput) (*models.Meetup, error) {
	if err := s.validateTitle(in.Title); err != nil {
		return nil, err
	}
	if in.Capacity < minCapacity {
		return nil, domain.ErrInvalidCapacity
	}
	if err := s.validateSchedule(in.ScheduledAt); err != nil {
		return nil, err
	}
	if err := in.Location.Validate(); err != nil {
		return nil, domain.ErrInvalidLocation
	}
	m := &models.Meetup{
		HostID:               in.HostID,
		Title:                strings.TrimSpace(in.Title),
		Description:          in.Description,
		Capacity:             in.Capacity,
		LiveParticipantCount: 1,
		Status:               domain.MeetupStatusRecruiting,
		ScheduledAt:          in.ScheduledAt,
		Latitude:             in.Location.Lat,
		Longitude:            in.Location.Lng,
		Address:              in.Address,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.meetups.WithTx(tx).Create(ctx, m); err != nil {
			return fmt.Errorf("create meetup: %w", err)
		}
		host := &models.Participant{
			MeetupID: m.ID,
			UserID:   in.HostID,
			Status:   domain.ParticipantApproved,
			JoinedAt: s.now(),
		}
		if err := s.participants.WithTx(tx).Create(ctx, host); err != nil {
			return fmt.Errorf("create host membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[meetup] created id=%d host=%d capacity=%d", m.ID, m.HostID, m.Capacity)
	return m, nil
}

func (s *MeetupService) Get(ctx context.Context, meetupID uint) (*models.Meetup, error) {
	m, err := s.meetups.GetByID(ctx, meetupID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrMeetupNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}
	return m, nil
}

// Update applies only the fields set in patch.
func (s *MeetupService) Update(ctx context.Context, meetupID, hostID uint, patch MeetupPatch) (*models.Meetup, error) {
	if patch.Title != nil {
		if err := s.validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Capacity != nil && *patch.Capacity < minCapacity {
		return nil, domain.ErrInvalidCapacity
	}
	if patch.ScheduledAt != nil {
		if err := s.validateSchedule(*patch.ScheduledAt); err != nil {
			return nil, err
		}
	}
	if patch.Location != nil {
		if err := patch.Location.Validate(); err != nil {
			return nil, domain.ErrInvalidLocation
		}
	}
	var out *models.Meetup
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meetups := s.meetups.WithTx(tx)
		m, err := lockMeetup(ctx, meetups, meetupID)
		if err != nil {
			return err
		}
		if !m.IsHost(hostID) {
			return domain.ErrNotHost
		}
		if !domain.IsMeetupOpen(m.Status) {
			return domain.ErrMeetupClosed
		}
		if patch.Capacity != nil && *patch.Capacity < m.LiveParticipantCount {
			return domain.ErrCapacityBelowCount
		}
		applyPatch(m, patch)
		m.SyncFillStatus()
		if err := meetups.Save(ctx, m); err != nil {
			return fmt.Errorf("save meetup: %w", err)
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func applyPatch(m *models.Meetup, p MeetupPatch) {
	if p.Title != nil {
		m.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Capacity != nil {
		m.Capacity = *p.Capacity
	}
	if p.ScheduledAt != nil {
		m.ScheduledAt = *p.ScheduledAt
	}
	if p.Location != nil {
		m.Latitude = p.Location.Lat
		m.Longitude = p.Location.Lng
	}
	if p.Address != nil {
		m.Address = *p.Address
	}
}

// SetStatus moves an open meetup to IN_PROGRESS and an in-progress one to
// COMPLETED. Cancelling goes through the host leaving.
func (s *MeetupService) SetStatus(ctx context.Context, meetupID, hostID uint, status string) (*models.Meetup, error) {
	var out *models.Meetup
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meetups := s.meetups.WithTx(tx)
		m, err := lockMeetup(ctx, meetups, meetupID)
		if err != nil {
			return err
		}
		if !m.IsHost(hostID) {
			return domain.ErrNotHost
		}
		switch {
		case status == domain.MeetupStatusInProgress && domain.IsMeetupOpen(m.Status):
		case status == domain.MeetupStatusCompleted && m.Status == domain.MeetupStatusInProgress:
		default:
			return domain.ErrInvalidMeetupStatus
		}
		m.Status = status
		if err := meetups.Save(ctx, m); err != nil {
			return fmt.Errorf("save meetup: %w", err)
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[meetup] status id=%d -> %s", out.ID, out.Status)
	return out, nil
}

func lockMeetup(ctx context.Context, meetups *repository.MeetupRepository, id uint) (*models.Meetup, error) {
	m, err := meetups.LockByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrMeetupNotFound
		}
		return nil, fmt.Errorf("lock meetup: %w", err)
	}
	return m, nil
}
