package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"mealmate/internal/domain"
	"mealmate/internal/models"
	"mealmate/internal/repository"

	"gorm.io/gorm"
)

// ParticipationService owns membership status and the meetup's live count.
// The count and capacity are only read and written under the meetup row lock.
type ParticipationService struct {
	db           *gorm.DB
	meetups      *repository.MeetupRepository
	participants *repository.ParticipantRepository
	now          func() time.Time
}

func NewParticipationService(db *gorm.DB, meetups *repository.MeetupRepository, participants *repository.ParticipantRepository) *ParticipationService {
	return &ParticipationService{db: db, meetups: meetups, participants: participants, now: time.Now}
}

// Join files a REQUESTED membership. The live count only moves on approval.
func (s *ParticipationService) Join(ctx context.Context, meetupID, userID uint) (*models.Participant, error) {
	var out *models.Participant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := lockMeetup(ctx, s.meetups.WithTx(tx), meetupID)
		if err != nil {
			return err
		}
		if m.Status != domain.MeetupStatusRecruiting {
			return domain.ErrNotRecruiting
		}
		if m.IsFull() {
			return domain.ErrMeetupFull
		}
		participants := s.participants.WithTx(tx)
		if _, err := participants.Get(ctx, meetupID, userID); err == nil {
			return domain.ErrAlreadyJoined
		} else if !isNotFound(err) {
			return fmt.Errorf("get membership: %w", err)
		}
		p := &models.Participant{
			MeetupID: meetupID,
			UserID:   userID,
			Status:   domain.ParticipantRequested,
			JoinedAt: s.now(),
		}
		if err := participants.Create(ctx, p); err != nil {
			if isDuplicate(err) {
				return domain.ErrAlreadyJoined
			}
			return fmt.Errorf("create membership: %w", err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type LeaveResult struct {
	MeetupCancelled bool           `json:"meetup_cancelled"`
	Meetup          *models.Meetup `json:"meetup"`
}

// Leave removes the caller's membership. A host cannot leave without
// cancelling the whole meetup, so the host leaving sets CANCELLED instead.
func (s *ParticipationService) Leave(ctx context.Context, meetupID, userID uint) (*LeaveResult, error) {
	var out *LeaveResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meetups := s.meetups.WithTx(tx)
		m, err := lockMeetup(ctx, meetups, meetupID)
		if err != nil {
			return err
		}
		if m.Status == domain.MeetupStatusInProgress || m.Status == domain.MeetupStatusCompleted {
			return domain.ErrMeetupClosed
		}
		if m.IsHost(userID) {
			if m.Status != domain.MeetupStatusCancelled {
				now := s.now()
				m.Status = domain.MeetupStatusCancelled
				m.CancelledAt = &now
				if err := meetups.Save(ctx, m); err != nil {
					return fmt.Errorf("cancel meetup: %w", err)
				}
			}
			out = &LeaveResult{MeetupCancelled: true, Meetup: m}
			return nil
		}
		participants := s.participants.WithTx(tx)
		p, err := participants.Get(ctx, meetupID, userID)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrNoMembership
			}
			return fmt.Errorf("get membership: %w", err)
		}
		if err := participants.Delete(ctx, p); err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		if p.IsApproved() {
			decrement(m)
			if err := meetups.Save(ctx, m); err != nil {
				return fmt.Errorf("save meetup: %w", err)
			}
		}
		out = &LeaveResult{Meetup: m}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.MeetupCancelled {
		log.Printf("[meetup] cancelled id=%d by host=%d", meetupID, userID)
	}
	return out, nil
}

// SetStatus lets the host move a member between REQUESTED, APPROVED and
// REJECTED. The count delta comes from comparing the old and new status,
// since a host may cycle a member through several states.
func (s *ParticipationService) SetStatus(ctx context.Context, meetupID, participantID uint, status string, hostID uint) (*models.Participant, *models.Meetup, error) {
	if !domain.IsValidParticipantStatus(status) {
		return nil, nil, domain.ErrInvalidStatus
	}
	var (
		outP *models.Participant
		outM *models.Meetup
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meetups := s.meetups.WithTx(tx)
		m, err := lockMeetup(ctx, meetups, meetupID)
		if err != nil {
			return err
		}
		if !m.IsHost(hostID) {
			return domain.ErrNotHost
		}
		if participantID == m.HostID {
			return domain.ErrHostMembership
		}
		if !domain.IsMeetupOpen(m.Status) {
			return domain.ErrMeetupClosed
		}
		participants := s.participants.WithTx(tx)
		p, err := participants.Get(ctx, meetupID, participantID)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrParticipantNotFound
			}
			return fmt.Errorf("get membership: %w", err)
		}
		wasApproved := p.IsApproved()
		willApprove := status == domain.ParticipantApproved
		countChanged := false
		switch {
		case !wasApproved && willApprove:
			if m.IsFull() {
				return domain.ErrMeetupFull
			}
			m.LiveParticipantCount++
			countChanged = true
		case wasApproved && !willApprove:
			decrement(m)
			countChanged = true
		}
		if p.Status != status {
			if err := participants.UpdateStatus(ctx, p, status); err != nil {
				return fmt.Errorf("update membership: %w", err)
			}
			p.Status = status
		}
		if countChanged {
			m.SyncFillStatus()
			if err := meetups.Save(ctx, m); err != nil {
				return fmt.Errorf("save meetup: %w", err)
			}
		}
		outP, outM = p, m
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return outP, outM, nil
}

func (s *ParticipationService) ListParticipants(ctx context.Context, meetupID uint) ([]models.Participant, error) {
	if _, err := s.meetups.GetByID(ctx, meetupID); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrMeetupNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}
	list, err := s.participants.ListByMeetup(ctx, meetupID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return list, nil
}

// decrement lowers the live count, never below zero.
func decrement(m *models.Meetup) {
	if m.LiveParticipantCount > 0 {
		m.LiveParticipantCount--
	}
	m.SyncFillStatus()
}
