package service

import (
	"context"
	"fmt"
	"log"

	"mealmate/internal/domain"
	"mealmate/internal/models"
	"mealmate/internal/repository"

	"gorm.io/gorm"
)

// NoShowPenaltyProcessor runs the host's post-meetup batch. A run either
// penalizes every eligible absentee or nobody.
type NoShowPenaltyProcessor struct {
	db           *gorm.DB
	meetups      *repository.MeetupRepository
	participants *repository.ParticipantRepository
	penalties    *repository.PenaltyRepository
	users        *repository.UserRepository
	escrow       *DepositEscrow
	points       int
}

func NewNoShowPenaltyProcessor(
	db *gorm.DB,
	meetups *repository.MeetupRepository,
	participants *repository.ParticipantRepository,
	penalties *repository.PenaltyRepository,
	users *repository.UserRepository,
	escrow *DepositEscrow,
	points int,
) *NoShowPenaltyProcessor {
	return &NoShowPenaltyProcessor{
		db:           db,
		meetups:      meetups,
		participants: participants,
		penalties:    penalties,
		users:        users,
		escrow:       escrow,
		points:       points,
	}
}

type PenaltyResult struct {
	UserID             uint  `json:"user_id"`
	PreviousScore      int   `json:"previous_score"`
	NewScore           int   `json:"new_score"`
	PenaltyID          uint  `json:"penalty_id"`
	ForfeitedDepositID *uint `json:"forfeited_deposit_id,omitempty"`
}

// Apply penalizes approved non-host members who never attended. Members
// already penalized for this meetup are skipped, so a repeated run after a
// committed one returns an empty list.
func (p *NoShowPenaltyProcessor) Apply(ctx context.Context, meetupID, hostID uint) ([]PenaltyResult, error) {
	results := []PenaltyResult{}
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := lockMeetup(ctx, p.meetups.WithTx(tx), meetupID)
		if err != nil {
			return err
		}
		if !m.IsHost(hostID) {
			return domain.ErrNotHost
		}
		if m.Status == domain.MeetupStatusCancelled {
			return domain.ErrMeetupCancelled
		}
		absentees, err := p.participants.WithTx(tx).ListAbsentees(ctx, meetupID, m.HostID)
		if err != nil {
			return fmt.Errorf("list absentees: %w", err)
		}
		penalties := p.penalties.WithTx(tx)
		done, err := penalties.PenalizedUserIDs(ctx, meetupID, domain.PenaltyTypeNoShow)
		if err != nil {
			return fmt.Errorf("list penalized: %w", err)
		}
		skip := make(map[uint]bool, len(done))
		for _, id := range done {
			skip[id] = true
		}
		var targets []uint
		for _, a := range absentees {
			if !skip[a.UserID] {
				targets = append(targets, a.UserID)
			}
		}
		if len(targets) == 0 {
			return nil
		}

		forfeited, err := p.escrow.forfeit(ctx, tx, meetupID, targets)
		if err != nil {
			return err
		}
		users := p.users.WithTx(tx)
		for _, userID := range targets {
			if err := users.Ensure(ctx, userID); err != nil {
				return fmt.Errorf("ensure user %d: %w", userID, err)
			}
			u, err := users.LockByID(ctx, userID)
			if err != nil {
				// The row exists but the account was deleted.
				if isNotFound(err) {
					return domain.ErrUserNotFound
				}
				return fmt.Errorf("lock user %d: %w", userID, err)
			}
			prev := u.TrustScore
			deducted := p.points
			if deducted > prev {
				deducted = prev
			}
			u.TrustScore = prev - deducted
			if err := users.UpdateTrustScore(ctx, u); err != nil {
				return fmt.Errorf("update trust score %d: %w", userID, err)
			}
			rec := &models.PenaltyRecord{
				UserID:   userID,
				MeetupID: meetupID,
				Type:     domain.PenaltyTypeNoShow,
				Amount:   deducted,
				Reason:   fmt.Sprintf("no-show at meetup %d", meetupID),
			}
			if err := penalties.Create(ctx, rec); err != nil {
				return fmt.Errorf("create penalty %d: %w", userID, err)
			}
			r := PenaltyResult{UserID: userID, PreviousScore: prev, NewScore: u.TrustScore, PenaltyID: rec.ID}
			if depID, ok := forfeited[userID]; ok {
				r.ForfeitedDepositID = &depID
			}
			results = append(results, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[penalty] meetup=%d host=%d penalized=%d", meetupID, hostID, len(results))
	return results, nil
}

// ListPenalties returns the meetup's penalty rows to its host.
func (p *NoShowPenaltyProcessor) ListPenalties(ctx context.Context, meetupID, hostID uint) ([]models.PenaltyRecord, error) {
	m, err := p.meetups.GetByID(ctx, meetupID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrMeetupNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}
	if !m.IsHost(hostID) {
		return nil, domain.ErrNotHost
	}
	list, err := p.penalties.ListByMeetup(ctx, meetupID)
	if err != nil {
		return nil, fmt.Errorf("list penalties: %w", err)
	}
	return list, nil
}
