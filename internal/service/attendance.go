package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mealmate/internal/auth"
	"mealmate/internal/domain"
	"mealmate/internal/models"
	"mealmate/internal/repository"
	"mealmate/pkg/location"

	"gorm.io/gorm"
)

// Proof is one of the authoritative ways a member proves presence. Each
// variant fills its own columns of the attendance record.
type Proof interface {
	Method() string
	apply(rec *models.AttendanceRecord)
}

type GPSProof struct {
	Location       location.Point
	DistanceMeters float64
}

func (GPSProof) Method() string { return domain.AttendanceMethodGPS }

func (p GPSProof) apply(rec *models.AttendanceRecord) {
	lat, lng, dist := p.Location.Lat, p.Location.Lng, location.Round2(p.DistanceMeters)
	rec.Latitude, rec.Longitude, rec.DistanceMeters = &lat, &lng, &dist
}

type QRProof struct {
	TokenID string
}

func (QRProof) Method() string { return domain.AttendanceMethodQR }

func (p QRProof) apply(rec *models.AttendanceRecord) { rec.TokenID = p.TokenID }

type HostConfirmProof struct {
	ConfirmerID uint
}

func (HostConfirmProof) Method() string { return domain.AttendanceMethodHostConfirm }

func (p HostConfirmProof) apply(rec *models.AttendanceRecord) {
	id := p.ConfirmerID
	rec.ConfirmedBy = &id
}

// AttendanceVerifier converges GPS, QR and host confirmation on one
// attendance record per membership. Mutual confirmations are stored apart
// and never mark anyone attended.
type AttendanceVerifier struct {
	db           *gorm.DB
	meetups      *repository.MeetupRepository
	participants *repository.ParticipantRepository
	attendance   *repository.AttendanceRepository
	tokens       *auth.CheckinTokens
	radius       float64
	now          func() time.Time
}

func NewAttendanceVerifier(
	db *gorm.DB,
	meetups *repository.MeetupRepository,
	participants *repository.ParticipantRepository,
	attendance *repository.AttendanceRepository,
	tokens *auth.CheckinTokens,
	radiusMeters float64,
) *AttendanceVerifier {
	return &AttendanceVerifier{
		db:           db,
		meetups:      meetups,
		participants: participants,
		attendance:   attendance,
		tokens:       tokens,
		radius:       radiusMeters,
		now:          time.Now,
	}
}

type CheckinResult struct {
	Record         *models.AttendanceRecord `json:"attendance"`
	DistanceMeters *float64                 `json:"distance_meters,omitempty"`
}

// GPSCheckIn accepts the caller's position when it lies within the venue
// geofence. A rejection carries the measured distance as *domain.TooFarError.
func (v *AttendanceVerifier) GPSCheckIn(ctx context.Context, meetupID, userID uint, at *location.Point) (*CheckinResult, error) {
	if at == nil {
		return nil, domain.ErrMissingLocation
	}
	if err := at.Validate(); err != nil {
		return nil, domain.ErrInvalidLocation
	}
	m, err := v.getMeetup(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	if err := v.requireApproved(ctx, v.participants, meetupID, userID); err != nil {
		return nil, err
	}
	venue := location.Point{Lat: m.Latitude, Lng: m.Longitude}
	dist := at.DistanceMeters(venue)
	if !location.Within(dist, v.radius) {
		log.Printf("[checkin] gps rejected meetup=%d user=%d distance=%.1fm", meetupID, userID, dist)
		return nil, &domain.TooFarError{DistanceMeters: location.Round2(dist), RadiusMeters: v.radius}
	}
	rec, err := v.commit(ctx, meetupID, userID, GPSProof{Location: *at, DistanceMeters: dist})
	if err != nil {
		return nil, err
	}
	rounded := location.Round2(dist)
	return &CheckinResult{Record: rec, DistanceMeters: &rounded}, nil
}

type QRTokenResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueQRToken mints a check-in token for the meetup's host.
func (v *AttendanceVerifier) IssueQRToken(ctx context.Context, meetupID, hostID uint) (*QRTokenResult, error) {
	m, err := v.getMeetup(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	if !m.IsHost(hostID) {
		return nil, domain.ErrNotHost
	}
	token, claims, err := v.tokens.Issue(meetupID, hostID)
	if err != nil {
		return nil, fmt.Errorf("sign checkin token: %w", err)
	}
	return &QRTokenResult{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// QRCheckIn verifies a host-issued token. The token must belong to this
// meetup and its current host before expiry is considered.
func (v *AttendanceVerifier) QRCheckIn(ctx context.Context, meetupID, userID uint, token string) (*CheckinResult, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	m, err := v.getMeetup(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	claims, err := v.tokens.WithClock(v.now).Verify(token, meetupID)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return nil, domain.ErrTokenExpired
	case err != nil:
		return nil, domain.ErrInvalidToken
	case claims.HostID != m.HostID:
		return nil, domain.ErrInvalidToken
	}
	if err := v.requireApproved(ctx, v.participants, meetupID, userID); err != nil {
		return nil, err
	}
	rec, err := v.commit(ctx, meetupID, userID, QRProof{TokenID: claims.ID})
	if err != nil {
		return nil, err
	}
	return &CheckinResult{Record: rec}, nil
}

// HostConfirm lets the host mark an approved member attended directly.
func (v *AttendanceVerifier) HostConfirm(ctx context.Context, meetupID, participantID, hostID uint) (*CheckinResult, error) {
	m, err := v.getMeetup(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	if !m.IsHost(hostID) {
		return nil, domain.ErrNotHost
	}
	if err := v.requireApproved(ctx, v.participants, meetupID, participantID); err != nil {
		if errors.Is(err, domain.ErrNotApprovedParticipant) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	rec, err := v.commit(ctx, meetupID, participantID, HostConfirmProof{ConfirmerID: hostID})
	if err != nil {
		return nil, err
	}
	return &CheckinResult{Record: rec}, nil
}

type MutualConfirmResult struct {
	Created      bool  `json:"created"`
	Confirmation int64 `json:"confirmations"`
}

// MutualConfirm stores a peer attestation. Repeats are acknowledged without
// a second row.
func (v *AttendanceVerifier) MutualConfirm(ctx context.Context, meetupID, confirmerID, confirmedID uint) (*MutualConfirmResult, error) {
	if confirmerID == confirmedID {
		return nil, domain.ErrSelfConfirm
	}
	if _, err := v.getMeetup(ctx, meetupID); err != nil {
		return nil, err
	}
	if err := v.requireApproved(ctx, v.participants, meetupID, confirmerID); err != nil {
		return nil, err
	}
	if err := v.requireApproved(ctx, v.participants, meetupID, confirmedID); err != nil {
		return nil, err
	}
	created, err := v.attendance.InsertMutual(ctx, &models.MutualConfirmation{
		MeetupID:    meetupID,
		ConfirmerID: confirmerID,
		ConfirmedID: confirmedID,
		CreatedAt:   v.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert mutual confirmation: %w", err)
	}
	n, err := v.attendance.CountMutualFor(ctx, meetupID, confirmedID)
	if err != nil {
		return nil, fmt.Errorf("count mutual confirmations: %w", err)
	}
	return &MutualConfirmResult{Created: created, Confirmation: n}, nil
}

type AttendanceSummary struct {
	MeetupID      uint                     `json:"meetup_id"`
	TotalApproved int64                    `json:"total_approved"`
	Attended      int64                    `json:"attended"`
	Mine          *models.AttendanceRecord `json:"my_attendance"`
}

// Summary returns the meetup's attendance counts and the caller's own record
// (nil when the caller has not checked in).
func (v *AttendanceVerifier) Summary(ctx context.Context, meetupID, userID uint) (*AttendanceSummary, error) {
	if _, err := v.meetups.GetByID(ctx, meetupID); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrMeetupNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}
	counts, err := v.participants.CountAttendance(ctx, meetupID)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	out := &AttendanceSummary{MeetupID: meetupID, TotalApproved: counts.Approved, Attended: counts.Attended}
	rec, err := v.attendance.Get(ctx, meetupID, userID)
	switch {
	case err == nil:
		out.Mine = rec
	case !isNotFound(err):
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return out, nil
}

// commit upserts the attendance record and sets attended on the membership in
// one transaction, then returns the stored row.
func (v *AttendanceVerifier) commit(ctx context.Context, meetupID, userID uint, proof Proof) (*models.AttendanceRecord, error) {
	var out *models.AttendanceRecord
	err := v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		participants := v.participants.WithTx(tx)
		if err := v.requireApproved(ctx, participants, meetupID, userID); err != nil {
			return err
		}
		now := v.now()
		rec := &models.AttendanceRecord{
			MeetupID:    meetupID,
			UserID:      userID,
			Method:      proof.Method(),
			Status:      domain.AttendanceConfirmed,
			ConfirmedAt: &now,
		}
		proof.apply(rec)
		attendance := v.attendance.WithTx(tx)
		if err := attendance.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("upsert attendance: %w", err)
		}
		if err := participants.MarkAttended(ctx, meetupID, userID, now); err != nil {
			return fmt.Errorf("mark attended: %w", err)
		}
		stored, err := attendance.Get(ctx, meetupID, userID)
		if err != nil {
			return fmt.Errorf("reload attendance: %w", err)
		}
		out = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[checkin] %s meetup=%d user=%d", proof.Method(), meetupID, userID)
	return out, nil
}

// getMeetup loads a meetup that still accepts attendance proofs.
func (v *AttendanceVerifier) getMeetup(ctx context.Context, meetupID uint) (*models.Meetup, error) {
	m, err := v.meetups.GetByID(ctx, meetupID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrMeetupNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}
	if m.Status == domain.MeetupStatusCancelled {
		return nil, domain.ErrMeetupCancelled
	}
	return m, nil
}

func (v *AttendanceVerifier) requireApproved(ctx context.Context, participants *repository.ParticipantRepository, meetupID, userID uint) error {
	p, err := participants.Get(ctx, meetupID, userID)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotApprovedParticipant
		}
		return fmt.Errorf("get membership: %w", err)
	}
	if !p.IsApproved() {
		return domain.ErrNotApprovedParticipant
	}
	return nil
}
