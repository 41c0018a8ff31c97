package service

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"mealmate/config"
	"mealmate/internal/auth"
	"mealmate/internal/repository"
	"mealmate/internal/testutil"
	"mealmate/pkg/payment"
)

type fixture struct {
	db            *gorm.DB
	clock         time.Time
	meetups       *MeetupService
	participation *ParticipationService
	ledger        *PointsLedger
	escrow        *DepositEscrow
	verifier      *AttendanceVerifier
	tokens        *auth.CheckinTokens
	penalties     *NoShowPenaltyProcessor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := config.Default()
	f := &fixture{db: db, clock: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)}
	now := func() time.Time { return f.clock }

	meetupRepo := repository.NewMeetupRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	depositRepo := repository.NewDepositRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	penaltyRepo := repository.NewPenaltyRepository(db)
	userRepo := repository.NewUserRepository(db)

	f.meetups = NewMeetupService(db, meetupRepo, participantRepo)
	f.meetups.now = now
	f.participation = NewParticipationService(db, meetupRepo, participantRepo)
	f.participation.now = now
	f.ledger = NewPointsLedger(db, pointsRepo)
	f.escrow = NewDepositEscrow(db, depositRepo, meetupRepo, participantRepo, f.ledger, payment.StubRail{})
	f.escrow.now = now
	f.tokens = auth.NewCheckinTokens(&cfg.Checkin).WithClock(now)
	f.verifier = NewAttendanceVerifier(db, meetupRepo, participantRepo, attendanceRepo, f.tokens, cfg.Checkin.GeofenceRadiusMeters)
	f.verifier.now = now
	f.penalties = NewNoShowPenaltyProcessor(db, meetupRepo, participantRepo, penaltyRepo, userRepo, f.escrow, cfg.Penalty.NoShowPoints)
	return f
}
