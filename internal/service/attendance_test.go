package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealmate/internal/domain"
	"mealmate/internal/models"
	"mealmate/internal/testutil"
	"mealmate/pkg/location"
)

func northOfVenue(meters float64) *location.Point {
	return &location.Point{Lat: testutil.Venue.Lat + location.MetersToLatDegrees(meters), Lng: testutil.Venue.Lng}
}

func approvedMember(t *testing.T, f *fixture) (*models.Meetup, *models.User, *models.User) {
	t.Helper()
	host := testutil.CreateUser(t, f.db, "host")
	guest := testutil.CreateUser(t, f.db, "guest")
	m := testutil.CreateMeetup(t, f.db, host.ID, 4)
	testutil.AddParticipant(t, f.db, m.ID, guest.ID, domain.ParticipantApproved)
	return m, host, guest
}

func participant(t *testing.T, f *fixture, meetupID, userID uint) models.Participant {
	t.Helper()
	var p models.Participant
	require.NoError(t, f.db.Where("meetup_id = ? AND user_id = ?", meetupID, userID).First(&p).Error)
	return p
}

func countAttendance(t *testing.T, f *fixture, meetupID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.AttendanceRecord{}).Where("meetup_id = ?", meetupID).Count(&n).Error)
	return n
}

func TestGPSCheckInInsideFence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, _, guest := approvedMember(t, f)

	res, err := f.verifier.GPSCheckIn(ctx, m.ID, guest.ID, northOfVenue(99))
	require.NoError(t, err)
	require.NotNil(t, res.DistanceMeters)
	assert.InDelta(t, 99, *res.DistanceMeters, 0.5)
	assert.Equal(t, domain.AttendanceMethodGPS, res.Record.Method)
	assert.Equal(t, domain.AttendanceConfirmed, res.Record.Status)

	p := participant(t, f, m.ID, guest.ID)
	assert.True(t, p.Attended)
	require.NotNil(t, p.AttendedAt)
}

func TestGPSCheckInTooFar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, _, guest := approvedMember(t, f)

	_, err := f.verifier.GPSCheckIn(ctx, m.ID, guest.ID, northOfVenue(101))
	require.ErrorIs(t, err, domain.ErrTooFar)
	var far *domain.TooFarError
	require.True(t, errors.As(err, &far))
	assert.InDelta(t, 101, far.DistanceMeters, 0.5)

	assert.False(t, participant(t, f, m.ID, guest.ID).Attended)
	assert.Zero(t, countAttendance(t, f, m.ID))
}

func TestGPSCheckInGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, _, _ := approvedMember(t, f)
	requested := testutil.CreateUser(t, f.db, "requested")
	testutil.AddParticipant(t, f.db, m.ID, requested.ID, domain.ParticipantRequested)

	_, err := f.verifier.GPSCheckIn(ctx, m.ID, requested.ID, nil)
	assert.ErrorIs(t, err, domain.ErrMissingLocation)
	_, err = f.verifier.GPSCheckIn(ctx, m.ID, requested.ID, &location.Point{Lat: 10, Lng: 200})
	assert.ErrorIs(t, err, domain.ErrInvalidLocation)
	_, err = f.verifier.GPSCheckIn(ctx, m.ID, requested.ID, northOfVenue(0))
	assert.ErrorIs(t, err, domain.ErrNotApprovedParticipant)
	_, err = f.verifier.GPSCheckIn(ctx, 9999, requested.ID, northOfVenue(0))
	assert.ErrorIs(t, err, domain.ErrMeetupNotFound)
}

func TestRepeatedCheckInKeepsOneRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, host, guest := approvedMember(t, f)

	first, err := f.verifier.GPSCheckIn(ctx, m.ID, guest.ID, northOfVenue(10))
	require.NoError(t, err)
	firstAt := *participant(t, f, m.ID, guest.ID).AttendedAt

	f.clock = f.clock.Add(time.Minute)
	second, err := f.verifier.HostConfirm(ctx, m.ID, guest.ID, host.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, domain.AttendanceMethodHostConfirm, second.Record.Method)
	require.NotNil(t, second.Record.ConfirmedBy)
	assert.Equal(t, host.ID, *second.Record.ConfirmedBy)
	assert.Equal(t, int64(1), countAttendance(t, f, m.ID))
	assert.True(t, firstAt.Equal(*participant(t, f, m.ID, guest.ID).AttendedAt))
}

func TestQRCheckIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, host, guest := approvedMember(t, f)

	issued, err := f.verifier.IssueQRToken(ctx, m.ID, host.ID)
	require.NoError(t, err)
	assert.True(t, issued.ExpiresAt.Equal(f.clock.Add(10*time.Minute)))

	for i := 0; i < 2; i++ {
		res, err := f.verifier.QRCheckIn(ctx, m.ID, guest.ID, issued.Token)
		require.NoError(t, err)
		assert.Equal(t, domain.AttendanceMethodQR, res.Record.Method)
		assert.NotEmpty(t, res.Record.TokenID)
	}
	assert.Equal(t, int64(1), countAttendance(t, f, m.ID))
	assert.True(t, participant(t, f, m.ID, guest.ID).Attended)
}

func TestQRCheckInRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, host, guest := approvedMember(t, f)
	other := testutil.CreateMeetup(t, f.db, host.ID, 4)

	_, err := f.verifier.IssueQRToken(ctx, m.ID, guest.ID)
	assert.ErrorIs(t, err, domain.ErrNotHost)

	issued, err := f.verifier.IssueQRToken(ctx, m.ID, host.ID)
	require.NoError(t, err)

	_, err = f.verifier.QRCheckIn(ctx, m.ID, guest.ID, "")
	assert.ErrorIs(t, err, domain.ErrMissingToken)
	_, err = f.verifier.QRCheckIn(ctx, m.ID, guest.ID, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	_, err = f.verifier.QRCheckIn(ctx, other.ID, guest.ID, issued.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	f.clock = f.clock.Add(10*time.Minute + time.Second)
	_, err = f.verifier.QRCheckIn(ctx, m.ID, guest.ID, issued.Token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.Zero(t, countAttendance(t, f, m.ID))
}

func TestQRCheckInRequiresApproval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, host, _ := approvedMember(t, f)
	stranger := testutil.CreateUser(t, f.db, "stranger")

	issued, err := f.verifier.IssueQRToken(ctx, m.ID, host.ID)
	require.NoError(t, err)
	_, err = f.verifier.QRCheckIn(ctx, m.ID, stranger.ID, issued.Token)
	assert.ErrorIs(t, err, domain.ErrNotApprovedParticipant)
}

func TestHostConfirmRequiresHost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, _, guest := approvedMember(t, f)

	_, err := f.verifier.HostConfirm(ctx, m.ID, guest.ID, guest.ID)
	assert.ErrorIs(t, err, domain.ErrNotHost)
}

func TestMutualConfirmIsAdvisory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, host, guest := approvedMember(t, f)

	res, err := f.verifier.MutualConfirm(ctx, m.ID, host.ID, guest.ID)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, int64(1), res.Confirmation)

	res, err = f.verifier.MutualConfirm(ctx, m.ID, host.ID, guest.ID)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, int64(1), res.Confirmation)

	assert.False(t, participant(t, f, m.ID, guest.ID).Attended)
	assert.Zero(t, countAttendance(t, f, m.ID))

	_, err = f.verifier.MutualConfirm(ctx, m.ID, guest.ID, guest.ID)
	assert.ErrorIs(t, err, domain.ErrSelfConfirm)
	stranger := testutil.CreateUser(t, f.db, "stranger")
	_, err = f.verifier.MutualConfirm(ctx, m.ID, stranger.ID, guest.ID)
	assert.ErrorIs(t, err, domain.ErrNotApprovedParticipant)
}

func TestAttendanceSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, host, guest := approvedMember(t, f)
	late := testutil.CreateUser(t, f.db, "late")
	testutil.AddParticipant(t, f.db, m.ID, late.ID, domain.ParticipantApproved)

	_, err := f.verifier.GPSCheckIn(ctx, m.ID, guest.ID, northOfVenue(5))
	require.NoError(t, err)

	s, err := f.verifier.Summary(ctx, m.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.TotalApproved)
	assert.Equal(t, int64(1), s.Attended)
	require.NotNil(t, s.Mine)
	assert.Equal(t, domain.AttendanceMethodGPS, s.Mine.Method)

	s, err = f.verifier.Summary(ctx, m.ID, host.ID)
	require.NoError(t, err)
	assert.Nil(t, s.Mine)
}
