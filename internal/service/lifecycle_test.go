package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealmate/internal/domain"
	"mealmate/internal/models"
	"mealmate/internal/testutil"
	"mealmate/pkg/location"
)

func TestMeetupLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := testutil.CreateUser(t, f.db, "alice")
	b := testutil.CreateUser(t, f.db, "bob")

	m, err := f.meetups.Create(ctx, CreateMeetupInput{
		HostID:      a.ID,
		Title:       "Naengmyeon",
		Capacity:    4,
		ScheduledAt: f.clock.Add(2 * time.Hour),
		Location:    location.Point{Lat: testutil.Venue.Lat, Lng: testutil.Venue.Lng},
	})
	require.NoError(t, err)

	p, err := f.participation.Join(ctx, m.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipantRequested, p.Status)

	_, updated, err := f.participation.SetStatus(ctx, m.ID, b.ID, domain.ParticipantApproved, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.LiveParticipantCount)

	_, err = f.ledger.Earn(ctx, b.ID, 5000, "seed", "")
	require.NoError(t, err)
	d, err := f.escrow.Pay(ctx, PayDepositInput{MeetupID: m.ID, UserID: b.ID, Amount: 3000, Method: domain.PaymentMethodPoints})
	require.NoError(t, err)
	bal, err := f.ledger.GetBalance(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), bal.AvailablePoints)

	_, err = f.verifier.GPSCheckIn(ctx, m.ID, b.ID, northOfVenue(40))
	require.NoError(t, err)
	assert.True(t, participant(t, f, m.ID, b.ID).Attended)

	refunded, err := f.escrow.Refund(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DepositRefunded, refunded.Status)
	bal, err = f.ledger.GetBalance(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), bal.AvailablePoints)

	results, err := f.penalties.Apply(ctx, m.ID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, results)
	var n int64
	require.NoError(t, f.db.Model(&models.PenaltyRecord{}).Count(&n).Error)
	assert.Zero(t, n)

	ok, err := f.ledger.Reconcile(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
