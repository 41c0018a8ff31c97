// Package testutil provides an isolated store and fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mealmate/internal/database"
	"mealmate/internal/domain"
	"mealmate/internal/models"
)

var seq atomic.Int64

// NewDB returns a migrated in-memory SQLite database private to the test.
// A single connection serializes transactions the way row locks do in MySQL.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_busy_timeout=5000", name, seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateUser inserts a user with the default trust score.
func CreateUser(t *testing.T, db *gorm.DB, nickname string) *models.User {
	t.Helper()
	email := fmt.Sprintf("%s_%d@example.com", nickname, seq.Add(1))
	u := &models.User{
		Nickname:   nickname,
		Email:      &email,
		TrustScore: domain.DefaultTrustScore,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Venue is the fixed location used by meetup fixtures.
var Venue = struct{ Lat, Lng float64 }{Lat: 37.5665, Lng: 126.9780}

// CreateMeetup inserts a RECRUITING meetup with the host already approved,
// bypassing the service layer.
func CreateMeetup(t *testing.T, db *gorm.DB, hostID uint, capacity int) *models.Meetup {
	t.Helper()
	m := &models.Meetup{
		HostID:               hostID,
		Title:                "Dinner",
		Capacity:             capacity,
		LiveParticipantCount: 1,
		Status:               domain.MeetupStatusRecruiting,
		ScheduledAt:          time.Now().Add(24 * time.Hour),
		Latitude:             Venue.Lat,
		Longitude:            Venue.Lng,
		Address:              "Seoul City Hall",
	}
	require.NoError(t, db.Create(m).Error)
	AddParticipant(t, db, m.ID, hostID, domain.ParticipantApproved)
	return m
}

// AddParticipant inserts a membership row directly. It does not touch the
// meetup's live count.
func AddParticipant(t *testing.T, db *gorm.DB, meetupID, userID uint, status string) *models.Participant {
	t.Helper()
	p := &models.Participant{MeetupID: meetupID, UserID: userID, Status: status, JoinedAt: time.Now()}
	require.NoError(t, db.Create(p).Error)
	return p
}
