package auth

import (
	"errors"
	"time"

	"mealmate/config"
	"mealmate/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CheckinClaims is the payload a host's QR code carries.
type CheckinClaims struct {
	MeetupID uint   `json:"meetup_id"`
	HostID   uint   `json:"host_id"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

// CheckinTokens issues and verifies HMAC-signed QR check-in tokens.
type CheckinTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCheckinTokens(cfg *config.CheckinConfig) *CheckinTokens {
	return &CheckinTokens{secret: []byte(cfg.TokenSecret), ttl: cfg.TokenTTL, now: time.Now}
}

// WithClock returns a copy that reads time from now.
func (t *CheckinTokens) WithClock(now func() time.Time) *CheckinTokens {
	c := *t
	c.now = now
	return &c
}

// Issue returns a signed token valid for the configured TTL.
func (t *CheckinTokens) Issue(meetupID, hostID uint) (string, *CheckinClaims, error) {
	issued := t.now()
	claims := &CheckinClaims{
		MeetupID: meetupID,
		HostID:   hostID,
		Type:     domain.QRTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

var ErrWrongMeetup = errors.New("token issued for another meetup")

// Verify checks, in order: signature and type, that the token was issued for
// meetupID, and that it has not expired (the expiry instant itself is still
// valid). It returns ErrInvalidToken, ErrWrongMeetup or ErrTokenExpired.
func (t *CheckinTokens) Verify(tokenString string, meetupID uint) (*CheckinClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CheckinClaims{}, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*CheckinClaims)
	if !ok || !token.Valid || claims.Type != domain.QRTokenType || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	if claims.MeetupID != meetupID {
		return nil, ErrWrongMeetup
	}
	if t.now().After(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
