package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers that only care about the category
// (HTTP status mapping, retry decisions).
type Kind int

const (
	KindTransient Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalid
	KindInsufficientFunds
	KindExpired
	KindInvalidToken
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindExpired:
		return "expired"
	case KindInvalidToken:
		return "invalid_token"
	default:
		return "transient"
	}
}

// Error is a classified domain failure. Code doubles as the i18n message id.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newErr(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

// Domain errors.
var (
	ErrMeetupNotFound      = newErr(KindNotFound, "meetup_not_found", "meetup not found")
	ErrNotRecruiting       = newErr(KindConflict, "meetup_not_recruiting", "meetup is not recruiting")
	ErrMeetupFull          = newErr(KindConflict, "meetup_full", "meetup is full")
	ErrMeetupClosed        = newErr(KindConflict, "meetup_closed", "meetup no longer accepts membership changes")
	ErrMeetupCancelled     = newErr(KindConflict, "meetup_cancelled", "meetup was cancelled")
	ErrCapacityBelowCount  = newErr(KindConflict, "capacity_below_count", "capacity cannot be lower than the current participant count")
	ErrInvalidCapacity     = newErr(KindInvalid, "invalid_capacity", "capacity must be at least 2")
	ErrInvalidSchedule     = newErr(KindInvalid, "invalid_schedule", "meetup must be scheduled in the future")
	ErrInvalidTitle        = newErr(KindInvalid, "invalid_title", "title is required")
	ErrInvalidMeetupStatus = newErr(KindInvalid, "invalid_meetup_status", "invalid meetup status transition")

	ErrAlreadyJoined          = newErr(KindConflict, "already_joined", "already joined this meetup")
	ErrNoMembership           = newErr(KindNotFound, "no_membership", "not a member of this meetup")
	ErrParticipantNotFound    = newErr(KindNotFound, "participant_not_found", "participant not found")
	ErrInvalidStatus          = newErr(KindInvalid, "invalid_participant_status", "invalid participant status")
	ErrNotHost                = newErr(KindForbidden, "not_host", "only the host can perform this action")
	ErrNotApprovedParticipant = newErr(KindForbidden, "not_approved_participant", "only approved participants can perform this action")
	ErrHostMembership         = newErr(KindInvalid, "host_membership", "the host's own membership cannot be changed")

	ErrMissingLocation = newErr(KindInvalid, "missing_location", "current location is required")
	ErrInvalidLocation = newErr(KindInvalid, "invalid_location", "coordinates are out of range")
	ErrTooFar          = newErr(KindForbidden, "too_far", "too far from the meetup location")
	ErrMissingToken    = newErr(KindInvalid, "missing_token", "check-in token is required")
	ErrInvalidToken    = newErr(KindInvalidToken, "invalid_token", "invalid check-in token")
	ErrTokenExpired    = newErr(KindExpired, "token_expired", "check-in token has expired")
	ErrSelfConfirm     = newErr(KindInvalid, "self_confirm", "cannot confirm your own attendance")

	ErrDuplicateDeposit   = newErr(KindConflict, "duplicate_deposit", "a deposit for this meetup is already active")
	ErrDepositNotFound    = newErr(KindNotFound, "deposit_not_found", "deposit not found")
	ErrAlreadyFinalized   = newErr(KindConflict, "deposit_finalized", "deposit is already finalized")
	ErrUnsupportedMethod  = newErr(KindInvalid, "unsupported_payment_method", "unsupported payment method")
	ErrInvalidAmount      = newErr(KindInvalid, "invalid_amount", "amount must be greater than zero")
	ErrInsufficientPoints = newErr(KindInsufficientFunds, "insufficient_points", "insufficient points")
	ErrNotDepositOwner    = newErr(KindForbidden, "not_deposit_owner", "deposit belongs to another user")
	ErrPaymentDeclined    = newErr(KindConflict, "payment_declined", "payment was declined")

	ErrUserNotFound = newErr(KindNotFound, "user_not_found", "user not found")
)

// TooFarError reports the measured distance of a rejected GPS check-in.
type TooFarError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *TooFarError) Error() string {
	return fmt.Sprintf("too far from the meetup location: %.1fm (limit %.0fm)", e.DistanceMeters, e.RadiusMeters)
}

func (e *TooFarError) Unwrap() error { return ErrTooFar }

// KindOf returns the category of err. Unclassified errors are store or
// infrastructure failures and are reported as transient.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindTransient
}

// CodeOf returns the stable code of a domain error, or "store_unavailable".
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "store_unavailable"
}
