package domain

const (
	MeetupStatusRecruiting = "RECRUITING"
	MeetupStatusFilled     = "FILLED"
	MeetupStatusInProgress = "IN_PROGRESS"
	MeetupStatusCompleted  = "COMPLETED"
	MeetupStatusCancelled  = "CANCELLED"
)

const (
	ParticipantRequested = "REQUESTED"
	ParticipantApproved  = "APPROVED"
	ParticipantRejected  = "REJECTED"
)

const (
	AttendanceMethodGPS         = "GPS"
	AttendanceMethodQR          = "QR"
	AttendanceMethodHostConfirm = "HOST_CONFIRM"
)

const AttendanceConfirmed = "CONFIRMED"

const (
	DepositPaid      = "PAID"
	DepositRefunded  = "REFUNDED"
	DepositConverted = "CONVERTED"
	DepositForfeited = "FORFEITED"
)

// Deposit payment methods. Anything but points goes through an external rail.
const (
	PaymentMethodPoints = "points"
	PaymentMethodCard   = "card"
	PaymentMethodWallet = "wallet"
)

const (
	PointsTxEarn  = "EARN"
	PointsTxSpend = "SPEND"
)

// Ledger reasons.
const (
	PointsReasonDeposit           = "deposit"
	PointsReasonRefund            = "refund"
	PointsReasonDepositConversion = "deposit_conversion"
)

const PenaltyTypeNoShow = "NO_SHOW"

const DefaultTrustScore = 100

const QRTokenType = "checkin"

// IsMeetupOpen reports whether memberships may still change.
func IsMeetupOpen(status string) bool {
	return status == MeetupStatusRecruiting || status == MeetupStatusFilled
}

func IsValidParticipantStatus(s string) bool {
	switch s {
	case ParticipantRequested, ParticipantApproved, ParticipantRejected:
		return true
	}
	return false
}
