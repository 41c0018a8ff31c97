package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mealmate/internal/domain"
	"mealmate/internal/models"
	"mealmate/internal/repository"
	"mealmate/pkg/payment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DepositEscrow holds good-faith deposits per membership. A deposit is PAID
// until it reaches exactly one terminal status and is never reopened.
type DepositEscrow struct {
	db           *gorm.DB
	deposits     *repository.DepositRepository
	meetups      *repository.MeetupRepository
	participants *repository.ParticipantRepository
	ledger       *PointsLedger
	rail         payment.Rail
	now          func() time.Time
}

func NewDepositEscrow(
	db *gorm.DB,
	deposits *repository.DepositRepository,
	meetups *repository.MeetupRepository,
	participants *repository.ParticipantRepository,
	ledger *PointsLedger,
	rail payment.Rail,
) *DepositEscrow {
	return &DepositEscrow{
		db:           db,
		deposits:     deposits,
		meetups:      meetups,
		participants: participants,
		ledger:       ledger,
		rail:         rail,
		now:          time.Now,
	}
}

type PayDepositInput struct {
	MeetupID uint
	UserID   uint
	Amount   int64
	Method   string
}

func isSupportedMethod(m string) bool {
	switch m {
	case domain.PaymentMethodPoints, domain.PaymentMethodCard, domain.PaymentMethodWallet:
		return true
	}
	return false
}

// Pay opens a deposit. Points deposits debit the ledger in the same
// transaction; card and wallet deposits are recorded as PAID once the rail
// accepts the charge and settle outside this service. An authorization whose
// deposit could not be stored is voided on the rail.
// voidAuthorization uses its own context; the request may already be done.
func (e *DepositEscrow) voidAuthorization(ref string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.rail.Void(ctx, ref); err != nil {
		log.Printf("[deposit] orphaned authorization ref=%s: %v", ref, err)
		return
	}
	log.Printf("[deposit] voided authorization ref=%s", ref)
}

func (e *DepositEscrow) Pay(ctx context.Context, in PayDepositInput) (*models.Deposit, error) {
	if in.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if !isSupportedMethod(in.Method) {
		return nil, domain.ErrUnsupportedMethod
	}
	if _, err := e.meetups.GetByID(ctx, in.MeetupID); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrMeetupNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}
	p, err := e.participants.Get(ctx, in.MeetupID, in.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNoMembership
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	if p.Status == domain.ParticipantRejected {
		return nil, domain.ErrNoMembership
	}
	if _, err := e.deposits.GetActive(ctx, in.MeetupID, in.UserID); err == nil {
		return nil, domain.ErrDuplicateDeposit
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("get active deposit: %w", err)
	}

	reference := uuid.NewString()
	providerRef := ""
	if in.Method != domain.PaymentMethodPoints {
		receipt, err := e.rail.Authorize(ctx, payment.Charge{
			UserID:         in.UserID,
			Amount:         in.Amount,
			Method:         in.Method,
			IdempotencyKey: reference,
			Description:    fmt.Sprintf("meetup %d deposit", in.MeetupID),
		})
		if err != nil {
			if errors.Is(err, payment.ErrDeclined) {
				return nil, domain.ErrPaymentDeclined
			}
			return nil, fmt.Errorf("authorize %s deposit: %w", in.Method, err)
		}
		providerRef = receipt.Reference
	}

	activeKey := models.DepositActiveKey(in.MeetupID, in.UserID)
	d := &models.Deposit{
		MeetupID:      in.MeetupID,
		UserID:        in.UserID,
		Amount:        in.Amount,
		Status:        domain.DepositPaid,
		PaymentMethod: in.Method,
		Reference:     reference,
		ProviderRef:   providerRef,
		ActiveKey:     &activeKey,
	}
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deposits := e.deposits.WithTx(tx)
		if _, err := deposits.GetActive(ctx, in.MeetupID, in.UserID); err == nil {
			return domain.ErrDuplicateDeposit
		} else if !isNotFound(err) {
			return fmt.Errorf("get active deposit: %w", err)
		}
		if in.Method == domain.PaymentMethodPoints {
			if _, err := e.ledger.spend(ctx, tx, in.UserID, in.Amount, domain.PointsReasonDeposit, reference); err != nil {
				return err
			}
		}
		if err := deposits.Create(ctx, d); err != nil {
			if isDuplicate(err) {
				return domain.ErrDuplicateDeposit
			}
			return fmt.Errorf("create deposit: %w", err)
		}
		return nil
	})
	if err != nil {
		if providerRef != "" {
			e.voidAuthorization(providerRef)
		}
		return nil, err
	}
	log.Printf("[deposit] paid id=%d meetup=%d user=%d amount=%d method=%s", d.ID, d.MeetupID, d.UserID, d.Amount, d.PaymentMethod)
	return d, nil
}

// Refund returns the deposit to the user's points balance.
func (e *DepositEscrow) Refund(ctx context.Context, depositID uint) (*models.Deposit, error) {
	return e.settle(ctx, depositID, domain.DepositRefunded, domain.PointsReasonRefund)
}

// ConvertToPoints credits the ledger exactly like Refund but records that the
// deposit became points, which reporting keeps apart from a refund.
func (e *DepositEscrow) ConvertToPoints(ctx context.Context, depositID uint) (*models.Deposit, error) {
	return e.settle(ctx, depositID, domain.DepositConverted, domain.PointsReasonDepositConversion)
}

func (e *DepositEscrow) settle(ctx context.Context, depositID uint, status, reason string) (*models.Deposit, error) {
	var out *models.Deposit
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deposits := e.deposits.WithTx(tx)
		d, err := deposits.LockByID(ctx, depositID)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrDepositNotFound
			}
			return fmt.Errorf("lock deposit: %w", err)
		}
		if d.IsTerminal() {
			return domain.ErrAlreadyFinalized
		}
		if _, err := e.ledger.earn(ctx, tx, d.UserID, d.Amount, reason, d.Reference); err != nil {
			return err
		}
		now := e.now()
		d.Status = status
		d.ActiveKey = nil
		d.FinalizedAt = &now
		if err := deposits.Finalize(ctx, d); err != nil {
			return fmt.Errorf("finalize deposit: %w", err)
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[deposit] %s id=%d user=%d amount=%d", status, out.ID, out.UserID, out.Amount)
	return out, nil
}

// forfeit closes the PAID deposits of the given members without any credit.
// It runs inside the penalty batch transaction.
func (e *DepositEscrow) forfeit(ctx context.Context, tx *gorm.DB, meetupID uint, userIDs []uint) (map[uint]uint, error) {
	deposits := e.deposits.WithTx(tx)
	list, err := deposits.LockActiveByMeetup(ctx, meetupID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("lock deposits: %w", err)
	}
	now := e.now()
	forfeited := make(map[uint]uint, len(list))
	for i := range list {
		d := &list[i]
		d.Status = domain.DepositForfeited
		d.ActiveKey = nil
		d.FinalizedAt = &now
		if err := deposits.Finalize(ctx, d); err != nil {
			return nil, fmt.Errorf("forfeit deposit %d: %w", d.ID, err)
		}
		forfeited[d.UserID] = d.ID
	}
	return forfeited, nil
}

func (e *DepositEscrow) GetDeposit(ctx context.Context, depositID uint) (*models.Deposit, error) {
	d, err := e.deposits.GetByID(ctx, depositID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrDepositNotFound
		}
		return nil, fmt.Errorf("get deposit: %w", err)
	}
	return d, nil
}

func (e *DepositEscrow) ListDeposits(ctx context.Context, userID uint, page, size int) ([]models.Deposit, error) {
	limit, offset := pageBounds(page, size)
	list, err := e.deposits.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	return list, nil
}
