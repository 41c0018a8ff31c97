// Package payment is the boundary to external payment rails used for
// card and wallet deposits. Settlement itself happens outside this service.
package payment

import (
	"context"
	"errors"
)

var ErrDeclined = errors.New("payment declined")

// Charge is a deposit authorization request.
type Charge struct {
	UserID         uint
	Amount         int64
	Method         string // card, wallet
	IdempotencyKey string
	Description    string
}

type Receipt struct {
	Reference string
	Status    string // PENDING until the rail confirms
}

// Rail authorizes a charge on an external payment rail. Void releases an
// authorization that was never recorded as a deposit.
type Rail interface {
	Authorize(ctx context.Context, charge Charge) (*Receipt, error)
	Void(ctx context.Context, reference string) error
}
