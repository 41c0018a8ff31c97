package payment

import (
	"context"
	"fmt"
	"strings"
)

// StubRail accepts every charge; used in development and tests.
type StubRail struct{}

func (StubRail) Authorize(ctx context.Context, charge Charge) (*Receipt, error) {
	if charge.Amount <= 0 {
		return nil, ErrDeclined
	}
	return &Receipt{
		Reference: fmt.Sprintf("stub_%s_%s", charge.Method, charge.IdempotencyKey),
		Status:    "PENDING",
	}, nil
}

func (StubRail) Void(ctx context.Context, reference string) error {
	if !IsStubReference(reference) {
		return fmt.Errorf("unknown reference %q", reference)
	}
	return nil
}

// IsStubReference reports whether ref was issued by StubRail.
func IsStubReference(ref string) bool {
	return strings.HasPrefix(ref, "stub_")
}
