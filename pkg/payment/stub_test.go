package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubRailAuthorize(t *testing.T) {
	r, err := StubRail{}.Authorize(context.Background(), Charge{UserID: 7, Amount: 3000, Method: "card", IdempotencyKey: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "stub_card_abc", r.Reference)
	assert.Equal(t, "PENDING", r.Status)
	assert.True(t, IsStubReference(r.Reference))
}

func TestStubRailDeclinesNonPositive(t *testing.T) {
	_, err := StubRail{}.Authorize(context.Background(), Charge{Amount: 0})
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestStubRailVoid(t *testing.T) {
	assert.NoError(t, StubRail{}.Void(context.Background(), "stub_card_abc"))
	assert.Error(t, StubRail{}.Void(context.Background(), "ch_123"))
}
