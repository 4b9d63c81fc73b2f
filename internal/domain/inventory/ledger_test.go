package inventory

import (
	"errors"
	"testing"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStockedItem(t *testing.T, qty string) *InventoryItem {
	t.Helper()
	item, err := NewInventoryItem(uuid.New(), supplyDetails(), dec(qty))
	require.NoError(t, err)
	_, err = item.OpeningMovement(dec(qty), shared.Today())
	require.NoError(t, err)
	return item
}

func requireLedgerError(t *testing.T, err error) *LedgerError {
	t.Helper()
	var le *LedgerError
	require.True(t, errors.As(err, &le), "expected LedgerError, got %v", err)
	return le
}

func TestValidateMovement(t *testing.T) {
	item := &InventoryItem{Quantity: dec("150"), Unit: "kg"}

	tests := []struct {
		name  string
		req   MovementRequest
		kinds []ViolationKind
	}{
		{"valid in", MovementRequest{Type: MovementIn, Quantity: dec("5"), Reason: "purchase"}, nil},
		{"valid out to zero", MovementRequest{Type: MovementOut, Quantity: dec("150"), Reason: "use"}, nil},
		{"zero quantity", MovementRequest{Type: MovementIn, Quantity: decimal.Zero, Reason: "x"}, []ViolationKind{ViolationInvalidQuantity}},
		{"negative quantity", MovementRequest{Type: MovementOut, Quantity: dec("-3"), Reason: "x"}, []ViolationKind{ViolationInvalidQuantity}},
		{"quantity below stored scale", MovementRequest{Type: MovementIn, Quantity: dec("0.00004"), Reason: "x"}, []ViolationKind{ViolationInvalidQuantity}},
		{"quantity with five decimals", MovementRequest{Type: MovementOut, Quantity: dec("1.00005"), Reason: "x"}, []ViolationKind{ViolationInvalidQuantity}},
		{"quantity with four decimals", MovementRequest{Type: MovementOut, Quantity: dec("149.9999"), Reason: "x"}, nil},
		{"out above stock", MovementRequest{Type: MovementOut, Quantity: dec("200"), Reason: "x"}, []ViolationKind{ViolationInsufficientStock}},
		{"blank reason", MovementRequest{Type: MovementIn, Quantity: dec("1"), Reason: "   "}, []ViolationKind{ViolationInvalidReason}},
		{"unknown type", MovementRequest{Type: "transfer", Quantity: dec("1"), Reason: "x"}, []ViolationKind{ViolationInvalidMovementType}},
		{
			"every violation reported together",
			MovementRequest{Type: "bogus", Quantity: dec("0"), Reason: ""},
			[]ViolationKind{ViolationInvalidMovementType, ViolationInvalidQuantity, ViolationInvalidReason},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMovement(item, tt.req)
			if tt.kinds == nil {
				assert.NoError(t, err)
				return
			}
			le := requireLedgerError(t, err)
			got := make([]ViolationKind, 0, len(le.Violations))
			for _, v := range le.Violations {
				got = append(got, v.Kind)
			}
			assert.Equal(t, tt.kinds, got)
		})
	}
}

func TestValidateMovement_InsufficientStockMessage(t *testing.T) {
	item := &InventoryItem{Quantity: dec("150.0000"), Unit: "kg"}
	err := ValidateMovement(item, MovementRequest{Type: MovementOut, Quantity: dec("200"), Reason: "sale"})

	le := requireLedgerError(t, err)
	assert.Equal(t, "Cannot remove more than available stock (150 kg).", le.Violations[0].Message)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
}

// A sub-scale out on a tiny balance would be rounded differently on the item
// and on the movement row, so it must be refused before any write.
func TestValidateMovement_SubScaleQuantityOnSmallBalance(t *testing.T) {
	item := &InventoryItem{Quantity: dec("0.0002"), Unit: "kg"}
	err := ValidateMovement(item, MovementRequest{Type: MovementOut, Quantity: dec("0.00005"), Reason: "use"})

	le := requireLedgerError(t, err)
	assert.True(t, le.Has(ViolationInvalidQuantity))
	assert.False(t, le.Has(ViolationInsufficientStock))
	assert.Equal(t, "Quantity can have at most 4 decimal places.", le.Violations[0].Message)
}

func TestApplyMovement_Scenario(t *testing.T) {
	item := newStockedItem(t, "100")
	actor := uuid.New()

	m, err := item.ApplyMovement(MovementRequest{Type: MovementIn, Quantity: dec("50"), Reason: "purchase"}, actor)
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(dec("150")))
	assert.True(t, m.BalanceBefore.Equal(dec("100")))
	assert.True(t, m.BalanceAfter.Equal(dec("150")))

	_, err = item.ApplyMovement(MovementRequest{Type: MovementOut, Quantity: dec("200"), Reason: "sale"}, actor)
	le := requireLedgerError(t, err)
	assert.True(t, le.Has(ViolationInsufficientStock))
	assert.True(t, item.Quantity.Equal(dec("150")), "rejected movement must not change quantity")

	_, err = item.ApplyMovement(MovementRequest{Type: MovementOut, Quantity: dec("140"), Reason: "field use"}, actor)
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(dec("10")))
	assert.True(t, item.IsLowStock())
}

func TestApplyMovement_QuantityEqualsOpeningPlusNet(t *testing.T) {
	item := newStockedItem(t, "12.5")
	actor := uuid.New()

	steps := []struct {
		typ MovementType
		qty string
	}{
		{MovementIn, "7.25"}, {MovementOut, "3"}, {MovementOut, "16.75"}, {MovementIn, "0.5"}, {MovementOut, "99"},
	}

	net := dec("12.5")
	for _, s := range steps {
		_, err := item.ApplyMovement(MovementRequest{Type: s.typ, Quantity: dec(s.qty), Reason: "step"}, actor)
		if err != nil {
			continue
		}
		net = s.typ.Apply(net, dec(s.qty))
	}

	assert.True(t, item.Quantity.Equal(net), "quantity %s != net %s", item.Quantity, net)
	assert.False(t, item.Quantity.IsNegative())
}

func TestMovementType(t *testing.T) {
	assert.True(t, MovementIn.IsValid())
	assert.True(t, MovementOut.IsValid())
	assert.False(t, MovementType("IN").IsValid())

	assert.True(t, MovementOut.Signed(dec("3")).Equal(dec("-3")))
	assert.True(t, MovementIn.Signed(dec("3")).Equal(dec("3")))
}

func TestNewStockMovement_IDsAreTimeOrdered(t *testing.T) {
	req := MovementRequest{Type: MovementIn, Quantity: dec("1"), Reason: "r"}
	a := NewStockMovement(uuid.New(), req, decimal.Zero, dec("1"), uuid.New())
	b := NewStockMovement(uuid.New(), req, decimal.Zero, dec("1"), uuid.New())

	assert.Less(t, a.ID.String(), b.ID.String())
	assert.Equal(t, shared.Today(), a.MovementDate)
}

func TestMovementSummary_Net(t *testing.T) {
	s := MovementSummary{TotalIn: dec("30"), TotalOut: dec("10"), Count: 2}
	assert.True(t, s.Net().Equal(dec("20")))
}
