package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(LoadPolicies())
	require.NoError(t, err)
	return calc
}

func TestCalculator_Fee(t *testing.T) {
	calc := newTestCalculator(t)

	tests := []struct {
		name   string
		amount string
		op     Operation
		want   string
	}{
		{name: "deposit percent within band", amount: "10000", op: OpDeposit, want: "200"},
		{name: "deposit clamped to min", amount: "100", op: OpDeposit, want: "50"},
		{name: "deposit clamped to max", amount: "1000000", op: OpDeposit, want: "500"},
		{name: "withdraw percent within band", amount: "10000", op: OpWithdraw, want: "500"},
		{name: "withdraw clamped to min", amount: "500", op: OpWithdraw, want: "100"},
		{name: "withdraw clamped to max", amount: "1000000", op: OpWithdraw, want: "1000"},
		{name: "transfer percent within band", amount: "10000", op: OpTransfer, want: "50"},
		{name: "transfer clamped to min", amount: "200", op: OpTransfer, want: "10"},
		{name: "transfer clamped to max", amount: "1000000", op: OpTransfer, want: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			fee := calc.Fee(amount, "NGN", tt.op)
			assert.True(t, fee.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", fee, tt.want)
		})
	}
}

func TestCalculator_FeeNeverNegative(t *testing.T) {
	calc := newTestCalculator(t)

	for _, op := range []Operation{OpDeposit, OpWithdraw, OpTransfer} {
		fee := calc.Fee(decimal.NewFromInt(1), "NGN", op)
		assert.False(t, fee.IsNegative(), "fee for %s must not be negative", op)
	}
}

func TestCalculator_FeePanicsOnUnknownPair(t *testing.T) {
	calc := newTestCalculator(t)

	assert.Panics(t, func() {
		calc.Fee(decimal.NewFromInt(100), "USD", OpDeposit)
	})
}

func TestCalculator_Supports(t *testing.T) {
	calc := newTestCalculator(t)

	assert.True(t, calc.Supports("NGN", OpDeposit))
	assert.True(t, calc.Supports("NGN", OpWithdraw))
	assert.True(t, calc.Supports("NGN", OpTransfer))
	assert.False(t, calc.Supports("USD", OpDeposit))
}

func TestNewCalculator_Validation(t *testing.T) {
	tests := []struct {
		name     string
		policies map[Operation]map[string]Policy
	}{
		{
			name:     "empty table",
			policies: map[Operation]map[string]Policy{},
		},
		{
			name: "operation with no currencies",
			policies: map[Operation]map[string]Policy{
				OpDeposit: {},
			},
		},
		{
			name: "negative percent",
			policies: map[Operation]map[string]Policy{
				OpDeposit: {"NGN": {
					Percent: decimal.NewFromInt(-1),
					MinFee:  decimal.NewFromInt(10),
					MaxFee:  decimal.NewFromInt(100),
				}},
			},
		},
		{
			name: "negative min fee",
			policies: map[Operation]map[string]Policy{
				OpDeposit: {"NGN": {
					Percent: decimal.NewFromInt(2),
					MinFee:  decimal.NewFromInt(-10),
					MaxFee:  decimal.NewFromInt(100),
				}},
			},
		},
		{
			name: "max below min",
			policies: map[Operation]map[string]Policy{
				OpDeposit: {"NGN": {
					Percent: decimal.NewFromInt(2),
					MinFee:  decimal.NewFromInt(100),
					MaxFee:  decimal.NewFromInt(10),
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCalculator(tt.policies)
			assert.Error(t, err)
		})
	}
}
