// Package fees derives operation fees from a per currency and operation
// policy table. Fee derivation is pure and deterministic; a policy table
// that cannot serve the configured currencies is rejected at startup.
package fees

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Operation identifies the fee schedule applied to an amount.
type Operation string

const (
	OpDeposit  Operation = "deposit"
	OpWithdraw Operation = "withdraw"
	OpTransfer Operation = "transfer"
)

// Policy is the fee rule for one currency and operation. The effective fee
// is percent of the amount, clamped to [MinFee, MaxFee].
type Policy struct {
	Percent decimal.Decimal
	MinFee  decimal.Decimal
	MaxFee  decimal.Decimal
}

// Calculator resolves fees against a validated policy table.
type Calculator struct {
	policies map[Operation]map[string]Policy
}

var hundred = decimal.NewFromInt(100)

// NewCalculator validates the policy table once. Every operation must carry
// a well-formed policy for every supported currency; a gap here is a
// configuration error, not something callers can recover from later.
func NewCalculator(policies map[Operation]map[string]Policy) (*Calculator, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("fee policy table is empty")
	}
	for op, byCurrency := range policies {
		if len(byCurrency) == 0 {
			return nil, fmt.Errorf("fee policy for operation %q has no currencies", op)
		}
		for currency, p := range byCurrency {
			if p.Percent.IsNegative() {
				return nil, fmt.Errorf("fee policy %s/%s: percent must not be negative", op, currency)
			}
			if p.MinFee.IsNegative() {
				return nil, fmt.Errorf("fee policy %s/%s: min fee must not be negative", op, currency)
			}
			if p.MaxFee.LessThan(p.MinFee) {
				return nil, fmt.Errorf("fee policy %s/%s: max fee below min fee", op, currency)
			}
		}
	}
	return &Calculator{policies: policies}, nil
}

// Fee returns the fee for amount under the currency and operation policy.
// The pair must have been validated at construction; an unknown pair is a
// programming error and panics.
func (c *Calculator) Fee(amount decimal.Decimal, currency string, op Operation) decimal.Decimal {
	p, ok := c.policies[op][currency]
	if !ok {
		panic(fmt.Sprintf("fees: no policy configured for %s/%s", op, currency))
	}
	fee := p.Percent.Mul(amount).Div(hundred)
	if fee.LessThan(p.MinFee) {
		return p.MinFee
	}
	if fee.GreaterThan(p.MaxFee) {
		return p.MaxFee
	}
	return fee
}

// Supports reports whether a policy exists for the currency and operation.
// Wiring code uses it to fail fast when a wallet currency has no schedule.
func (c *Calculator) Supports(currency string, op Operation) bool {
	_, ok := c.policies[op][currency]
	return ok
}
