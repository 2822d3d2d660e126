package fees

import (
	"kobopay/internal/config"

	"github.com/shopspring/decimal"
)

// LoadPolicies builds the NGN policy table from the environment. Defaults
// mirror the production schedule: deposits 2% clamped to [50, 500],
// withdrawals 5% clamped to [100, 1000], transfers 0.5% clamped to [10, 100].
func LoadPolicies() map[Operation]map[string]Policy {
	return map[Operation]map[string]Policy{
		OpDeposit: {
			"NGN": {
				Percent: decimal.NewFromFloat(config.GetFloatEnv("PERCENT_DEPOSIT_FEE", 2)),
				MinFee:  decimal.NewFromFloat(config.GetFloatEnv("NGN_MIN_DEPOSIT_FEE", 50)),
				MaxFee:  decimal.NewFromFloat(config.GetFloatEnv("NGN_MAX_DEPOSIT_FEE", 500)),
			},
		},
		OpWithdraw: {
			"NGN": {
				Percent: decimal.NewFromFloat(config.GetFloatEnv("PERCENT_WITHDRAW_FEE", 5)),
				MinFee:  decimal.NewFromFloat(config.GetFloatEnv("NGN_MIN_WITHDRAW_FEE", 100)),
				MaxFee:  decimal.NewFromFloat(config.GetFloatEnv("NGN_MAX_WITHDRAW_FEE", 1000)),
			},
		},
		OpTransfer: {
			"NGN": {
				Percent: decimal.NewFromFloat(config.GetFloatEnv("PERCENT_TRANSFER_FEE", 0.5)),
				MinFee:  decimal.NewFromFloat(config.GetFloatEnv("NGN_MIN_TRANSFER_FEE", 10)),
				MaxFee:  decimal.NewFromFloat(config.GetFloatEnv("NGN_MAX_TRANSFER_FEE", 100)),
			},
		},
	}
}
