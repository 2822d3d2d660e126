package handlers

import (
	"kobopay/internal/repositories"
	"kobopay/internal/services/ledger"
	"kobopay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type TransferHandler struct {
	ledgerService *ledger.Service
	repo          repositories.WalletRepository
}

func NewTransferHandler(ledgerService *ledger.Service, repo repositories.WalletRepository) *TransferHandler {
	return &TransferHandler{
		ledgerService: ledgerService,
		repo:          repo,
	}
}

// Transfer moves funds between two wallets synchronously. The acting user
// is the owner of the source wallet, resolved explicitly from the request.
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	var input struct {
		SourceWallet      string          `json:"source_wallet"`
		DestinationWallet string          `json:"destination_wallet"`
		Amount            decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.SourceWallet == "" || input.DestinationWallet == "" {
		return utils.BadRequest(c, "Source and destination wallets are required")
	}
	if input.Amount.Sign() <= 0 {
		return utils.BadRequest(c, "Amount must be greater than 0")
	}

	source, err := h.repo.GetByUUID(input.SourceWallet)
	if err != nil {
		return renderError(c, err)
	}

	result, err := h.ledgerService.Transfer(c.Context(), ledger.TransferRequest{
		UserID:     source.UserID,
		SourceUUID: input.SourceWallet,
		DestUUID:   input.DestinationWallet,
		Amount:     input.Amount,
	})
	if err != nil {
		return renderError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"reference":           result.SourceTransaction.Reference,
		"fee":                 result.Fee,
		"source_balance":      result.SourceBalance,
		"destination_balance": result.DestBalance,
	})
}
