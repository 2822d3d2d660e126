package handlers

import (
	"kobopay/internal/models"
	"kobopay/internal/repositories"
	"kobopay/internal/services/wallet"
	"kobopay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	walletService wallet.Service
	users         repositories.UserRepository
}

func NewWalletHandler(walletService wallet.Service, users repositories.UserRepository) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		users:         users,
	}
}

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	var input struct {
		UserID   uint   `json:"user_id"`
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.UserID == 0 {
		return utils.BadRequest(c, "User id is required")
	}
	if input.Currency == "" {
		input.Currency = "NGN"
	}
	if _, err := h.users.GetByID(input.UserID); err != nil {
		return renderError(c, err)
	}

	created, err := h.walletService.CreateWallet(c.Context(), input.UserID, input.Currency)
	if err != nil {
		return renderError(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, fiber.Map{"wallet": created})
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	found, err := h.walletService.GetWallet(c.Context(), c.Params("uuid"))
	if err != nil {
		return renderError(c, err)
	}
	return utils.Success(c, fiber.Map{"wallet": found})
}

func (h *WalletHandler) InitiateDeposit(c *fiber.Ctx) error {
	owner, target, amount, err := h.resolveOperation(c)
	if err != nil {
		return renderError(c, err)
	}
	if amount == nil {
		return utils.BadRequest(c, "Amount must be greater than 0")
	}

	initiation, err := h.walletService.InitiateDeposit(c.Context(), owner, target, *amount)
	if err != nil {
		return renderError(c, err)
	}
	return utils.Success(c, fiber.Map{"deposit": initiation})
}

func (h *WalletHandler) InitiateWithdraw(c *fiber.Ctx) error {
	owner, target, amount, err := h.resolveOperation(c)
	if err != nil {
		return renderError(c, err)
	}
	if amount == nil {
		return utils.BadRequest(c, "Amount must be greater than 0")
	}

	initiation, err := h.walletService.InitiateWithdraw(c.Context(), owner, target, *amount)
	if err != nil {
		return renderError(c, err)
	}
	return utils.Success(c, fiber.Map{"withdrawal": initiation})
}

func (h *WalletHandler) GetHistory(c *fiber.Ctx) error {
	p := utils.GetPagination(c, 1, 20)
	history, err := h.walletService.GetHistory(c.Context(), c.Params("uuid"), p.Limit, p.Offset)
	if err != nil {
		return renderError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"history": history,
		"page":    p.Page,
		"limit":   p.Limit,
	})
}

func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	p := utils.GetPagination(c, 1, 20)
	transactions, err := h.walletService.GetTransactions(c.Context(), c.Params("uuid"), p.Limit, p.Offset)
	if err != nil {
		return renderError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"transactions": transactions,
		"page":         p.Page,
		"limit":        p.Limit,
	})
}

// resolveOperation loads the target wallet and its owner for an initiation
// request. A nil amount means the body did not carry a positive amount.
func (h *WalletHandler) resolveOperation(c *fiber.Ctx) (*models.User, *models.Wallet, *decimal.Decimal, error) {
	var input struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return nil, nil, nil, nil
	}

	target, err := h.walletService.GetWallet(c.Context(), c.Params("uuid"))
	if err != nil {
		return nil, nil, nil, err
	}
	owner, err := h.users.GetByID(target.UserID)
	if err != nil {
		return nil, nil, nil, err
	}
	if input.Amount.Sign() <= 0 {
		return owner, target, nil, nil
	}
	return owner, target, &input.Amount, nil
}
