package handlers

import (
	stderrors "errors"

	"kobopay/internal/errors"
	"kobopay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// renderError maps domain errors onto HTTP responses. Anything outside the
// domain taxonomy is a 500 with a generic message so internals never leak.
func renderError(c *fiber.Ctx, err error) error {
	switch {
	case stderrors.Is(err, errors.ErrWalletNotFound),
		stderrors.Is(err, errors.ErrUserNotFound),
		stderrors.Is(err, errors.ErrTransactionNotFound),
		stderrors.Is(err, errors.ErrBankDetailNotFound):
		return utils.NotFound(c, err.Error())
	case stderrors.Is(err, errors.ErrInvalidAmount),
		stderrors.Is(err, errors.ErrInsufficientFunds),
		stderrors.Is(err, errors.ErrTransactionLimitExceeded),
		stderrors.Is(err, errors.ErrDuplicateTransaction):
		return utils.BadRequest(c, err.Error())
	case stderrors.Is(err, errors.ErrProviderInitiationFailed),
		stderrors.Is(err, errors.ErrProviderError):
		return utils.Respond(c, fiber.StatusBadGateway, fiber.Map{"error": err.Error()})
	default:
		return utils.InternalError(c, "something went wrong")
	}
}
