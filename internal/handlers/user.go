package handlers

import (
	"strconv"

	"kobopay/internal/models"
	"kobopay/internal/repositories"
	"kobopay/internal/services/wallet"
	"kobopay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users         repositories.UserRepository
	walletService wallet.Service
}

func NewUserHandler(users repositories.UserRepository, walletService wallet.Service) *UserHandler {
	return &UserHandler{users: users, walletService: walletService}
}

// RegisterUser creates a user together with their default wallet.
func (h *UserHandler) RegisterUser(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.Email == "" {
		return utils.BadRequest(c, "Email is required")
	}
	if input.Currency == "" {
		input.Currency = "NGN"
	}

	user := &models.User{
		Email: input.Email,
		Name:  input.Name,
		Phone: input.Phone,
	}
	if err := h.users.Create(user); err != nil {
		return utils.BadRequest(c, "Could not create user")
	}

	userWallet, err := h.walletService.CreateWallet(c.Context(), user.ID, input.Currency)
	if err != nil {
		return renderError(c, err)
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"user":   user,
		"wallet": userWallet,
	})
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.BadRequest(c, "Invalid user id")
	}
	user, err := h.users.GetByID(uint(id))
	if err != nil {
		return renderError(c, err)
	}
	return utils.Success(c, fiber.Map{"user": user})
}
