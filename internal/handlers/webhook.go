package handlers

import (
	"kobopay/internal/providers"
	"kobopay/internal/services/webhook"
	"kobopay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	webhookService webhook.Service
}

func NewWebhookHandler(webhookService webhook.Service) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// Receive accepts a provider webhook and runs it through reconciliation.
// Applied and skipped deliveries both get a 200 so the provider stops
// retrying; only rejections are surfaced as errors.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	headers := make(map[string]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = string(value)
	})

	body := make([]byte, len(c.Body()))
	copy(body, c.Body())

	outcome := h.webhookService.Process(c.Context(), c.Params("provider"), providers.WebhookDelivery{
		Body:    body,
		Headers: headers,
	})

	if outcome.Status == webhook.OutcomeRejected {
		return utils.BadRequest(c, outcome.Note)
	}
	return utils.Success(c, fiber.Map{"status": string(outcome.Status), "message": outcome.Note})
}
