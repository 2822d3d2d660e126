package utils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPagination(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Pagination
	}{
		{"defaults", "", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"explicit window", "?page=3&limit=10", Pagination{Page: 3, Limit: 10, Offset: 20}},
		{"zero page falls back", "?page=0", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"negative limit falls back", "?limit=-5", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"malformed values fall back", "?page=abc&limit=xyz", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"limit capped", "?limit=500", Pagination{Page: 1, Limit: 100, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = GetPagination(c, 1, 20)
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResponseHelpers(t *testing.T) {
	tests := []struct {
		name       string
		handler    fiber.Handler
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			"success",
			func(c *fiber.Ctx) error { return Success(c, fiber.Map{"balance": "100"}) },
			fiber.StatusOK,
			map[string]interface{}{"balance": "100"},
		},
		{
			"bad request",
			func(c *fiber.Ctx) error { return BadRequest(c, "amount is required") },
			fiber.StatusBadRequest,
			map[string]interface{}{"error": "amount is required"},
		},
		{
			"not found",
			func(c *fiber.Ctx) error { return NotFound(c, "wallet not found") },
			fiber.StatusNotFound,
			map[string]interface{}{"error": "wallet not found"},
		},
		{
			"internal error",
			func(c *fiber.Ctx) error { return InternalError(c, "something went wrong") },
			fiber.StatusInternalServerError,
			map[string]interface{}{"error": "something went wrong"},
		},
		{
			"custom status",
			func(c *fiber.Ctx) error {
				return Respond(c, fiber.StatusBadGateway, fiber.Map{"error": "provider unavailable"})
			},
			fiber.StatusBadGateway,
			map[string]interface{}{"error": "provider unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", tt.handler)

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}
