package handlers

import (
	"kobopay/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

func HealthCheck(c *fiber.Ctx) error {
	database := "connected"
	if repositories.DB != nil {
		if sqlDB, err := repositories.DB.DB(); err != nil || sqlDB.Ping() != nil {
			database = "unreachable"
		}
	}

	redis := "disabled"
	if repositories.CacheService != nil {
		redis = "connected"
		if err := repositories.CacheService.HealthCheck(c.Context()); err != nil {
			redis = "unreachable"
		}
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"services": fiber.Map{
			"database": database,
			"redis":    redis,
		},
	})
}
