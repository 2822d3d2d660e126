// Package routes wires the repositories, services, and handlers together
// and registers the HTTP routes.
package routes

import (
	"log"
	"strings"

	"kobopay/internal/config"
	"kobopay/internal/events"
	"kobopay/internal/events/kafka"
	"kobopay/internal/handlers"
	"kobopay/internal/providers"
	"kobopay/internal/repositories"
	"kobopay/internal/services/fees"
	"kobopay/internal/services/ledger"
	"kobopay/internal/services/wallet"
	"kobopay/internal/services/webhook"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRoutes builds the full dependency graph and registers all routes.
// Unknown provider selections and malformed fee policies fail startup
// rather than surfacing at request time.
func SetupRoutes(app *fiber.App, db *gorm.DB, logger *logrus.Logger) {
	walletRepo := repositories.NewWalletRepository(db)
	userRepo := repositories.NewUserRepository(db)

	calculator, err := fees.NewCalculator(fees.LoadPolicies())
	if err != nil {
		log.Fatalf("Invalid fee policy configuration: %v", err)
	}

	paystack := providers.NewPaystack(providers.PaystackConfig{
		BaseURL:    config.GetEnv("PAYSTACK_BASE_URL", ""),
		SecretKey:  config.GetEnv("PAYSTACK_SECRET_KEY", ""),
		Recipients: repositories.NewRecipientCodeRepository(db),
		Logger:     logger,
	})
	flutterwave := providers.NewFlutterwave(providers.FlutterwaveConfig{
		BaseURL:    config.GetEnv("FLUTTERWAVE_BASE_URL", ""),
		SecretKey:  config.GetEnv("FLUTTERWAVE_SECRET_KEY", ""),
		SecretHash: config.GetEnv("FLUTTERWAVE_SECRET_HASH", ""),
		Logger:     logger,
	})
	stripeProvider := providers.NewStripe(providers.StripeConfig{
		SecretKey:     config.GetEnv("STRIPE_SECRET_KEY", ""),
		WebhookSecret: config.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
	})

	registry, err := providers.NewRegistry(
		config.GetEnv("DEPOSIT_PROVIDER", "paystack"),
		config.GetEnv("WITHDRAW_PROVIDER", "paystack"),
		paystack, flutterwave, stripeProvider,
	)
	if err != nil {
		log.Fatalf("Invalid provider configuration: %v", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if brokers := config.GetEnv("KAFKA_BROKERS", ""); brokers != "" {
		publisher = kafka.NewPublisher(
			strings.Split(brokers, ","),
			config.GetEnv("KAFKA_TOPIC", "wallet.transactions"),
		)
	}

	ledgerService := ledger.NewService(walletRepo, calculator, repositories.CacheService, publisher)
	walletService := wallet.NewService(walletRepo, registry, calculator, repositories.CacheService, logger)
	webhookService := webhook.NewService(walletRepo, userRepo, registry, calculator, repositories.CacheService, publisher, logger)

	userHandler := handlers.NewUserHandler(userRepo, walletService)
	walletHandler := handlers.NewWalletHandler(walletService, userRepo)
	transferHandler := handlers.NewTransferHandler(ledgerService, walletRepo)
	webhookHandler := handlers.NewWebhookHandler(webhookService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	api.Post("/users", userHandler.RegisterUser)
	api.Get("/users/:id", userHandler.GetUser)

	api.Post("/wallets", walletHandler.CreateWallet)
	api.Get("/wallets/:uuid", walletHandler.GetWallet)
	api.Post("/wallets/:uuid/deposit", walletHandler.InitiateDeposit)
	api.Post("/wallets/:uuid/withdraw", walletHandler.InitiateWithdraw)
	api.Get("/wallets/:uuid/history", walletHandler.GetHistory)
	api.Get("/wallets/:uuid/transactions", walletHandler.GetTransactions)

	api.Post("/transfers", transferHandler.Transfer)

	api.Post("/webhooks/:provider", webhookHandler.Receive)
}
