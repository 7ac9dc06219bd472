package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "hpp_checkout/docs"
	"hpp_checkout/internal/adapter/http/routes"
	"hpp_checkout/internal/infrastructure/config"
	"hpp_checkout/internal/infrastructure/observability"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

// @title           HPP Checkout API
// @version         1.0
// @description     Hosted payment page checkout: session initiation and gateway response reconciliation.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("Service exited gracefully")
	_ = logger.Sync()
}

func run(cfg config.Config, logger *zap.Logger) error {
	shutdownTracing, err := observability.InitTracing(routes.ServiceName, cfg.JaegerEndpoint)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return routes.Run(ctx, cfg, logger)
}
