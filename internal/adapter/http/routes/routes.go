package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	_ "hpp_checkout/docs" // generated by swag init
	"hpp_checkout/internal/adapter/http/handlers"
	"hpp_checkout/internal/adapter/http/middleware"
	"hpp_checkout/internal/adapter/persistence/repository"
	"hpp_checkout/internal/infrastructure/cache"
	"hpp_checkout/internal/infrastructure/config"
	"hpp_checkout/internal/infrastructure/database"
	"hpp_checkout/internal/infrastructure/dataverse"
	"hpp_checkout/internal/infrastructure/payments"
	"hpp_checkout/internal/usecase"
	"hpp_checkout/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	ServiceName     = "hpp-checkout"
	shutdownTimeout = 10 * time.Second
)

// Run wires the service from cfg and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	handler, closeDeps, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDeps()

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           NewRouter(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server started", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to startup the application: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("HTTP server stopped gracefully")
	return nil
}

// NewRouter builds the gin engine with middlewares and every route.
func NewRouter(handler *handlers.HostedPaymentHandler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	setMiddlewares(router, logger)

	router.GET("/metrics", middleware.PrometheusHandler())
	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addHostedPaymentRoutes(v1, handler)
	return router
}

func setMiddlewares(router *gin.Engine, logger *zap.Logger) {
	// otelgin goes first so the logger sees the request span.
	router.Use(otelgin.Middleware(ServiceName))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())
}

func buildHandler(ctx context.Context, cfg config.Config, logger *zap.Logger) (*handlers.HostedPaymentHandler, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	products, records, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Redis.Addr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, logger)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := rdb.Close(); err != nil {
				logger.Error("Failed to close Redis cache", zap.Error(err))
			}
		})
		products = repository.NewCachedProductRepository(products, rdb, cfg.Redis.TTL, logger)
	}

	gateway, err := payments.NewRealexGateway(cfg.Gateway, logger)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	settings := usecase.CheckoutSettings{
		Currency:        cfg.Checkout.Currency,
		ReturnURL:       cfg.Checkout.ReturnURL,
		BillingAddress:  cfg.Checkout.BillingAddress,
		Customer:        cfg.Checkout.Customer,
		ResponseEncoded: cfg.ResponseEncoded,
		CallTimeout:     cfg.CallTimeout,
	}

	initiator := usecase.NewSessionInitiatorUseCase(products, records, gateway, settings, logger)
	reconciler := usecase.NewResponseReconcilerUseCase(records, gateway, settings, logger)
	query := usecase.NewPaymentRecordQueryUseCase(records, settings)

	return handlers.NewHostedPaymentHandler(initiator, reconciler, query, logger), closeAll, nil
}

func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (interfaces.IProductRepository, interfaces.IPaymentRecordRepository, error) {
	switch cfg.RecordStore {
	case config.RecordStoreDataverse:
		client, err := dataverse.NewClient(cfg.Dataverse, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("record store selected", zap.String("store", cfg.RecordStore))
		return repository.NewProductDataverseRepository(client), repository.NewPaymentRecordDataverseRepository(client), nil
	default:
		ddb, err := database.ConnectDynamoDB(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create dynamodb config: %w", err)
		}
		logger.Info("record store selected", zap.String("store", config.RecordStoreDynamoDB))
		return repository.NewProductDynamoRepository(ddb, cfg.DynamoDB.ProductsTable),
			repository.NewPaymentRecordDynamoRepository(ddb, cfg.DynamoDB.PaymentRecordsTable), nil
	}
}
