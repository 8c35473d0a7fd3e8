package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rukapay/routing-engine/internal/cache"
	"github.com/rukapay/routing-engine/internal/config"
	"github.com/rukapay/routing-engine/internal/database"
	"github.com/rukapay/routing-engine/internal/handler"
	"github.com/rukapay/routing-engine/internal/middleware"
	"github.com/rukapay/routing-engine/internal/repository"
	"github.com/rukapay/routing-engine/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	// Monetary fields serialize as JSON numbers, matching the admin clients.
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		if err := database.SeedData(context.Background(), pool); err != nil {
			log.Fatal().Err(err).Msg("failed to seed data")
		}
	}

	var routeCache service.RouteCache = cache.NewNoop()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		routeCache = cache.NewRedisRouteCache(rdb, cfg.RouteCacheTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("route cache enabled")
	}

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	healthHandler := handler.NewHealthHandler(pool)
	router.GET("/health", healthHandler.Health)

	handler.SetupSwagger(router)
	setupAPIRoutes(router, pool, routeCache, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func setupAPIRoutes(router *gin.Engine, pool *pgxpool.Pool, routeCache service.RouteCache, cfg *config.Config) {
	partnerRepo := repository.NewPartnerRepository(pool)
	mappingRepo := repository.NewMappingRepository(pool)
	tariffRepo := repository.NewTariffRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	registry := service.NewRegistryService(partnerRepo)
	routing := service.NewRoutingService(mappingRepo, registry, routeCache, cfg.EligibilityTimeout)
	tariffs := service.NewTariffService(tariffRepo)
	settlements := service.NewSettlementService(routing, tariffs)

	partnerHandler := handler.NewPartnerHandler(registry)
	mappingHandler := handler.NewMappingHandler(routing)
	tariffHandler := handler.NewTariffHandler(tariffs)
	settlementHandler := handler.NewSettlementHandler(settlements)
	auditHandler := handler.NewAuditHandler(auditRepo)

	api := router.Group("/api/v1")
	{
		api.GET("/partners", partnerHandler.List)
		api.GET("/partners/eligible", partnerHandler.ListEligible)
		api.GET("/partners/:id", partnerHandler.Get)
		api.GET("/mappings", mappingHandler.List)
		api.POST("/routes/resolve", mappingHandler.Resolve)
		api.GET("/tariffs", tariffHandler.List)
		api.GET("/tariffs/:id", tariffHandler.Get)
		api.POST("/settlements/compute", settlementHandler.Compute)
		api.GET("/audit-events", auditHandler.List)

		mutations := api.Group("")
		mutations.Use(middleware.RequireActor())
		{
			mutations.POST("/mappings", mappingHandler.Create)
			mutations.POST("/mappings/switch", mappingHandler.Switch)
			mutations.POST("/tariffs", tariffHandler.Create)
			mutations.PUT("/tariffs/:id", tariffHandler.Update)
			mutations.DELETE("/tariffs/:id", tariffHandler.Delete)
		}
	}
}
