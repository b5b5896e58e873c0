package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lamnm/aims-checkout/internal/adapter/gateway"
	"github.com/lamnm/aims-checkout/internal/adapter/handler"
	"github.com/lamnm/aims-checkout/internal/adapter/storage"
	"github.com/lamnm/aims-checkout/internal/config"
	"github.com/lamnm/aims-checkout/internal/core/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", "aims-checkout").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping mysql")
	}
	log.Info().Msg("connected to mysql")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("connected to redis")

	cartAdapter := storage.NewRedisCartAdapter(rdb)
	orderRepo := storage.NewMySQLAdapter(db)

	if err := orderRepo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database migrations completed")

	vnpay := gateway.NewVNPay(cfg.VNPTmnCode, cfg.VNPHashSecret, cfg.VNPPayURL, cfg.VNPReturnURL)

	orderService := service.NewOrderService(cartAdapter, orderRepo)
	paymentService := service.NewPaymentService(vnpay, orderRepo, cartAdapter)

	httpHandler := handler.NewHTTPHandler(orderService, paymentService)
	httpServer := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: handler.NewRouter(httpHandler),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPPort).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info().Msg("HTTP server stopped")

	rdb.Close()
	db.Close()
	log.Info().Msg("shutdown complete")
}
