package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-backend/internal/config"
	"github.com/iliyamo/booking-backend/internal/database"
	"github.com/iliyamo/booking-backend/internal/engine"
	"github.com/iliyamo/booking-backend/internal/handler"
	"github.com/iliyamo/booking-backend/internal/payment"
	"github.com/iliyamo/booking-backend/internal/queue"
	"github.com/iliyamo/booking-backend/internal/repository"
	"github.com/iliyamo/booking-backend/internal/router"
)

// janitorInterval controls how often overdue reservations are swept to
// EXPIRED. Sweeps are cheap (one guarded UPDATE), so the cadence stays
// well under the lock TTL.
const janitorInterval = 30 * time.Second

func main() {
	// .env is a local development convenience; in deployed environments the
	// variables come from the orchestrator and the file does not exist.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("mysql connect failed: %v", err)
	}
	defer db.Close()

	// The lock store is load-bearing: without it no reserve can be granted,
	// so an unreachable Redis is fatal rather than degraded.
	rdb := config.NewRedisClient(cfg)
	if rdb == nil {
		log.Fatal("redis connect failed: lock store is required")
	}
	defer rdb.Close()

	tenants := repository.NewTenantRepo(db)
	users := repository.NewUserRepo(db)
	seats := repository.NewSeatRepo(db)
	reservations := repository.NewReservationRepo(db)
	bookings := repository.NewBookingRepo(db)
	orders := repository.NewOrderRepo(db)
	locks := repository.NewSeatLockRepo(rdb, time.Duration(cfg.LockTTLSeconds)*time.Second)

	verifier := payment.New(cfg.PaymentMode, cfg.PaymentSecret, cfg.PaymentGateway)
	eng := engine.New(locks, seats, reservations, bookings, orders, verifier, cfg.Currency, cfg.GatewayKey)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e, handler.NewHealthHandler(db, rdb))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users))
	router.RegisterBooking(e, handler.NewBookingHandler(eng, cfg.RabbitURL),
		tenants, users, cfg, config.LoadRateLimitConfig(), rdb)

	// Background workers: the booking.confirmed consumer runs its own
	// reconnect loop; the janitor stops when the root context is cancelled.
	rootCtx, stopWorkers := context.WithCancel(context.Background())
	go func() {
		if err := queue.StartBookingConsumer(cfg.RabbitURL); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()
	go eng.RunJanitor(rootCtx, janitorInterval)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting, let in-flight requests drain, then
	// stop the workers and close the stores via the deferred closes above.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Print("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	stopWorkers()
}
