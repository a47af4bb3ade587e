package main // Entry point package

import (
	"log"       // Logging library
	"os"        // OS signals
	"os/signal" // Signal notification
	"syscall"   // Signal constants

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/live-event-checkin/internal/checkin"
	"github.com/iliyamo/live-event-checkin/internal/config"
	"github.com/iliyamo/live-event-checkin/internal/database"
	"github.com/iliyamo/live-event-checkin/internal/handler"
	"github.com/iliyamo/live-event-checkin/internal/hub"
	"github.com/iliyamo/live-event-checkin/internal/middleware"
	"github.com/iliyamo/live-event-checkin/internal/queue"
	"github.com/iliyamo/live-event-checkin/internal/repository"
	"github.com/iliyamo/live-event-checkin/internal/router"
	"github.com/iliyamo/live-event-checkin/internal/scheduler"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the cache and rate limiter become
	// pass-throughs and the service keeps running.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	events := repository.NewEventRepo(db)
	staff := repository.NewStaffRepo(db)

	signer := checkin.NewSigner(cfg.TokenTTL, cfg.TokenClockSkew)
	assembler := checkin.NewAssembler(events, signer)
	realtime := hub.New()

	// The two scheduler loops are owned here, not by any framework
	// registry: started after wiring, stopped on shutdown.
	rotation := scheduler.New(events, assembler, realtime, cfg.RotationInterval)
	rotation.Start()
	defer rotation.Stop()

	// Background consumer mirrors recorded check-ins into logs/checkin.log.
	go func() {
		if err := queue.StartCheckinConsumer(); err != nil {
			log.Printf("checkin consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cacheMW := middleware.ResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterDisplay(e, &handler.DisplayHandler{Assembler: assembler},
		&handler.WSHandler{Hub: realtime, JWTSecret: cfg.JWTSecret}, rl)
	router.RegisterAPI(e,
		&handler.EventsHandler{Events: events},
		handler.NewCheckinHandler(events, signer, realtime),
		&handler.AuthHandler{Staff: staff, JWTSecret: cfg.JWTSecret, AccessTTLMin: cfg.AccessTTLMin},
		cfg.JWTSecret, cacheMW, rl)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, rotation=%s)", addr, cfg.Env, cfg.RotationInterval)

	go func() {
		if err := e.Start(addr); err != nil {
			log.Printf("http server stopped: %v", err)
		}
	}()

	// Block until asked to stop so the deferred scheduler shutdown runs.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Printf("shutting down")
	_ = e.Close()
}
