package main // Entry point package

import (
	"context" // Context for the reaper goroutine lifetime
	"log"     // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/Aanchal7915/holy-heart-backend/internal/booking"
	"github.com/Aanchal7915/holy-heart-backend/internal/config"
	"github.com/Aanchal7915/holy-heart-backend/internal/database"
	"github.com/Aanchal7915/holy-heart-backend/internal/handler"
	"github.com/Aanchal7915/holy-heart-backend/internal/middleware"
	"github.com/Aanchal7915/holy-heart-backend/internal/queue"
	"github.com/Aanchal7915/holy-heart-backend/internal/repository"
	"github.com/Aanchal7915/holy-heart-backend/internal/router"
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the public-endpoint response
	// cache. A nil client disables both without failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	// Repositories.
	serviceRepo := repository.NewServiceRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	apptRepo := repository.NewAppointmentRepo(db)
	counterRepo := repository.NewCounterRepo(db)

	// Booking engine and reservation lifecycle.
	engine := booking.NewEngine(
		booking.NewCatalog(scheduleRepo),
		booking.NewOrderingPolicy(counterRepo),
		apptRepo,
		serviceRepo,
	)
	engine.SearchDays = cfg.SearchDays
	engine.Duration = cfg.SlotDuration
	engine.Stride = cfg.SlotStride
	engine.HoldTTL = cfg.HoldTTL

	lifecycle := booking.NewLifecycleManager(apptRepo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go lifecycle.RunReaper(ctx, cfg.ReaperInterval)

	// Background consumer writing appointment.booked events to the
	// structured log file. Runs its own reconnect loop.
	go func() {
		if err := queue.StartAppointmentConsumer(); err != nil {
			log.Printf("appointment consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	h := router.Handlers{
		Booking:  handler.NewBookingHandler(engine, lifecycle, apptRepo, serviceRepo),
		Admin:    handler.NewAdminAppointmentHandler(apptRepo, lifecycle),
		Service:  handler.NewServiceHandler(serviceRepo),
		Schedule: handler.NewScheduleHandler(scheduleRepo, apptRepo, cfg.SearchDays),
	}
	// Response caching wraps the public browse endpoints only; its
	// keys ignore the caller's identity.
	router.RegisterRoutes(e, h, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterProtected(e, h, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
