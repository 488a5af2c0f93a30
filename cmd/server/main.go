package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/hostel-reservation/internal/config"
	"github.com/iliyamo/hostel-reservation/internal/database"
	"github.com/iliyamo/hostel-reservation/internal/handler"
	"github.com/iliyamo/hostel-reservation/internal/middleware"
	"github.com/iliyamo/hostel-reservation/internal/model"
	"github.com/iliyamo/hostel-reservation/internal/queue"
	"github.com/iliyamo/hostel-reservation/internal/repository"
	"github.com/iliyamo/hostel-reservation/internal/router"
	"github.com/iliyamo/hostel-reservation/internal/service"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.ApplySchema(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("db: apply schema: %v", err)
		}
	}

	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	queueCfg := config.LoadQueueConfig()

	guests := repository.NewGuestRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)

	bootstrapStaff(guests, cfg.BcryptCost)

	var publisher service.EventPublisher
	if queueCfg.Enabled() {
		publisher = service.NewAMQPPublisher(queueCfg.URL)
		if queueCfg.ConsumerEnabled {
			go queue.StartReservationConsumer(queueCfg.URL, cfg.LogDir)
		}
	} else {
		log.Printf("queue: RABBITMQ_URL not set, reservation events disabled")
	}
	svc := service.NewReservationService(reservations, publisher)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, guests, tokens), cfg.JWTSecret)
	router.RegisterCatalog(e, handler.NewCatalogHandler(rooms, svc), middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterGuest(e, handler.NewReservationHandler(svc), cfg.JWTSecret)
	router.RegisterStaff(e, handler.NewStaffHandler(svc, rooms, func(ctx context.Context) error {
		return middleware.InvalidateCache(ctx, cacheCfg, rdb)
	}), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// bootstrapStaff creates the front desk account named by STAFF_EMAIL and
// STAFF_PASSWORD unless it exists.  Public registration only yields GUEST
// accounts, so this is the way to get the first STAFF login.
func bootstrapStaff(guests *repository.GuestRepo, cost int) {
	email, password := os.Getenv("STAFF_EMAIL"), os.Getenv("STAFF_PASSWORD")
	if email == "" || password == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := guests.GetByEmail(ctx, email)
	if err == nil {
		return
	}
	if !errors.Is(err, repository.ErrGuestNotFound) {
		log.Fatalf("staff bootstrap: %v", err)
	}
	if _, err := guests.Create(ctx, email, password, "Front desk", model.RoleStaff, cost); err != nil && !errors.Is(err, repository.ErrEmailExists) {
		log.Fatalf("staff bootstrap: %v", err)
	}
	log.Printf("staff bootstrap: created %s", email)
}
