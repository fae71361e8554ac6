package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-lifecycle/internal/config"
	"github.com/iliyamo/rental-lifecycle/internal/database"
	"github.com/iliyamo/rental-lifecycle/internal/handler"
	"github.com/iliyamo/rental-lifecycle/internal/lifecycle"
	"github.com/iliyamo/rental-lifecycle/internal/middleware"
	"github.com/iliyamo/rental-lifecycle/internal/payment"
	"github.com/iliyamo/rental-lifecycle/internal/queue"
	"github.com/iliyamo/rental-lifecycle/internal/repository"
	"github.com/iliyamo/rental-lifecycle/internal/router"
	queue_publisher "github.com/iliyamo/rental-lifecycle/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	orch := lifecycle.New(lifecycle.Deps{
		Contracts:             repository.NewContractRepo(db),
		Keys:                  repository.NewKeyCollectionRepo(db),
		Checklists:            repository.NewChecklistRepo(db),
		Mods:                  repository.NewModificationRepo(db),
		Intents:               repository.NewPaymentIntentRepo(db),
		Provider:              payment.NewStripeClient(cfg.StripeSecretKey, cfg.StripeBaseURL),
		Events:                queue_publisher.Publisher{},
		ChecklistDeadlineDays: cfg.ChecklistDeadlineDays,
	})

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), cfg.JWTSecret)
	router.RegisterContracts(e, handler.NewContractHandler(orch), cfg.JWTSecret)

	// Background consumer writing the contract event audit log.
	go func() {
		if err := queue.StartContractConsumer(); err != nil {
			log.Printf("contract consumer stopped: %v", err)
		}
	}()

	// Advisory sweeper: activates due contracts, expires ended ones.
	go orch.RunSweeper(context.Background(), time.Duration(cfg.SweepIntervalSec)*time.Second)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
