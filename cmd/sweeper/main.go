package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"aurum-backend/internal/config"
	"aurum-backend/internal/jobs"
	"aurum-backend/internal/logger"
	"aurum-backend/internal/notify"
	"aurum-backend/internal/redisx"
	"aurum-backend/internal/repository/postgres"
	"aurum-backend/internal/scheduler"
	"aurum-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.Bool("run-once", false, "Run one sweep pass and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Aurum sweeper...", "log_level", cfg.Log.Level)

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	rdb := redisx.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer rdb.Close()

	store := postgres.NewStore(db)

	emailChannel := notify.NewSendGridChannel(
		cfg.SendGrid.APIKey,
		cfg.SendGrid.From,
		cfg.SendGrid.FromName,
		cfg.Notify.MaxAttempts,
		cfg.Notify.BaseDelay,
		cfg.Notify.ChannelTimeout,
	)

	pushChannel, err := notify.NewFCMChannel(context.Background(), cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to init push channel: %v", err)
	}

	dispatcher := notify.NewDispatcher(
		emailChannel,
		pushChannel,
		store.UserRepository,
		store.NotificationRepository,
		cfg.Notify.MaxAttempts,
		cfg.Notify.BaseDelay,
		cfg.Notify.ChannelTimeout,
	)

	ledgerService := service.NewLedgerService(store.LedgerRepository, store.UserRepository, store)
	orderService := service.NewOrderService(store.OrderRepository, store.UserRepository, ledgerService, store, dispatcher)

	sweepLock := redisx.NewMutex(rdb, cfg.Sweeper.LockKey, cfg.Sweeper.LockTTL)
	jobRunner := jobs.NewJobRunner(store.OrderRepository, store.UserRepository, orderService, pushChannel, sweepLock, cfg)

	if *runOnce {
		logger.Info("Running one sweep pass")
		jobRunner.SweepPendingOrders()
		return
	}

	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down sweeper...")
	sched.Stop()
}
