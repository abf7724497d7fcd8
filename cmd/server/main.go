package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
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
	flag.Parse()

	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Aurum order backend...", "log_level", cfg.Log.Level)

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
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// Health listener: the only HTTP surface this process owns.
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("Health listener starting", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health listener failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")
	_ = httpServer.Close()
}
