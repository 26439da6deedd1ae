package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"TeleClinic/config"
	"TeleClinic/controllers"
	"TeleClinic/database"
	"TeleClinic/kv"
	"TeleClinic/logging"
	"TeleClinic/metrics"
	"TeleClinic/repositories"
	"TeleClinic/routes"
	"TeleClinic/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.Env, cfg.ServiceName)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, logger *zap.Logger) error {
	ctx := logging.WithContext(context.Background(), logger)

	db, err := database.InitDB(ctx, cfg.DBURL, cfg.LogLevel == "debug")
	if err != nil {
		return err
	}

	redisClient, err := database.NewRedisClient(ctx, database.LoadRedisConfig(cfg.RedisURL, logger), logger)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	store, err := kv.NewRedisStore(redisClient)
	if err != nil {
		return err
	}

	sessions, err := utils.NewSessionIssuer(cfg.SymmetricKey, cfg.SessionTTL)
	if err != nil {
		return err
	}

	var mailer utils.Mailer = utils.NopMailer{}
	if cfg.SMTP.Host != "" {
		mailer = utils.NewSMTPMailer(utils.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		logger.Warn("SMTP_HOST not set, outgoing mail is disabled")
	}

	m := metrics.New(cfg.ServiceName)
	svc := routes.NewServices(repositories.New(db), sessions, store, mailer, m)

	if err := svc.Auth.EnsureAdmin(ctx, cfg.Admin); err != nil {
		return err
	}

	handler := routes.SetupRoutes(cfg, logger, m, svc,
		controllers.HealthCheck{Name: "database", Check: func(ctx context.Context) error { return database.Ping(ctx, db) }},
		controllers.HealthCheck{Name: "redis", Check: store.Ping},
	)

	srv := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	serveErr := make(chan error, 1)

	go func() {
		defer wg.Done()
		logger.Info("starting server", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	wg.Wait()

	closeDB(db, logger)
	logger.Info("server exited gracefully")
	return nil
}

func closeDB(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
}
