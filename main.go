package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"expense-tracker-backend/config"
	"expense-tracker-backend/database"
	"expense-tracker-backend/handlers"
	"expense-tracker-backend/i18n"
	"expense-tracker-backend/logger"
	"expense-tracker-backend/metrics"
	"expense-tracker-backend/services"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/sendgrid/sendgrid-go"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	if cfg.SeedData {
		if err := database.Seed(ctx, db, log); err != nil {
			return err
		}
	}

	translator, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		return err
	}
	log.Info("Translations loaded",
		zap.Strings("languages", translator.Languages()),
		zap.String("fallback", translator.Fallback()),
	)

	directory := database.NewDirectoryRepository(db)
	var store services.ExpenseStore = database.NewExpenseRepository(db)

	// Connect to Redis (optional, won't crash if unavailable)
	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	switch {
	case err != nil:
		log.Warn("Redis not available, running without cache", zap.Error(err))
	case redisClient != nil:
		defer redisClient.Close()
		store = database.NewCachedExpenseStore(store, redisClient, cfg.CacheTTL, log)
		log.Info("Redis connected, expense list cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	}

	notifier := newNotifier(ctx, cfg, directory, translator, log)
	m := metrics.New()

	var expenseNotifier services.ExpenseNotifier
	if notifier.Enabled() {
		expenseNotifier = notifier
	}

	renderer := handlers.NewErrorRenderer(translator)
	router := handlers.SetupRouter(handlers.RouterConfig{
		AppName:     cfg.AppName,
		CORSOrigins: cfg.CORSAllowOrigins,
		Logger:      log,
		Metrics:     m,
		Errors:      renderer,
		Expenses:    handlers.NewExpenseHandler(services.NewExpenseService(store, expenseNotifier, m, log), renderer),
		Directory:   handlers.NewDirectoryHandler(directory, renderer),
	})

	// Start server
	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("app", cfg.AppName), zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server stopped")
	return nil
}

// newNotifier enables the email channel when a SendGrid key is set and the
// push channel when Firebase credentials load.
func newNotifier(ctx context.Context, cfg *config.Config, users services.UserLookup, translator *i18n.Translator, log *zap.Logger) *services.NotificationService {
	var opts []services.NotificationOption

	if cfg.SendGridAPIKey != "" {
		opts = append(opts, services.WithEmail(sendgrid.NewSendClient(cfg.SendGridAPIKey), cfg.SendGridFrom, cfg.AppName))
	} else {
		log.Info("SendGrid API key not set, email notifications disabled")
	}

	if cfg.FirebaseCredPath != "" {
		app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.FirebaseCredPath))
		if err == nil {
			client, msgErr := app.Messaging(ctx)
			if msgErr == nil {
				opts = append(opts, services.WithPush(client))
			}
			err = msgErr
		}
		if err != nil {
			log.Warn("Firebase not available, push notifications disabled", zap.Error(err))
		}
	}

	return services.NewNotificationService(users, translator, log, opts...)
}
