package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/loadlane/loadlane/internal/api"
	"github.com/loadlane/loadlane/internal/app"
	"github.com/loadlane/loadlane/internal/app/maintenance"
	"github.com/loadlane/loadlane/internal/cache"
	"github.com/loadlane/loadlane/internal/database"
	"github.com/loadlane/loadlane/internal/events"
	"github.com/loadlane/loadlane/internal/hub"
	"github.com/loadlane/loadlane/internal/notify"
	"github.com/loadlane/loadlane/pkg/logger"
	"github.com/loadlane/loadlane/pkg/mail"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("loadlane-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	dbStore := cache.NewDatabaseStore(db)

	var sharedStore cache.Store = dbStore
	if cfg.Cache.Redis.Enabled {
		client, redisErr := cache.NewRedisClient(cfg.Cache.RedisSettings())
		if redisErr != nil {
			log.Warn("redis unavailable; throttle state falls back to the database", zap.Error(redisErr))
		} else {
			sharedStore = client
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
			defer client.Close()
		}
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return fmt.Errorf("initialise mailer: %w", err)
	}

	notificationHub := hub.New()
	inApp := notify.NewInAppService(db, notificationHub)
	preferences := notify.NewPreferenceService(db)
	gate := notify.NewCacheGate(sharedStore, cfg.Notify.ThrottleWindow)

	adapters, err := buildAdapters(cfg, db, mailer)
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(db, preferences, gate, inApp, adapters,
		notify.WithAdapterTimeout(cfg.Notify.AdapterTimeout))
	eventHandlers := events.New(db, dispatcher)

	cleaner := maintenance.NewCleaner(db, dbStore,
		maintenance.WithDeliveryRetention(cfg.Notify.DeliveryRetention),
		maintenance.WithReadRetention(cfg.Notify.ReadRetention),
		maintenance.WithSchedule(cfg.Notify.CleanupSchedule))
	if err := cleaner.Start(); err != nil {
		return fmt.Errorf("start maintenance jobs: %w", err)
	}
	defer func() {
		stopCtx := cleaner.Stop()
		if err := cleaner.RunOnce(stopCtx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}()

	router := api.NewRouter(api.Deps{
		DB:          db,
		InApp:       inApp,
		Preferences: preferences,
		Hub:         notificationHub,
		Events:      eventHandlers,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func buildAdapters(cfg *app.Config, db *gorm.DB, mailer mail.Mailer) ([]notify.ChannelAdapter, error) {
	adapters := []notify.ChannelAdapter{
		notify.NewEmailAdapter(db, mailer),
	}

	if cfg.Push.Enabled {
		pushSender, err := notify.NewVAPIDSender(notify.VAPIDConfig{
			Subscriber: cfg.Push.Subscriber,
			PublicKey:  cfg.Push.PublicKey,
			PrivateKey: cfg.Push.PrivateKey,
			TTL:        cfg.Push.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("initialise push sender: %w", err)
		}
		adapters = append(adapters, notify.NewPushAdapter(db, pushSender))
	}

	smsSender, err := notify.NewHTTPSMSGateway(notify.SMSGatewayConfig{
		Enabled: cfg.SMS.Enabled,
		BaseURL: cfg.SMS.BaseURL,
		APIKey:  cfg.SMS.APIKey,
		From:    cfg.SMS.From,
		Timeout: cfg.SMS.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise sms gateway: %w", err)
	}
	if smsSender != nil {
		adapters = append(adapters, notify.NewSMSAdapter(db, smsSender))
	}

	return adapters, nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseSettings()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to access database handle", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
