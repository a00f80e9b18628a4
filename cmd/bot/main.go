package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"localizer/internal/config"
	"localizer/internal/gateway"
	"localizer/internal/handler"
	"localizer/internal/registry"
	"localizer/internal/repository/postgres"
	"localizer/internal/service"
	"localizer/internal/translate"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Localizer Bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully")

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := runMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Database migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize repositories
	historyRepo := postgres.NewHistoryRepo(db)

	// Initialize translation backend
	tokens := translate.NewTokenProvider(cfg.TranslatorKey, logger)
	go tokens.Run(ctx)

	translator := translate.NewClient(tokens, logger)

	// Initialize Discord gateway
	discord, err := gateway.NewDiscord(cfg.DiscordToken, logger)
	if err != nil {
		logger.Fatal("Failed to create discord gateway", zap.Error(err))
	}
	if err := discord.Open(); err != nil {
		logger.Fatal("Failed to connect to discord", zap.Error(err))
	}

	logger.Info("Discord gateway connected")

	// Initialize relay components
	reg := registry.New(logger)
	guilds := service.NewGuildConfig(translator, cfg.Relay.HomeLanguage, logger)
	reaper := service.NewReaper(discord, cfg.Relay.CategoryName, cfg.Relay.IdleTimeout, cfg.Relay.SweepInterval, logger)
	router := service.NewRouter(discord, translator, reg, guilds, historyRepo, reaper, cfg.Relay.CategoryName, logger)
	pairs := service.NewPairService(discord, translator, reg, guilds, cfg.Relay.CategoryName, logger)
	provisioner := service.NewProvisioner(discord, translator, guilds, cfg.Relay.CategoryName, logger)

	h := handler.NewHandler(discord, reg, guilds, pairs, router, reaper, provisioner, translator, cfg.Relay.CategoryName, logger)

	// Start background loops
	go router.Run(ctx, cfg.Relay.Workers)
	go reaper.Run(ctx)

	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		logger.Info("Bot started successfully")
		if err := h.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("Dispatch loop ended", zap.Error(err))
		}
	}()

	// Wait for interrupt signal or a dead gateway
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, stopping bot...")
	case <-dispatchDone:
		logger.Error("Gateway connection lost, stopping bot...")
	}

	// Graceful shutdown
	cancel()
	if err := discord.Close(); err != nil {
		logger.Warn("Error closing discord gateway", zap.Error(err))
	}

	logger.Info("Bot stopped gracefully")
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		// Connection successful
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	// Run migrations
	if upErr := m.Up(); upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", upErr)
	} else if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Migrations applied successfully")
	}

	return nil
}
