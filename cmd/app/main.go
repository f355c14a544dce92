package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chargeslot/internal/booking"
	"chargeslot/internal/config"
	"chargeslot/internal/db"
	"chargeslot/internal/email"
	"chargeslot/internal/events"
	"chargeslot/internal/logger"
	"chargeslot/internal/obs"
	"chargeslot/internal/profile"
	"chargeslot/internal/server"
	"chargeslot/internal/slot"
)

var version = "dev"

type eventPublisher interface {
	booking.EventPublisher
	Close() error
}

// @title ChargeSlot API
// @version 1.0
// @description Booking API for a shared electric vehicle charging station.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting ChargeSlot", "version", version)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("Invalid TIMEZONE %q: %v", cfg.Timezone, err)
	}

	catalog, err := slot.Resolve(cfg.SlotCatalog, loc)
	if err != nil {
		logger.Fatalf("Failed to load slot catalog: %v", err)
	}
	logger.Info("Slot catalog loaded", "catalog", cfg.SlotCatalog, "slots", len(catalog.SlotsForDay()), "timezone", loc.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		logger.Fatalf("Failed to init tracing: %v", err)
	}

	logger.Info("Connecting to database...")
	connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
	database, err := db.Connect(connectCtx, cfg.DatabaseURL)
	connectCancel()
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	emailService := email.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer emailService.Close()
	go emailService.Start(ctx)

	var publisher eventPublisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewPublisher(cfg.RabbitMQURL, events.DefaultExchange)
		if err != nil {
			logger.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = p
	} else {
		logger.Info("RABBITMQ_URL not set, domain events disabled")
	}
	defer publisher.Close()

	profileRepo := profile.NewRepository(database)
	bookingRepo := booking.NewRepository(database)

	engine := booking.NewEngine(catalog, cfg.ConfirmOwnerOnly)
	bookingService := booking.NewService(
		engine,
		bookingRepo,
		profileRepo,
		email.NewNotifier(emailService, profileRepo, loc),
		publisher,
		booking.Options{BanDuration: cfg.BanDuration},
	)
	profileService := profile.NewService(profileRepo, bookingRepo, cfg.JWTSecret)

	srv := server.New(cfg,
		server.Handlers{
			Bookings: booking.NewHandler(bookingService, loc),
			Profiles: profile.NewHandler(profileService),
		},
		server.HealthCheck{Name: "database", Check: db.Ping(database)},
		server.HealthCheck{Name: "mail queue", Check: emailService.Ping},
	)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		serverErrChan <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		if err != nil {
			logger.Errorf("Server error: %v", err)
		}
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Errorf("Error flushing traces: %v", err)
	}

	logger.Info("Server stopped")
}
