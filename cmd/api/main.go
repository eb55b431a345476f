package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vekst-crm/crm-api/docs"
	"github.com/vekst-crm/crm-api/internal/auth"
	"github.com/vekst-crm/crm-api/internal/config"
	"github.com/vekst-crm/crm-api/internal/database"
	"github.com/vekst-crm/crm-api/internal/http/handler"
	"github.com/vekst-crm/crm-api/internal/http/middleware"
	"github.com/vekst-crm/crm-api/internal/http/router"
	"github.com/vekst-crm/crm-api/internal/jobs"
	"github.com/vekst-crm/crm-api/internal/logger"
	"github.com/vekst-crm/crm-api/internal/mailprovider"
	"github.com/vekst-crm/crm-api/internal/repository"
	"github.com/vekst-crm/crm-api/internal/service"
	"github.com/vekst-crm/crm-api/internal/sms"
	"github.com/vekst-crm/crm-api/internal/storage"
	"go.uber.org/zap"
)

const version = "1.0.0"

// @title Vekst CRM API
// @version 1.0
// @description CRM API for lead, customer, recruitment and support workflows

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize repositories
	businessRepo := repository.NewBusinessRepository(db)
	tagRepo := repository.NewTagRepository(db)
	contactRepo := repository.NewContactRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	applicationRepo := repository.NewJobApplicationRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	fileRepo := repository.NewFileRepository(db)
	providerRepo := repository.NewEmailProviderRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	smsRepo := repository.NewSmsRepository(db)
	userRepo := repository.NewUserRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)

	// Initialize outbound clients
	mailClients := mailprovider.NewClients(&cfg.OAuth)
	smsClient := sms.NewClient(&cfg.Sms)

	// Initialize services
	businessService := service.NewBusinessService(businessRepo, tagRepo, activityRepo, log)
	contactService := service.NewContactService(contactRepo, businessRepo, log)
	activityService := service.NewActivityService(activityRepo, businessRepo, log)
	offerService := service.NewOfferService(offerRepo, businessRepo, activityRepo, log)
	applicationService := service.NewJobApplicationService(applicationRepo, activityRepo, log)
	ticketService := service.NewTicketService(ticketRepo, fileRepo, businessRepo, fileStorage, log)
	mailAccountService := service.NewMailAccountService(providerRepo, accountRepo, mailClients, log)
	smsService := service.NewSmsService(smsRepo, businessRepo, contactRepo, smsClient, cfg.Sms.Enabled, log)
	userService := service.NewUserService(userRepo, workspaceRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	workspaceFilterMiddleware := middleware.NewWorkspaceFilterMiddleware(cfg.Auth.ScopeMode, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db, version, log)
	businessHandler := handler.NewBusinessHandler(businessService, contactService, activityService, offerService, log)
	contactHandler := handler.NewContactHandler(contactService, log)
	activityHandler := handler.NewActivityHandler(activityService, log)
	offerHandler := handler.NewOfferHandler(offerService, log)
	applicationHandler := handler.NewJobApplicationHandler(applicationService, log)
	ticketHandler := handler.NewTicketHandler(ticketService, cfg.Storage.MaxUploadSizeMB, log)
	mailAccountHandler := handler.NewMailAccountHandler(mailAccountService, log)
	smsHandler := handler.NewSmsHandler(smsService, log)
	userHandler := handler.NewUserHandler(userService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		authMiddleware,
		workspaceFilterMiddleware,
		rateLimiter,
		healthHandler,
		businessHandler,
		contactHandler,
		activityHandler,
		offerHandler,
		applicationHandler,
		ticketHandler,
		mailAccountHandler,
		smsHandler,
		userHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		expiryJob := jobs.NewOfferExpiryJob(offerService, log, 5*time.Minute)
		if err := scheduler.AddJob(jobs.OfferExpiryJobName, cfg.Jobs.OfferExpirySchedule, expiryJob.Run); err != nil {
			log.Error("Failed to register offer expiry job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started",
				zap.String("offer_expiry_cron", cfg.Jobs.OfferExpirySchedule),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
