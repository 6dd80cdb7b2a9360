// File: consultly/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consultly/config"
	"consultly/cron"
	"consultly/database"
	consultantRepo "consultly/database/repository/consultant"
	leadRepoPkg "consultly/database/repository/lead"
	"consultly/handlers"
	"consultly/middleware"
	"consultly/routes"
	"consultly/services/availability"
	"consultly/services/bookingapi"
	"consultly/services/directory"
	"consultly/services/lead"
	"consultly/services/tasks"
	"consultly/services/wizard"
	"consultly/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	consRepo := consultantRepo.NewMongoConsultantRepo()
	leadRepo := leadRepoPkg.NewMongoLeadRepo()

	// outbound collaborators.
	bookingClient := bookingapi.NewHTTPClient(
		config.AppConfig.BookingAPIBaseURL,
		config.AppConfig.BookingAPIKey,
	)
	availabilityClient := availability.NewHTTPClient(
		config.AppConfig.BookingAPIBaseURL,
		config.AppConfig.BookingAPIKey,
	)

	// services.
	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	draftRetention := time.Duration(config.AppConfig.DraftRetentionHours) * time.Hour
	reminderLead := time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute

	sessionStore := wizard.NewRedisSessionStore(utils.GetSessionCacheClient(), sessionTTL)
	draftStore := wizard.NewRedisDraftStore(utils.GetDraftCacheClient(), draftRetention)
	orchestrator := wizard.NewOrchestrator(bookingClient, logger)
	reminderScheduler := tasks.NewAsynqScheduler()

	wizardService := wizard.NewDefaultWizardService(
		sessionStore,
		draftStore,
		consRepo,
		availabilityClient,
		orchestrator,
		reminderScheduler,
		reminderLead,
		logger,
	)
	directoryService := directory.NewDefaultDirectoryService(consRepo, logger)
	leadService := lead.NewDefaultLeadService(leadRepo, logger)

	handlers.WizardService = wizardService
	handlers.DirectoryService = directoryService
	handlers.LeadService = leadService

	routes.RegisterRoutes(router)

	// Background workers and monitors.
	cron.InitReminderWorker()
	utils.StartHealthMonitor(map[string]*redis.Client{
		"cache":    utils.GetCacheClient(),
		"sessions": utils.GetSessionCacheClient(),
		"drafts":   utils.GetDraftCacheClient(),
	}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
