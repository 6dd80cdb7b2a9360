package routes

import (
	"time"

	"consultly/handlers"
	"consultly/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterWizardRoutes sets up the booking wizard endpoints. Every wizard
// request carries the client key so saved drafts can be found on return.
func RegisterWizardRoutes(r *gin.Engine) {
	api := r.Group("/api/wizard")
	{
		api.Use(middleware.ClientKeyMiddleware())
		api.POST("/session", handlers.StartWizardSession)
		api.GET("/draft", handlers.HasSavedDraft)

		api.GET("/session/:sessionID", handlers.GetWizardSession)
		api.POST("/session/:sessionID/consultant", handlers.SelectConsultant)
		api.GET("/session/:sessionID/availability", handlers.FetchAvailability)
		api.POST("/session/:sessionID/schedule", handlers.SelectSchedule)
		api.POST("/session/:sessionID/contact", handlers.SubmitContact)
		api.POST("/session/:sessionID/billing", handlers.SubmitBilling)
		api.POST("/session/:sessionID/back", handlers.StepBack)

		// The three ordered booking platform calls.
		api.POST("/session/:sessionID/booking", handlers.CreateBooking)
		api.POST("/session/:sessionID/billing-sync", handlers.SyncBilling)
		api.POST("/session/:sessionID/payment", handlers.SubmitPayment)
		api.POST("/session/:sessionID/payment-intent", handlers.CreatePaymentIntent)

		// Exit flow.
		api.POST("/session/:sessionID/exit", handlers.RequestExit)
		api.POST("/session/:sessionID/exit/resolve", handlers.ResolveExit)
	}
}

// RegisterConsultantRoutes registers the public consultant directory endpoints.
func RegisterConsultantRoutes(r *gin.Engine) {
	api := r.Group("/api/consultants")
	{
		api.GET("", handlers.ListConsultants)
		api.GET("/:id", handlers.GetConsultant)
	}
}

// RegisterLeadRoutes registers the marketing lead capture endpoint.
func RegisterLeadRoutes(r *gin.Engine) {
	api := r.Group("/api/leads")
	{
		api.POST("", handlers.CaptureLead)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthCheck)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.ClientKeyHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.ClientKeyHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterWizardRoutes(r)
	RegisterConsultantRoutes(r)
	RegisterLeadRoutes(r)
	RegisterHealthRoute(r)
}
