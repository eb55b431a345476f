package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vekst-crm/crm-api/internal/auth"
	"github.com/vekst-crm/crm-api/internal/config"
	"github.com/vekst-crm/crm-api/internal/http/handler"
	"github.com/vekst-crm/crm-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/vekst-crm/crm-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                       *config.Config
	logger                    *zap.Logger
	authMiddleware            *auth.Middleware
	workspaceFilterMiddleware *middleware.WorkspaceFilterMiddleware
	rateLimiter               *middleware.RateLimiter
	healthHandler             *handler.HealthHandler
	businessHandler           *handler.BusinessHandler
	contactHandler            *handler.ContactHandler
	activityHandler           *handler.ActivityHandler
	offerHandler              *handler.OfferHandler
	jobApplicationHandler     *handler.JobApplicationHandler
	ticketHandler             *handler.TicketHandler
	mailAccountHandler        *handler.MailAccountHandler
	smsHandler                *handler.SmsHandler
	userHandler               *handler.UserHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	workspaceFilterMiddleware *middleware.WorkspaceFilterMiddleware,
	rateLimiter *middleware.RateLimiter,
	healthHandler *handler.HealthHandler,
	businessHandler *handler.BusinessHandler,
	contactHandler *handler.ContactHandler,
	activityHandler *handler.ActivityHandler,
	offerHandler *handler.OfferHandler,
	jobApplicationHandler *handler.JobApplicationHandler,
	ticketHandler *handler.TicketHandler,
	mailAccountHandler *handler.MailAccountHandler,
	smsHandler *handler.SmsHandler,
	userHandler *handler.UserHandler,
) *Router {
	return &Router{
		cfg:                       cfg,
		logger:                    logger,
		authMiddleware:            authMiddleware,
		workspaceFilterMiddleware: workspaceFilterMiddleware,
		rateLimiter:               rateLimiter,
		healthHandler:             healthHandler,
		businessHandler:           businessHandler,
		contactHandler:            contactHandler,
		activityHandler:           activityHandler,
		offerHandler:              offerHandler,
		jobApplicationHandler:     jobApplicationHandler,
		ticketHandler:             ticketHandler,
		mailAccountHandler:        mailAccountHandler,
		smsHandler:                smsHandler,
		userHandler:               userHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Health checks
	r.Get("/health", rt.healthHandler.Check)
	r.Get("/health/db", rt.healthHandler.Database)
	r.Get("/health/ready", rt.healthHandler.Ready)

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.workspaceFilterMiddleware.Filter)
		r.Use(rt.rateLimiter.Limit)

		// Session
		r.Get("/me", rt.userHandler.Me)
		r.Get("/users", rt.userHandler.ListMembers)

		// Businesses
		r.Route("/businesses", func(r chi.Router) {
			r.Get("/", rt.businessHandler.List)
			r.Post("/", rt.businessHandler.Create)
			r.Get("/leads", rt.businessHandler.GetLeads)
			r.Get("/{id}", rt.businessHandler.Get)
			r.Put("/{id}", rt.businessHandler.Update)
			r.Delete("/{id}", rt.businessHandler.Delete)
			r.Patch("/{id}/stage", rt.businessHandler.UpdateStage)
			r.Post("/{id}/convert", rt.businessHandler.ConvertToCustomer)
			r.Post("/{id}/tags", rt.businessHandler.AddTags)
			r.Delete("/{id}/tags/{tag}", rt.businessHandler.RemoveTag)

			// Sub-resources
			r.Get("/{id}/contacts", rt.businessHandler.ListContacts)
			r.Post("/{id}/contacts", rt.businessHandler.CreateContact)
			r.Get("/{id}/activities", rt.businessHandler.ListActivities)
			r.Get("/{id}/offers", rt.businessHandler.ListOffers)
			r.Get("/{id}/sms", rt.smsHandler.ListByBusiness)
		})

		// Contacts
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/{id}", rt.contactHandler.Get)
			r.Put("/{id}", rt.contactHandler.Update)
			r.Delete("/{id}", rt.contactHandler.Delete)
		})

		// Activities
		r.Route("/activities", func(r chi.Router) {
			r.Post("/", rt.activityHandler.Create)
			r.Patch("/{id}", rt.activityHandler.Update)
		})

		// Offers
		r.Route("/offers", func(r chi.Router) {
			r.Post("/", rt.offerHandler.Create)
			r.Get("/{id}", rt.offerHandler.Get)
			r.Put("/{id}", rt.offerHandler.Update)
			r.Delete("/{id}", rt.offerHandler.Delete)
			r.Patch("/{id}/status", rt.offerHandler.UpdateStatus)
		})

		// Job applications
		r.Route("/job-applications", func(r chi.Router) {
			r.Get("/", rt.jobApplicationHandler.List)
			r.Post("/", rt.jobApplicationHandler.Create)
			r.Get("/search", rt.jobApplicationHandler.Search)
			r.Get("/{id}", rt.jobApplicationHandler.Get)
			r.Put("/{id}", rt.jobApplicationHandler.Update)
			r.Delete("/{id}", rt.jobApplicationHandler.Delete)
			r.Patch("/{id}/status", rt.jobApplicationHandler.UpdateStatus)
			r.Get("/{id}/activities", rt.jobApplicationHandler.ListActivities)
			r.Post("/{id}/activities", rt.jobApplicationHandler.CreateActivity)
		})

		// Tickets
		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", rt.ticketHandler.List)
			r.Post("/", rt.ticketHandler.Create)
			r.Get("/{id}", rt.ticketHandler.Get)
			r.Put("/{id}", rt.ticketHandler.Update)
			r.Delete("/{id}", rt.ticketHandler.Delete)
			r.Post("/{id}/comments", rt.ticketHandler.AddComment)
			r.Post("/{id}/files", rt.ticketHandler.UploadFile)
			r.Get("/{id}/files/{fileId}", rt.ticketHandler.DownloadFile)
		})

		// Mail account
		r.Route("/mail-account", func(r chi.Router) {
			r.Get("/provider", rt.mailAccountHandler.GetProvider)
			r.Post("/provider", rt.mailAccountHandler.SaveProvider)
			r.Delete("/provider", rt.mailAccountHandler.Disconnect)
			r.Post("/verify", rt.mailAccountHandler.VerifyToken)
			r.Post("/token-info", rt.mailAccountHandler.TokenInfo)
		})

		// SMS
		r.Post("/sms", rt.smsHandler.Send)
	})

	return r
}
