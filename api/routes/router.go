package routes

import (
	"net/http"
	"time"

	"festivaltickets/internal/auth"
	"festivaltickets/internal/clients"
	"festivaltickets/internal/events"
	"festivaltickets/internal/holds"
	"festivaltickets/internal/hosts"
	"festivaltickets/internal/jobs"
	"festivaltickets/internal/notifications"
	"festivaltickets/internal/shared/config"
	"festivaltickets/internal/shared/database"
	"festivaltickets/internal/shared/middleware"
	"festivaltickets/internal/tickets"
	"festivaltickets/pkg/cache"
	"festivaltickets/pkg/logger"
	"festivaltickets/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Dependencies are the shared infrastructure the modules are built on
type Dependencies struct {
	Config    *config.Config
	DB        *database.DB
	Log       *logger.Logger
	Cache     cache.Service
	Holds     holds.Store
	Scheduler jobs.Scheduler
	Publisher notifications.Publisher
	Metrics   *metrics.Metrics
}

// Router holds all route dependencies
type Router struct {
	deps Dependencies
	auth gin.HandlerFunc

	eventService events.Service
}

// NewRouter creates a new router instance
func NewRouter(deps Dependencies) *Router {
	return &Router{
		deps: deps,
		auth: middleware.JWTAuthWithConfig(deps.Config),
	}
}

// EventService is available after SetupRoutes; the job processor archives through it
func (r *Router) EventService() events.Service {
	return r.eventService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	db := r.deps.DB.GetPostgreSQL()
	paging := r.deps.Config.Pagination

	// Hosts
	hostService := hosts.NewService(hosts.NewRepository(db))
	hostService.SetCacheService(r.deps.Cache)

	// Tickets
	ticketRepo := tickets.NewRepository(db)
	ticketService := tickets.NewService(ticketRepo, r.deps.Holds, r.deps.Config.Holds.TTL, r.deps.Log)
	ticketService.SetPublisher(r.deps.Publisher)
	ticketService.SetMetrics(r.deps.Metrics)

	// Events
	eventService := events.NewService(events.NewRepository(db), ticketRepo, hostService, ticketService, r.deps.Log)
	eventService.SetCacheService(r.deps.Cache)
	eventService.SetPublisher(r.deps.Publisher)
	eventService.SetMetrics(r.deps.Metrics)
	if r.deps.Scheduler != nil {
		eventService.SetScheduler(r.deps.Scheduler)
	}
	r.eventService = eventService

	// Clients and auth
	clientService := clients.NewService(clients.NewRepository(db), r.deps.Log)
	clientService.SetCacheService(r.deps.Cache)
	authService := auth.NewService(clientService, auth.NewRepository(db), r.deps.Config.JWT, r.deps.Log)

	api := engine.Group(r.deps.Config.GetAPIBasePath())
	{
		auth.NewRouter(auth.NewController(authService, r.deps.Log), r.auth).SetupRoutes(api)
		events.SetupEventRoutes(api, events.NewController(eventService, paging, r.deps.Config.DefaultCity), r.auth)
		tickets.SetupTicketRoutes(api, tickets.NewController(ticketService), r.auth)
		hosts.SetupHostRoutes(api, hosts.NewController(hostService, paging))
		clients.SetupClientRoutes(api, clients.NewController(clientService, paging), r.auth)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.deps.DB.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "festival-tickets",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "festival-tickets",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.deps.Config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.deps.Config.APIVersion,
			"hold_store":  r.deps.Config.Holds.Store,
			"jobs":        r.deps.Config.Jobs.Enabled,
			"timestamp":   time.Now(),
		})
	})
}
