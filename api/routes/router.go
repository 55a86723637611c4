// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"icetea/internal/auth"
	"icetea/internal/events"
	"icetea/internal/lottery"
	"icetea/internal/notifications"
	"icetea/internal/shared/config"
	"icetea/internal/shared/database"
	"icetea/internal/shared/middleware"
	"icetea/internal/users"
	"icetea/internal/waitlist"
	"icetea/pkg/clock"
	"icetea/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "icetea-backend"

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	clock     clock.Clock
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	publisher notifications.Publisher

	auth          gin.HandlerFunc
	organizerOnly gin.HandlerFunc

	userRepo        users.Repository
	eventService    events.Service
	waitlistRepo    waitlist.Repository
	waitlistService waitlist.Service
	dispatcher      notifications.Dispatcher
}

// Options carries the optional collaborators built by the caller.
type Options struct {
	Clock     clock.Clock
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Publisher notifications.Publisher
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, opts Options) *Router {
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Router{
		config:    cfg,
		db:        db,
		clock:     clk,
		metrics:   opts.Metrics,
		gatherer:  opts.Gatherer,
		publisher: opts.Publisher,
		auth:      middleware.JWTAuthWithConfig(cfg),
	}
}

// WaitlistRepository exposes the shared waitlist store for background jobs.
func (r *Router) WaitlistRepository() waitlist.Repository {
	return r.waitlistRepo
}

// SetupRoutes configures all application routes. Order matters: later
// groups depend on services built by earlier ones.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupUserRoutes(api)
		r.setupAuthRoutes(api)
		r.setupEventRoutes(api)
		r.setupWaitlistRoutes(api)
		r.setupNotificationRoutes(api)
		r.setupLotteryRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   serviceName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})

	if r.config.Metrics.Enabled && r.gatherer != nil {
		engine.GET(r.config.Metrics.Path, gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}
}

func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	r.userRepo = users.NewRepository(r.db.PostgreSQL)
	users.SetupUserRoutes(rg, users.NewController(r.userRepo), r.auth)
}

// setupAuthRoutes configures device authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authService := auth.NewService(r.userRepo, r.config, r.clock)
	auth.SetupAuthRoutes(rg, auth.NewController(authService), r.auth)
}

// setupEventRoutes configures event management routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.PostgreSQL)
	r.eventService = events.NewService(eventRepo, r.clock)
	r.organizerOnly = events.RequireOrganizer(r.eventService)

	events.SetupEventRoutes(rg, events.NewController(r.eventService), r.auth)
}

func (r *Router) setupWaitlistRoutes(rg *gin.RouterGroup) {
	r.waitlistRepo = waitlist.NewRepository(r.db.PostgreSQL, r.clock)
	r.waitlistService = waitlist.NewService(r.waitlistRepo, r.metrics, &waitlist.ServiceConfig{
		AutoReplace: r.config.Lottery.AutoReplace,
	})

	waitlist.SetupWaitlistRoutes(rg, waitlist.NewController(r.waitlistService), r.auth, r.organizerOnly)
}

func (r *Router) setupNotificationRoutes(rg *gin.RouterGroup) {
	repo := notifications.NewRepository(r.db.PostgreSQL)
	r.dispatcher = notifications.NewDispatcher(repo, r.userRepo, r.waitlistRepo, r.publisher, r.clock, r.metrics)

	notifications.SetupNotificationRoutes(rg, notifications.NewController(r.dispatcher), r.auth, r.organizerOnly)
}

// setupLotteryRoutes builds the draw engine and hands it to the waitlist
// service for automatic replacement.
func (r *Router) setupLotteryRoutes(rg *gin.RouterGroup) {
	rng := lottery.NewRuntimeSource()
	if seed := r.config.Lottery.RandomSeed; seed != 0 {
		rng = lottery.NewSeededSource(uint64(seed))
	}

	engine := lottery.NewEngine(r.db.PostgreSQL, r.waitlistRepo, r.dispatcher, rng, r.clock, r.metrics,
		&lottery.EngineConfig{NotifyNotSelected: r.config.Lottery.NotifyNotSelected})
	r.waitlistService.SetReplacer(engine)

	lottery.SetupLotteryRoutes(rg, lottery.NewController(engine, r.config.Lottery.AutoReplace), r.auth, r.organizerOnly)
}
