package server

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cargoease/api/internal/config"
	"cargoease/api/internal/handler"
	"cargoease/api/internal/middleware"
	"cargoease/api/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router       *gin.Engine
	config       *config.Config
	db           *gorm.DB
	redis        *redis.Client
	nats         *nats.Conn
	wsHub        *handler.WSHub
	wsHandler    *handler.WSHandler
	alertService *service.AlertService
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) *Server {
	return &Server{
		config: cfg,
		db:     db,
		redis:  redisClient,
		nats:   natsConn,
	}
}

// Setup initializes routes and handlers
func (s *Server) Setup() error {
	// Initialize WebSocket hub first (needed by alert service)
	s.wsHub = handler.NewWSHub()
	s.wsHandler = handler.NewWSHandler(s.wsHub)

	// Initialize services
	cache := service.NewSummaryCache(s.redis)
	oilService := service.NewOilService(s.db, s.config.Maintenance)
	tireService := service.NewTireService(s.db, s.config.Maintenance)
	recalcService := service.NewRecalcService(oilService, tireService, cache)
	tripService := service.NewTripService(s.db, recalcService)
	vehicleService := service.NewVehicleService(s.db, s.config.Maintenance, oilService, tireService, cache)
	s.alertService = service.NewAlertService(s.db, s.nats, s.wsHub)

	// 油耗/轮胎告警统一走 NATS 总线再落库
	oilService.SetAlertPublisher(s.alertService)
	tireService.SetAlertPublisher(s.alertService)

	if err := s.alertService.Start(); err != nil {
		return err
	}
	log.Println("[Server] Alert service started")

	// Initialize handlers
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	tripHandler := handler.NewTripHandler(tripService)
	oilHandler := handler.NewOilHandler(oilService)
	tireHandler := handler.NewTireHandler(tireService)
	fleetHandler := handler.NewFleetHandler(s.db)
	alertHandler := handler.NewAlertHandler(s.alertService)

	// Start WebSocket hub in background
	go s.wsHub.Run()
	log.Println("[Server] WebSocket hub started")

	// Setup Gin router
	s.router = gin.Default()

	// CORS middleware
	s.router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Rate limiting (by client IP)
	if s.config.RateLimit.Enabled {
		limiter := middleware.NewRedisRateLimiter(s.redis)
		s.router.Use(middleware.RateLimit(limiter, func(path string) middleware.RateLimitConfig {
			rule := s.config.GetRateLimitRuleForPath(path)
			return middleware.RateLimitConfig{Limit: rule.Limit, Window: rule.Window}
		}))
	}

	// Public routes
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "ok",
			"ws_clients": s.wsHub.GetClientCount(),
		})
	})

	// WebSocket route
	s.router.GET("/ws/alerts", s.wsHandler.HandleWS)

	// API routes
	api := s.router.Group("/api/v1")
	{
		vehicleHandler.RegisterRoutes(api)
		tripHandler.RegisterRoutes(api)
		oilHandler.RegisterRoutes(api)
		tireHandler.RegisterRoutes(api)
		fleetHandler.RegisterRoutes(api)
		alertHandler.RegisterRoutes(api)
	}

	return nil
}

// Run starts the HTTP server
func (s *Server) Run(addr string) error {
	log.Printf("[Server] HTTP server listening on %s", addr)
	return s.router.Run(addr)
}

// GetRouter returns the gin router for testing
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() {
	if s.wsHub != nil {
		s.wsHub.Stop()
		log.Println("[Server] WebSocket hub stopped")
	}
	if s.alertService != nil {
		s.alertService.Stop()
		log.Println("[Server] Alert service stopped")
	}
}
