package main

import (
	"log"

	_ "procurement/api/swagger" // swagger docs
	"procurement/internal/auth"
	"procurement/internal/config"
	"procurement/internal/database"
	"procurement/internal/handler"
	"procurement/internal/hierarchy"
	"procurement/internal/middleware"
	"procurement/internal/repository"
	"procurement/internal/service"
	"procurement/internal/textgen"
	"procurement/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Procurement Approval API
// @version         1.0
// @description     Multi-tier procurement approvals for public-health facilities.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	dir, err := hierarchy.LoadFile(cfg.UserDirectoryFile)
	if err != nil {
		log.Fatalf("User directory %s: %v", cfg.UserDirectoryFile, err)
	}
	log.Printf("Loaded %d users from %s", dir.Len(), cfg.UserDirectoryFile)

	db, err := database.NewConnection(cfg.DB)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Printf("Connected to %s successfully.", cfg.DB.Driver)

	// Set up WebSocket Hub, scoped to each user's visibility
	wsHub := websocket.NewHub(service.EventAudience(dir))
	go wsHub.Run()

	tokens := auth.Tokens{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}

	// Set up dependencies (Repository -> Service -> Handler)
	requestRepo := repository.NewRequestRepository(db)
	txManager := repository.NewTransactionManager(db)
	authService := service.NewAuthService(dir, tokens)
	directoryService := service.NewDirectoryService(dir)
	procurementService := service.NewProcurementService(requestRepo, txManager, dir, wsHub)
	reportService := service.NewReportService(requestRepo, dir)
	assistantService := service.NewAssistantService(textgen.NewClient(cfg.TextGen), requestRepo, dir)

	authMiddleware := middleware.NewAuth(authService, cfg.SecureCookies(), cfg.TokenTTL)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService, authMiddleware)
	directoryHandler := handler.NewDirectoryHandler(directoryService, authMiddleware)
	requestHandler := handler.NewRequestHandler(procurementService, authMiddleware)
	reportHandler := handler.NewReportHandler(reportService, authMiddleware)
	assistantHandler := handler.NewAssistantHandler(assistantService, authMiddleware)

	// Set up Gin Router
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, tokens, c)
	})

	authHandler.RegisterRoutes(router.Group(""))
	directoryHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))
	assistantHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
