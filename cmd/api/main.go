package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"stockcast-api/internal/config"
	"stockcast-api/internal/handler"
	"stockcast-api/internal/lock"
	"stockcast-api/internal/middleware"
	"stockcast-api/internal/model"
	"stockcast-api/internal/repository"
	"stockcast-api/internal/service"
	"stockcast-api/internal/ws"
	"stockcast-api/pkg/database"
	"stockcast-api/pkg/groq"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	// 2. Setup Logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// 3. Setup Database
	db := database.ConnectDB(cfg.DatabaseURL)
	// Auto Migrate (use a dedicated migration tool for larger deployments)
	db.AutoMigrate(&model.User{}, &model.InventoryRecord{}, &model.Forecast{})

	// 4. Per-user locking: Redis when configured, in-process otherwise
	var locker lock.Locker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		locker = lock.NewRedisLocker(rdb)
		logger.Info("using redis-backed per-user locks")
	} else {
		locker = lock.NewMemoryLocker()
		logger.Warn("REDIS_ADDR not set, using in-process locks (single instance only)")
	}

	// 5. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 6. Prediction oracle client
	oracle := groq.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqTimeout)

	// 7. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	invRepo := repository.NewInventoryRepo(db)
	forecastRepo := repository.NewForecastRepo(db)
	lifecycleRepo := repository.NewLifecycleRepo(db, invRepo, forecastRepo)

	authService := service.NewAuthService(userRepo, cfg, logger)
	invService := service.NewInventoryService(invRepo, lifecycleRepo, locker, wsHub, logger)
	forecastService := service.NewForecastService(invRepo, forecastRepo, oracle, locker, wsHub, logger)
	dashService := service.NewDashboardService(invRepo, forecastRepo)
	reportService := service.NewReportService(invRepo, forecastRepo)

	authHandler := handler.NewAuthHandler(authService, cfg.FrontendURL)
	invHandler := handler.NewInventoryHandler(invService, cfg.MaxUploadBytes)
	forecastHandler := handler.NewForecastHandler(forecastService)
	dashHandler := handler.NewDashboardHandler(dashService)
	reportHandler := handler.NewReportHandler(reportService)

	// 8. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "StockCast API v1.0",
		BodyLimit: int(cfg.MaxUploadBytes) + 1024*1024,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "stockcast-api"})
	})

	// 9. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Get("/google/url", authHandler.GoogleURL)
	auth.Get("/google/callback", authHandler.GoogleCallback)

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication
	protected := api.Group("", middleware.RequireAuth(userRepo))

	protected.Get("/auth/me", authHandler.Me)

	// Inventory Routes
	protected.Post("/inventory/upload", invHandler.UploadCSV)
	protected.Get("/inventory/data", invHandler.GetData)
	protected.Get("/inventory/products", invHandler.GetProducts)

	// Forecast Routes
	protected.Post("/forecasts/generate", forecastHandler.Generate)
	protected.Get("/forecasts", forecastHandler.List)
	protected.Get("/forecasts/:id", forecastHandler.GetByID)

	// Dashboard Routes
	protected.Get("/dashboard/summary", dashHandler.GetSummary)

	// Report Routes
	protected.Get("/reports/export", reportHandler.Export)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 10. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
