package server

import (
	"log"
	"strings"
	"time"

	"anoa.com/apotekpos/internal/agent"
	"anoa.com/apotekpos/internal/agent/agents"
	"anoa.com/apotekpos/internal/config"
	"anoa.com/apotekpos/internal/middleware"
	"anoa.com/apotekpos/pkg/storage"

	dashboardHttp "anoa.com/apotekpos/internal/modules/dashboard/delivery/http"
	dashboardService "anoa.com/apotekpos/internal/modules/dashboard/service"

	invHttp "anoa.com/apotekpos/internal/modules/inventory/delivery/http"
	invRepo "anoa.com/apotekpos/internal/modules/inventory/repository"
	invService "anoa.com/apotekpos/internal/modules/inventory/service"

	notifHttp "anoa.com/apotekpos/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/apotekpos/internal/modules/notification/repository"
	notifService "anoa.com/apotekpos/internal/modules/notification/service"

	saleHttp "anoa.com/apotekpos/internal/modules/sale/delivery/http"
	saleRepo "anoa.com/apotekpos/internal/modules/sale/repository"
	saleService "anoa.com/apotekpos/internal/modules/sale/service"

	supplierHttp "anoa.com/apotekpos/internal/modules/supplier/delivery/http"
	supplierRepo "anoa.com/apotekpos/internal/modules/supplier/repository"
	supplierService "anoa.com/apotekpos/internal/modules/supplier/service"

	userHttp "anoa.com/apotekpos/internal/modules/user/delivery/http"
	userRepo "anoa.com/apotekpos/internal/modules/user/repository"
	userService "anoa.com/apotekpos/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *agent.Scheduler
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("⚠️ Cloudinary unavailable, product images disabled: %v", err)
		imageStorage = nil
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	productSearch := invService.NewProductSearchService(meiliClient)

	userSvc := userService.NewUserService(users)
	authHandler := userHttp.NewAuthHandler(userSvc)
	userAdminHandler := userHttp.NewUserAdminHandler(userSvc)

	// Notification pipeline
	notifications := notifRepo.NewNotificationRepository(db)
	notifSvc := notifService.NewNotificationService(notifications, redisClient, notifService.Config{
		CooldownWindow:        cfg.NotifCooldownWindow,
		RetentionDays:         cfg.NotifRetentionDays,
		ProfitImpactThreshold: cfg.NotifProfitImpactThreshold,
	})
	notificationHandler := notifHttp.NewNotificationHandler(notifSvc, redisClient)

	products := invRepo.NewProductRepository(db)
	inventorySvc := invService.NewInventoryService(products, productSearch, imageStorage)
	inventoryHandler := invHttp.NewInventoryHandler(inventorySvc)

	suppliers := supplierRepo.NewSupplierRepository(db)
	supplierSvc := supplierService.NewSupplierService(suppliers)
	supplierHandler := supplierHttp.NewSupplierHandler(supplierSvc)

	sales := saleRepo.NewSaleRepository(db)
	saleSvc := saleService.NewSaleService(sales, products, users, notifSvc)
	saleHandler := saleHttp.NewSaleHandler(saleSvc)

	dashboardSvc := dashboardService.NewDashboardService(saleSvc, inventorySvc, notifSvc, cfg.ExpiryWarningWindow)
	dashboardHandler := dashboardHttp.NewDashboardHandler(dashboardSvc)

	// Scheduled agents
	scheduler := agent.NewScheduler()
	scheduler.RegisterAgent(agents.NewStockScanAgent(inventorySvc, users, notifSvc, cfg.StockScanSchedule))
	scheduler.RegisterAgent(agents.NewExpiryScanAgent(inventorySvc, users, notifSvc, cfg.ExpiryScanSchedule, cfg.ExpiryWarningWindow, cfg.ExpiryCriticalWindow))
	scheduler.RegisterAgent(agents.NewDailyReportAgent(saleSvc, users, notifSvc, cfg.DailyReportSchedule))
	scheduler.RegisterAgent(agents.NewRetentionAgent(notifSvc, cfg.RetentionSchedule))
	scheduler.Start()

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/users", userAdminHandler.CreateUser)
			adminGroup.GET("/users", userAdminHandler.GetAllUsers)
			adminGroup.PUT("/users/:id", userAdminHandler.UpdateUser)
			adminGroup.DELETE("/users/:id", userAdminHandler.DeleteUser)
			adminGroup.POST("/notifications/generate", notificationHandler.Generate)
		}

		// Product routes (mutations restricted to apoteker/admin)
		manage := protected.Group("")
		manage.Use(authMiddleware.RequireRole("admin", "apoteker"))
		{
			manage.POST("/products", inventoryHandler.CreateProduct)
			manage.PUT("/products/:id", inventoryHandler.UpdateProduct)
			manage.DELETE("/products/:id", inventoryHandler.DeleteProduct)
			manage.POST("/products/:id/image", inventoryHandler.UploadProductImage)
			manage.POST("/products/:id/adjust-stock", inventoryHandler.AdjustStock)
			manage.POST("/products/:id/batches", inventoryHandler.ReceiveBatch)

			manage.POST("/suppliers", supplierHandler.CreateSupplier)
			manage.PUT("/suppliers/:id", supplierHandler.UpdateSupplier)
			manage.PUT("/suppliers/:id/deactivate", supplierHandler.DeactivateSupplier)
		}

		protected.GET("/products", inventoryHandler.ListProducts)
		protected.GET("/products/search", inventoryHandler.SearchProducts)
		protected.GET("/products/:id", inventoryHandler.GetProduct)

		protected.GET("/suppliers", supplierHandler.ListSuppliers)
		protected.GET("/suppliers/:id", supplierHandler.GetSupplier)

		// Sale routes
		protected.POST("/sales", saleHandler.CreateSale)
		protected.GET("/sales", saleHandler.ListSales)
		protected.GET("/sales/:id", saleHandler.GetSale)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.GET("/notifications/summary", notificationHandler.GetSummary)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.DELETE("/notifications/:id", notificationHandler.DeleteNotification)
		protected.GET("/notifications/preferences", notificationHandler.GetPreferences)
		protected.PUT("/notifications/preferences", notificationHandler.UpdatePreferences)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Dashboard
		protected.GET("/dashboard", dashboardHandler.GetOverview)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) Stop() {
	s.scheduler.Stop()
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
