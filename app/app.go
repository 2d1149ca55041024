package app

import (
	"log"
	"log/slog"
	"os"

	"storefront/config"
	"storefront/controllers"
	"storefront/libs"
	"storefront/middleware"
	"storefront/models"
	"storefront/repositories"
	"storefront/routes"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

// New connects the backing services and returns the wired router along with
// a function that releases them. config.LoadConfig must run first.
func New() (*gin.Engine, func()) {
	cfg := config.AppConfig
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db := config.ConnectDB()
	redisClient := config.ConnectRedis()

	var kv repositories.KVStore
	if redisClient != nil {
		kv = repositories.NewRedisKVStore(redisClient, cfg.CartTTL)
	} else {
		log.Println("Carts are kept in process memory")
		kv = repositories.NewMemoryKVStore()
	}

	var images services.ImageStore
	if cld, err := libs.NewCloudinaryService(cfg.CloudinaryURL); err != nil {
		log.Println("Cloudinary disabled:", err)
	} else {
		images = cld
	}

	var notifier services.OrderNotifier
	if mailer, err := libs.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom); err != nil {
		log.Println("Order emails disabled:", err)
	} else {
		notifier = mailer
	}

	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	sessions := services.NewTokenSessions()
	unsubscribe := sessions.Subscribe(func(s *models.Session) {
		if s == nil {
			logger.Info("session ended")
			return
		}
		logger.Info("session started", "user_id", s.UserID)
	})

	carts := services.NewCartManager(kv, logger)
	authService := services.NewAuthService(userRepo, sessions, images, cfg.JWTSecret, cfg.JWTExpiry)
	productService := services.NewProductService(productRepo, images, redisClient, logger)
	checkoutService := services.NewCheckoutService(sessions, productRepo, orderRepo, notifier, logger)
	orderService := services.NewOrderService(sessions, orderRepo)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))

	routes.SetupRoutes(router, routes.Controllers{
		Auth:      controllers.NewAuthController(authService, logger),
		Product:   controllers.NewProductController(productService, logger),
		Cart:      controllers.NewCartController(carts, checkoutService, productService, logger),
		Checkout:  controllers.NewCheckoutController(carts, checkoutService, logger),
		Order:     controllers.NewOrderController(orderService, logger),
		JWTSecret: cfg.JWTSecret,
	})

	return router, func() {
		unsubscribe()
		config.CloseRedis(redisClient)
		config.CloseDB(db)
	}
}
