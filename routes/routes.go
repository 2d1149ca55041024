package routes

import (
	"storefront/controllers"
	"storefront/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controllers struct {
	Auth      *controllers.AuthController
	Product   *controllers.ProductController
	Cart      *controllers.CartController
	Checkout  *controllers.CheckoutController
	Order     *controllers.OrderController
	JWTSecret string
}

func SetupRoutes(router *gin.Engine, ctrl Controllers) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	router.POST("/auth/register", ctrl.Auth.Register)
	router.POST("/auth/login", ctrl.Auth.Login)
	router.GET("/products", ctrl.Product.GetAllProducts)
	router.GET("/products/:id", ctrl.Product.GetProductByID)

	cart := router.Group("/")
	cart.Use(middleware.CartMiddleware(), middleware.OptionalAuthMiddleware(ctrl.JWTSecret))
	{
		cart.GET("/cart", ctrl.Cart.GetCart)
		cart.POST("/cart/items", ctrl.Cart.AddItem)
		cart.PATCH("/cart/items/:productId/:size", ctrl.Cart.UpdateQuantity)
		cart.DELETE("/cart/items/:productId/:size", ctrl.Cart.RemoveItem)
		cart.DELETE("/cart", ctrl.Cart.ClearCart)
		cart.POST("/cart/validate", ctrl.Cart.Validate)

		cart.GET("/wishlist", ctrl.Cart.GetWishlist)
		cart.POST("/wishlist", ctrl.Cart.AddToWishlist)
		cart.DELETE("/wishlist/:productId", ctrl.Cart.RemoveFromWishlist)

		cart.POST("/checkout", ctrl.Checkout.Checkout)
	}

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware(ctrl.JWTSecret))
	{
		auth.GET("/auth/profile", ctrl.Auth.GetProfile)
		auth.PATCH("/auth/profile", ctrl.Auth.UpdateProfile)
		auth.POST("/auth/profile/photo", ctrl.Auth.UploadPhoto)
		auth.POST("/auth/logout", ctrl.Auth.Logout)
		auth.GET("/orders", ctrl.Order.ListOrders)
		auth.POST("/orders/:id/cancel", ctrl.Order.CancelOrder)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(ctrl.JWTSecret), middleware.AdminMiddleware())
	{
		admin.POST("/products/:id/image", ctrl.Product.UploadImage)
	}
}
