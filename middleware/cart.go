package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartCookie = "cart_id"
	CartHeader = "X-Cart-ID"
	cartIDKey  = "cart_id"
	cartMaxAge = 60 * 60 * 24 * 30
)

// CartMiddleware resolves the visitor's cart id from the X-Cart-ID header or
// the cart_id cookie, minting a new one for first-time visitors.
func CartMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID := c.GetHeader(CartHeader)
		if cartID == "" {
			cartID, _ = c.Cookie(CartCookie)
		}
		if _, err := uuid.Parse(cartID); err != nil {
			cartID = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CartCookie, cartID, cartMaxAge, "/", "", false, true)
		c.Header(CartHeader, cartID)
		c.Set(cartIDKey, cartID)
		c.Next()
	}
}

func CartID(c *gin.Context) string {
	return c.GetString(cartIDKey)
}
