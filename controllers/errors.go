package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the JSON error envelope. Errors it
// does not recognise are logged and reported as upstream failures.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var validationErr *services.ValidationError
	var stockErr *services.StockError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: validationErr.Error(),
			Details: gin.H{"field": validationErr.Field},
		})
	case errors.Is(err, services.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: err.Error(),
			Details: gin.H{"field": "quantity"},
		})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Message: "Not enough stock for some items in your cart",
			Error:   stockErr.Error(),
			Details: gin.H{"shortages": stockErr.Shortages},
		})
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Cart is empty"})
	case errors.Is(err, services.ErrLoginRequired):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Success: false,
			Message: "Login required",
			Details: gin.H{"login_url": "/auth/login"},
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Invalid credentials"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "Email already exists"})
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Order not found"})
	case errors.Is(err, services.ErrOrderNotCancellable):
		c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "Order can no longer be cancelled"})
	case errors.Is(err, services.ErrProductNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Product not found"})
	case errors.Is(err, services.ErrImageStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Success: false, Message: "Image upload is not available"})
	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Message: "Upstream service error",
			Error:   err.Error(),
		})
	}
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
