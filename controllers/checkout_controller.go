package controllers

import (
	"log/slog"
	"net/http"

	"storefront/middleware"
	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	carts    *services.CartManager
	checkout *services.CheckoutService
	logger   *slog.Logger
}

func NewCheckoutController(carts *services.CartManager, checkout *services.CheckoutService, logger *slog.Logger) *CheckoutController {
	return &CheckoutController{carts: carts, checkout: checkout, logger: loggerOrDefault(logger)}
}

// @Summary Checkout
// @Description Validates the cart against live stock and places the order
// @Tags Checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Shipping and payment"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /checkout [post]
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	cart := ctrl.carts.Cart(middleware.CartID(c))
	order, err := ctrl.checkout.Checkout(c.Request.Context(), cart, req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Order created successfully", Data: order})
}
