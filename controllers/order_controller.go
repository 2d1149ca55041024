package controllers

import (
	"log/slog"
	"net/http"

	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders *services.OrderService
	logger *slog.Logger
}

func NewOrderController(orders *services.OrderService, logger *slog.Logger) *OrderController {
	return &OrderController{orders: orders, logger: loggerOrDefault(logger)}
}

// @Summary Order history
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /orders [get]
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	orders, err := ctrl.orders.List(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Orders retrieved successfully", Data: orders})
}

// @Summary Cancel order
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/cancel [post]
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	order, err := ctrl.orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order cancelled", Data: order})
}
