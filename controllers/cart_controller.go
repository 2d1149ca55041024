package controllers

import (
	"log/slog"
	"net/http"

	"storefront/middleware"
	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts    *services.CartManager
	checkout *services.CheckoutService
	products *services.ProductService
	logger   *slog.Logger
}

func NewCartController(carts *services.CartManager, checkout *services.CheckoutService, products *services.ProductService, logger *slog.Logger) *CartController {
	return &CartController{
		carts:    carts,
		checkout: checkout,
		products: products,
		logger:   loggerOrDefault(logger),
	}
}

func (ctrl *CartController) cart(c *gin.Context) *services.CartStore {
	return ctrl.carts.Cart(middleware.CartID(c))
}

// @Summary Get cart
// @Description Cart items with live per-size availability, wishlist and total
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	snapshot := ctrl.cart(c).Snapshot()

	view := models.CartView{
		Items:         make([]models.CartItemView, 0, len(snapshot.LineItems)),
		WishlistItems: snapshot.WishlistItems,
		Total:         snapshot.Total(),
	}

	stock, err := ctrl.checkout.StockLimits(c.Request.Context(), snapshot.LineItems)
	if err != nil {
		ctrl.logger.Warn("cart view without stock limits", "error", err)
	} else {
		view.StockChecked = true
	}
	for _, item := range snapshot.LineItems {
		view.Items = append(view.Items, models.CartItemView{
			LineItem:  item,
			Available: stock.Available(item.ProductID, item.Size),
		})
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart retrieved", Data: view})
}

// @Summary Add item to cart
// @Description Adds a line item priced from the catalogue; same product and size are merged
// @Tags Cart
// @Accept json
// @Produce json
// @Param item body models.LineItem true "Line item"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var item models.LineItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	item, err := ctrl.products.PriceLineItem(c.Request.Context(), item)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	cart := ctrl.cart(c)
	if err := cart.AddItem(item); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item added to cart", Data: cart.Items()})
}

// @Summary Update cart item quantity
// @Tags Cart
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param size path string true "Size"
// @Param request body models.UpdateQuantityRequest true "New quantity"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/items/{productId}/{size} [patch]
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	var req models.UpdateQuantityRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	cart := ctrl.cart(c)
	if err := cart.UpdateQuantity(c.Param("productId"), c.Param("size"), req.Quantity); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart updated", Data: cart.Items()})
}

// @Summary Remove item from cart
// @Tags Cart
// @Produce json
// @Param productId path string true "Product ID"
// @Param size path string true "Size"
// @Success 200 {object} models.Response
// @Router /cart/items/{productId}/{size} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	cart := ctrl.cart(c)
	cart.RemoveItem(c.Param("productId"), c.Param("size"))

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item removed from cart", Data: cart.Items()})
}

// @Summary Clear cart
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	ctrl.cart(c).ClearCart()
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart cleared"})
}

// @Summary Validate cart against stock
// @Description Reports every item that exceeds live stock
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Router /cart/validate [post]
func (ctrl *CartController) Validate(c *gin.Context) {
	shortages, err := ctrl.checkout.Validate(c.Request.Context(), ctrl.cart(c))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	if len(shortages) > 0 {
		respondError(c, ctrl.logger, &services.StockError{Shortages: shortages})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "All items are in stock"})
}

// @Summary Get wishlist
// @Tags Wishlist
// @Produce json
// @Success 200 {object} models.Response
// @Router /wishlist [get]
func (ctrl *CartController) GetWishlist(c *gin.Context) {
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Wishlist retrieved", Data: ctrl.cart(c).WishlistItems()})
}

// @Summary Add to wishlist
// @Tags Wishlist
// @Accept json
// @Produce json
// @Param item body models.WishlistItem true "Wishlist item"
// @Success 200 {object} models.Response
// @Router /wishlist [post]
func (ctrl *CartController) AddToWishlist(c *gin.Context) {
	var item models.WishlistItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	item, err := ctrl.products.PriceWishlistItem(c.Request.Context(), item)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	cart := ctrl.cart(c)
	if err := cart.AddToWishlist(item); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Added to wishlist", Data: cart.WishlistItems()})
}

// @Summary Remove from wishlist
// @Tags Wishlist
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} models.Response
// @Router /wishlist/{productId} [delete]
func (ctrl *CartController) RemoveFromWishlist(c *gin.Context) {
	cart := ctrl.cart(c)
	cart.RemoveFromWishlist(c.Param("productId"))

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Removed from wishlist", Data: cart.WishlistItems()})
}
