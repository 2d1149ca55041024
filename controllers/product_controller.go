package controllers

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"storefront/libs"
	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 * 1024 * 1024

type ProductController struct {
	products *services.ProductService
	logger   *slog.Logger
}

func NewProductController(products *services.ProductService, logger *slog.Logger) *ProductController {
	return &ProductController{products: products, logger: loggerOrDefault(logger)}
}

// @Summary Get all products
// @Description Get paginated list of products, optionally filtered
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search in name and description"
// @Param color query string false "Filter by color"
// @Param size query string false "Filter by size" Enums(M, L, XL)
// @Success 200 {object} models.PaginationResponse
// @Router /products [get]
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := models.ProductFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Color:  strings.TrimSpace(c.Query("color")),
		Size:   strings.TrimSpace(c.Query("size")),
	}

	resp, err := ctrl.products.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get product by ID
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	product, err := ctrl.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product retrieved", Data: product})
}

// @Summary Upload product image
// @Tags Admin - Products
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Product ID"
// @Param image formData file true "Image file"
// @Success 200 {object} models.Response
// @Router /admin/products/{id}/image [post]
func (ctrl *ProductController) UploadImage(c *gin.Context) {
	file, filename, ok := readImage(c, "image")
	if !ok {
		return
	}
	defer file.Close()

	url, err := ctrl.products.UpdateImage(c.Request.Context(), c.Param("id"), file, filename)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product image updated", Data: gin.H{"image_url": url}})
}

// readImage opens the uploaded image in field, answering 400 itself when the
// upload is missing, too large or not an image.
func readImage(c *gin.Context, field string) (multipart.File, string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Image file is required"})
		return nil, "", false
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "File too large (max 5MB)"})
		return nil, "", false
	}
	if err := libs.ValidateImageName(fileHeader.Filename); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Failed to read image"})
		return nil, "", false
	}
	return file, fileHeader.Filename, true
}
