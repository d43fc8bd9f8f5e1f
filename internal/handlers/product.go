// internal/handlers/product.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/shophub-backend/internal/i18n"
	"github.com/javajoker/shophub-backend/internal/services"
	"github.com/javajoker/shophub-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	searchParams := services.ProductSearchParams{
		Query:            strings.TrimSpace(c.Query("q")),
		PaginationParams: utils.GetPaginationParams(c),
	}

	if categoryStr := c.Query("category"); categoryStr != "" {
		categoryID, err := uuid.Parse(categoryStr)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "category"), nil)
			return
		}
		searchParams.CategoryID = &categoryID
	}

	if minStr := c.Query("min"); minStr != "" {
		priceMin, ok := parseAmount(minStr)
		if !ok {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "min"), nil)
			return
		}
		searchParams.PriceMin = &priceMin
	}

	if maxStr := c.Query("max"); maxStr != "" {
		priceMax, ok := parseAmount(maxStr)
		if !ok {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "max"), nil)
			return
		}
		searchParams.PriceMax = &priceMax
	}

	page, err := h.productService.SearchProducts(c.Request.Context(), searchParams)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			utils.NotFoundResponse(c, i18n.KeyProductNotFound)
			return
		}
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// GET /categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.ListCategories(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, categories)
}
