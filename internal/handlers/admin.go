// internal/handlers/admin.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shophub-backend/internal/i18n"
	"github.com/javajoker/shophub-backend/internal/models"
	"github.com/javajoker/shophub-backend/internal/services"
	"github.com/javajoker/shophub-backend/internal/utils"
)

// AdminHandler serves the /admin surface. Every route is behind
// middleware.AdminRequired.
type AdminHandler struct {
	productService *services.ProductService
	couponService  *services.CouponService
	orderService   *services.OrderService
}

func NewAdminHandler(productService *services.ProductService, couponService *services.CouponService, orderService *services.OrderService) *AdminHandler {
	return &AdminHandler{
		productService: productService,
		couponService:  couponService,
		orderService:   orderService,
	}
}

// GET /admin/products
func (h *AdminHandler) GetProducts(c *gin.Context) {
	products, err := h.productService.ListAllProducts(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, products)
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductCreated),
		"product": product,
	})
}

// PUT /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			utils.NotFoundResponse(c, i18n.KeyProductNotFound)
			return
		}
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductUpdated),
		"product": product,
	})
}

// DELETE /admin/products/:id
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			utils.NotFoundResponse(c, i18n.KeyProductNotFound)
			return
		}
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductDeleted),
	})
}

// POST /admin/products/:id/image
func (h *AdminHandler) UploadProductImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "image"), nil)
		return
	}
	defer file.Close()

	product, err := h.productService.UploadProductImage(c.Request.Context(), id, file, header)
	if err != nil {
		switch utils.KindOf(err) {
		case utils.KindNotFound:
			utils.NotFoundResponse(c, i18n.KeyProductNotFound)
		case utils.KindExternal:
			logrus.WithError(err).WithField("product_id", id).Error("Product image upload failed")
			utils.ErrorResponse(c, http.StatusBadGateway, string(utils.KindExternal), i18n.T(lang, i18n.KeyImageUploadError), nil)
		default:
			utils.HandleServiceError(c, err)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyImageUploaded),
		"product": product,
	})
}

// GET /admin/categories
func (h *AdminHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.ListCategories(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, categories)
}

// POST /admin/categories
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.productService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyCategoryCreated),
		"category": category,
	})
}

// GET /admin/coupons
func (h *AdminHandler) GetCoupons(c *gin.Context) {
	coupons, err := h.couponService.ListCoupons(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, coupons)
}

// POST /admin/coupons
func (h *AdminHandler) CreateCoupon(c *gin.Context) {
	var req services.CreateCouponRequest
	if !bindJSON(c, &req) {
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	coupon, err := h.couponService.CreateCoupon(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCouponCreated),
		"coupon":  coupon,
	})
}

// PATCH /admin/coupons/:id
func (h *AdminHandler) SetCouponActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Active *bool `json:"active" validate:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	coupon, err := h.couponService.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			utils.NotFoundResponse(c, i18n.KeyCouponNotFound)
			return
		}
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCouponUpdated),
		"coupon":  coupon,
	})
}

// DELETE /admin/coupons/:id
func (h *AdminHandler) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.couponService.DeleteCoupon(c.Request.Context(), id); err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			utils.NotFoundResponse(c, i18n.KeyCouponNotFound)
			return
		}
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCouponDeleted),
	})
}

// GET /admin/orders
func (h *AdminHandler) GetOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var status models.OrderStatus
	if statusStr := c.Query("status"); statusStr != "" {
		status = models.OrderStatus(statusStr)
		if !status.IsValid() {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "status"), nil)
			return
		}
	}

	orders, total, err := h.orderService.ListAllOrders(c.Request.Context(), status, params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}
