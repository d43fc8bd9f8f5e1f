// internal/handlers/coupon.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/shophub-backend/internal/i18n"
	"github.com/javajoker/shophub-backend/internal/services"
	"github.com/javajoker/shophub-backend/internal/utils"
)

type CouponHandler struct {
	couponService *services.CouponService
}

func NewCouponHandler(couponService *services.CouponService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

// GET /coupons/validate?code=&subtotal=
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	subtotal := 0.0
	if subtotalStr := c.Query("subtotal"); subtotalStr != "" {
		parsed, ok := parseAmount(subtotalStr)
		if !ok {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "subtotal"), nil)
			return
		}
		subtotal = parsed
	}

	result, err := h.couponService.ValidateCoupon(c.Request.Context(), c.Query("code"), subtotal)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
