// internal/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/shophub-backend/internal/i18n"
	"github.com/javajoker/shophub-backend/internal/services"
	"github.com/javajoker/shophub-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// POST /checkout/quote
func (h *OrderHandler) QuoteCart(c *gin.Context) {
	var req services.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	quote, err := h.orderService.QuoteCart(c.Request.Context(), req.Items, req.CouponCode)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	quote.Totals = quote.Totals.Rounded()
	utils.SuccessResponse(c, quote)
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	order, quote, err := h.orderService.PlaceOrder(c.Request.Context(), actor, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	quote.Totals = quote.Totals.Rounded()
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyOrderCreated),
		"order":   order,
		"quote":   quote,
	})
}

// GET /orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrdersForUser(c.Request.Context(), actor.UserID, utils.GetPaginationParams(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, orders)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderForUser(c.Request.Context(), actor, id)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			utils.NotFoundResponse(c, i18n.KeyOrderNotFound)
			return
		}
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.orderService.UpdateStatus(c.Request.Context(), id, &req, actor); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
