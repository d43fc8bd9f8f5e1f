// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/shophub-backend/internal/database"
	"github.com/javajoker/shophub-backend/internal/dispatch"
	"github.com/javajoker/shophub-backend/internal/metrics"
	"github.com/javajoker/shophub-backend/internal/models"
	"github.com/javajoker/shophub-backend/internal/utils"
)

// JobSubmitter accepts best-effort background work.
type JobSubmitter interface {
	Submit(job dispatch.Job) bool
}

type OrderService struct {
	db            *gorm.DB
	products      *ProductService
	coupons       *CouponService
	authz         *AuthorizationService
	notifications *NotificationService
	events        EventPublisher
	jobs          JobSubmitter
	now           func() time.Time
}

type CartItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1,lte=999"`
}

type QuoteRequest struct {
	Items      []CartItem `json:"items" validate:"required,min=1,dive"`
	CouponCode string     `json:"couponCode,omitempty"`
}

type QuoteLine struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	LineTotal float64   `json:"line_total"`
}

// Quote prices a cart from stored product prices. A coupon that does not
// apply is reported in CouponError and the quote is left undiscounted.
type Quote struct {
	Items       []QuoteLine   `json:"items"`
	Coupon      *CouponResult `json:"coupon,omitempty"`
	CouponError string        `json:"coupon_error,omitempty"`
	Totals      Totals        `json:"totals"`
}

// OrderLine is one item of a new order at its captured unit price.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice float64
}

type UpdateStatusRequest struct {
	Status         models.OrderStatus `json:"status" validate:"required"`
	TrackingNumber *string            `json:"trackingNumber,omitempty" validate:"omitempty,max=128"`
}

func NewOrderService(
	db *gorm.DB,
	products *ProductService,
	coupons *CouponService,
	authz *AuthorizationService,
	notifications *NotificationService,
	events EventPublisher,
	jobs JobSubmitter,
) *OrderService {
	return &OrderService{
		db:            db,
		products:      products,
		coupons:       coupons,
		authz:         authz,
		notifications: notifications,
		events:        events,
		jobs:          jobs,
		now:           time.Now,
	}
}

func (s *OrderService) QuoteCart(ctx context.Context, items []CartItem, couponCode string) (*Quote, error) {
	if len(items) == 0 {
		return nil, utils.ValidationError("No items provided")
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, utils.ValidationError("quantity must be at least 1")
		}
		ids = append(ids, item.ProductID)
	}

	byID, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, utils.PersistenceError("failed to fetch products", err)
	}

	quote := &Quote{Items: make([]QuoteLine, 0, len(items))}
	lines := make([]PriceLine, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, utils.ValidationError("Invalid product in cart")
		}
		lines = append(lines, PriceLine{UnitPrice: product.Price, Quantity: item.Quantity})
		quote.Items = append(quote.Items, QuoteLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
			LineTotal: RoundMoney(product.Price * float64(item.Quantity)),
		})
	}

	var percentOff *float64
	if strings.TrimSpace(couponCode) != "" {
		subtotal := CalculateTotals(lines, nil).Subtotal
		coupon, err := s.coupons.ValidateCoupon(ctx, couponCode, subtotal)
		switch {
		case err == nil:
			quote.Coupon = coupon
			percentOff = &coupon.PercentOff
		case utils.IsKind(err, utils.KindValidation), utils.IsKind(err, utils.KindNotFound):
			var appErr *utils.AppError
			errors.As(err, &appErr)
			quote.CouponError = appErr.Message
		default:
			return nil, err
		}
	}

	quote.Totals = CalculateTotals(lines, percentOff)
	return quote, nil
}

// PlaceOrder prices the cart and records it as a pending order.
func (s *OrderService) PlaceOrder(ctx context.Context, actor Actor, req *QuoteRequest) (*models.Order, *Quote, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, nil, utils.ValidationError(validationMessage(err))
	}

	quote, err := s.QuoteCart(ctx, req.Items, req.CouponCode)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]OrderLine, 0, len(quote.Items))
	for _, item := range quote.Items {
		lines = append(lines, OrderLine{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}

	order, err := s.CreateOrder(ctx, actor.UserID, actor.Email, lines, RoundMoney(quote.Totals.Total))
	if err != nil {
		return nil, nil, err
	}
	return order, quote, nil
}

// CreateOrder writes a pending order and its items in one transaction. Either
// both are stored or neither is.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, email string, lines []OrderLine, total float64) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, utils.AuthenticationError("User not authenticated")
	}
	if len(lines) == 0 {
		return nil, utils.ValidationError("No items provided")
	}
	if total < 0 {
		return nil, utils.ValidationError("total must not be negative")
	}

	order := &models.Order{
		UserID: userID,
		Total:  total,
		Status: models.OrderStatusPending,
		Email:  email,
	}

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			if line.Quantity < 1 {
				return utils.ValidationError("quantity must be at least 1")
			}
			items = append(items, models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.UnitPrice,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		order.Items = items
		return nil
	})
	if err != nil {
		if utils.IsKind(err, utils.KindValidation) {
			return nil, err
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Order creation rolled back")
		return nil, utils.PersistenceError("Failed to create order", err)
	}

	metrics.OrdersCreated.Inc()
	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    total,
		"items":    len(lines),
	}).Info("Order created")

	s.publish(order, "", "checkout")
	return order, nil
}

// UpdateStatus moves an order along its lifecycle on behalf of the owner or an
// administrator.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req *UpdateStatusRequest, actor Actor) (*models.Order, error) {
	if req == nil || !req.Status.IsCustomerSettable() {
		return nil, utils.ValidationError("Invalid status")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationError(validationMessage(err))
	}
	if actor.UserID == uuid.Nil {
		return nil, utils.AuthenticationError("Unauthorized")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !s.authz.CanManageOrder(actor, order) {
		return nil, utils.ForbiddenError("Forbidden")
	}

	if order.Status.IsTerminal() {
		return nil, utils.ValidationError(fmt.Sprintf("order is %s and can no longer change", order.Status))
	}
	if !order.Status.CanTransitionTo(req.Status) {
		return nil, utils.ValidationError(fmt.Sprintf("cannot change status from %s to %s", order.Status, req.Status))
	}

	now := s.now().UTC()
	updates := map[string]interface{}{"status": req.Status}
	switch req.Status {
	case models.OrderStatusShipped:
		updates["shipped_at"] = now
		if req.TrackingNumber != nil && strings.TrimSpace(*req.TrackingNumber) != "" {
			updates["tracking_number"] = strings.TrimSpace(*req.TrackingNumber)
		}
	case models.OrderStatusDelivered:
		updates["delivered_at"] = now
	}

	previous := order.Status
	result := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, previous).
		Updates(updates)
	if result.Error != nil {
		return nil, utils.PersistenceError("Failed to update status", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, utils.ValidationError("order status changed concurrently, reload and retry")
	}

	updated, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusChanges.WithLabelValues(string(req.Status), "api").Inc()
	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"from":     previous,
		"to":       req.Status,
		"actor":    actor.UserID,
	}).Info("Order status updated")

	s.publish(updated, previous, "api")
	if req.Status == models.OrderStatusShipped {
		s.enqueueEmail("shipment_email", updated, s.notifications.SendShipmentNotice)
	}

	return updated, nil
}

// MarkPaid records a completed checkout. Orders no longer pending are left
// untouched and reported as not applied.
func (s *OrderService) MarkPaid(ctx context.Context, orderID uuid.UUID) (bool, error) {
	applied, err := s.settlePending(ctx, orderID, models.OrderStatusPaid)
	if err != nil || !applied {
		return applied, err
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		logrus.WithError(err).WithField("order_id", orderID).Warn("Paid order could not be reloaded for confirmation email")
		return true, nil
	}
	s.publish(order, models.OrderStatusPending, "webhook")
	s.enqueueEmail("confirmation_email", order, s.notifications.SendOrderConfirmation)
	return true, nil
}

// MarkFailed records an expired checkout.
func (s *OrderService) MarkFailed(ctx context.Context, orderID uuid.UUID) (bool, error) {
	applied, err := s.settlePending(ctx, orderID, models.OrderStatusFailed)
	if err != nil || !applied {
		return applied, err
	}

	if order, err := s.loadOrder(ctx, orderID); err == nil {
		s.publish(order, models.OrderStatusPending, "webhook")
	}
	return true, nil
}

func (s *OrderService) settlePending(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Update("status", status)
	if result.Error != nil {
		return false, utils.PersistenceError("Failed to update order", result.Error)
	}
	if result.RowsAffected == 0 {
		logrus.WithFields(logrus.Fields{
			"order_id": orderID,
			"status":   status,
		}).Info("Order not pending or unknown, ignoring payment outcome")
		return false, nil
	}

	metrics.OrderStatusChanges.WithLabelValues(string(status), "webhook").Inc()
	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   status,
	}).Info("Order payment outcome recorded")
	return true, nil
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, userID uuid.UUID, params utils.PaginationParams) ([]models.Order, error) {
	orders := []models.Order{}
	query := s.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if err := utils.ApplyPagination(query, params).Find(&orders).Error; err != nil {
		return nil, utils.PersistenceError("failed to list orders", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrderForUser(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanManageOrder(actor, order) {
		// Do not reveal that someone else's order exists.
		return nil, utils.NotFoundError("Order")
	}
	return order, nil
}

// PendingOrderForCheckout returns the caller's own order when it can still be
// paid. Orders belonging to other users are reported as missing.
func (s *OrderService) PendingOrderForCheckout(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, utils.AuthenticationError("Unauthorized")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID {
		return nil, utils.NotFoundError("Order")
	}
	if order.Status != models.OrderStatusPending {
		return nil, utils.ValidationError(fmt.Sprintf("Order is %s and cannot be paid", order.Status))
	}
	return order, nil
}

// ListAllOrders is the admin view over every order, newest first.
func (s *OrderService) ListAllOrders(ctx context.Context, status models.OrderStatus, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.PersistenceError("failed to count orders", err)
	}

	orders := []models.Order{}
	query = query.Preload("Items").Preload("Items.Product").Order("created_at DESC")
	if err := utils.ApplyPagination(query, params).Find(&orders).Error; err != nil {
		return nil, 0, utils.PersistenceError("failed to list orders", err)
	}
	return orders, total, nil
}

func (s *OrderService) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Order")
		}
		return nil, utils.PersistenceError("failed to fetch order", err)
	}
	return &order, nil
}

func (s *OrderService) publish(order *models.Order, previous models.OrderStatus, source string) {
	if s.events == nil {
		return
	}
	event := OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Previous:   previous,
		Total:      order.Total,
		Source:     source,
		OccurredAt: s.now().UTC(),
	}
	s.jobs.Submit(dispatch.Job{
		Name: "order_event",
		Run: func(ctx context.Context) error {
			return s.events.PublishOrderEvent(ctx, event)
		},
	})
}

func (s *OrderService) enqueueEmail(name string, order *models.Order, send func(context.Context, *models.Order) error) {
	if s.notifications == nil || order.Email == "" {
		return
	}
	s.jobs.Submit(dispatch.Job{
		Name: name,
		Run: func(ctx context.Context) error {
			return send(ctx, order)
		},
	})
}
