// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Products & categories
	KeyProductCreated   = "product.created"
	KeyProductUpdated   = "product.updated"
	KeyProductDeleted   = "product.deleted"
	KeyProductNotFound  = "product.not_found"
	KeyCategoryCreated  = "category.created"
	KeyImageUploaded    = "product.image_uploaded"
	KeyImageUploadError = "product.image_upload_failed"

	// Coupons
	KeyCouponCreated  = "coupon.created"
	KeyCouponUpdated  = "coupon.updated"
	KeyCouponDeleted  = "coupon.deleted"
	KeyCouponNotFound = "coupon.not_found"

	// Orders
	KeyOrderCreated  = "order.created"
	KeyOrderNotFound = "order.not_found"

	// Payments
	KeyWebhookInvalid = "payment.webhook_invalid"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Generic
	KeyInternalError = "error.internal"
	KeyRateLimited   = "error.rate_limited"
)
