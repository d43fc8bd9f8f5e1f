// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	UserID         uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	Total          float64     `json:"total" gorm:"type:decimal(10,2);not null"`
	Status         OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Email          string      `json:"email" gorm:"size:255"`
	TrackingNumber *string     `json:"tracking_number" gorm:"size:128"`
	ShippedAt      *time.Time  `json:"shipped_at"`
	DeliveredAt    *time.Time  `json:"delivered_at"`

	// Relationships
	Items []OrderItem `json:"order_items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem captures the unit price at order time; it is never updated.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`

	Product *Product `json:"products,omitempty" gorm:"foreignKey:ProductID"`
}

// ShortID is the human facing order reference used in emails.
func (o *Order) ShortID() string {
	return o.ID.String()[:8]
}
