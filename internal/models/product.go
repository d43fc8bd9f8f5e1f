// internal/models/product.go
package models

import (
	"github.com/google/uuid"
)

type Category struct {
	BaseModel
	Name string `json:"name" gorm:"size:100;not null;uniqueIndex"`
}

type Product struct {
	BaseModel
	Name          string     `json:"name" gorm:"size:255;not null;index"`
	Description   *string    `json:"description" gorm:"type:text"`
	Price         float64    `json:"price" gorm:"type:decimal(10,2);not null;index"`
	StockQuantity int        `json:"stock_quantity" gorm:"not null;default:0"`
	CategoryID    *uuid.UUID `json:"category_id" gorm:"type:uuid;index"`
	ImageURL      *string    `json:"image_url" gorm:"size:1024"`

	// Relationships
	Category *Category `json:"categories,omitempty" gorm:"foreignKey:CategoryID"`
}
