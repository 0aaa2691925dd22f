// models/product.go
package models

import "time"

const ProductTable = "sw_products"

type Product struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	Category     string    `gorm:"size:120;index" json:"category"`
	Location     string    `gorm:"size:120" json:"location"`
	Quantity     int       `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	ReorderPoint int       `gorm:"not null;default:0" json:"reorderPoint"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return ProductTable }
