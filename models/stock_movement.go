// models/stock_movement.go
package models

import "time"

const StockMovementTable = "sw_stock_movements"

// 库存流水类型
const (
	MovementTypeLoan      = "loan"
	MovementTypeReturn    = "return"
	MovementTypeDeduction = "deduction"
	MovementTypeRestock   = "restock"
)

// StockMovement 只追加的审计流水，创建后不改不删
type StockMovement struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID   string    `gorm:"type:uuid;index;not null" json:"productId"`
	ProductName string    `gorm:"size:200;not null" json:"productName"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Type        string    `gorm:"size:20;index;not null" json:"type"`
	Reason      string    `gorm:"size:255" json:"reason,omitempty"`
	Date        time.Time `gorm:"index;not null" json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (StockMovement) TableName() string { return StockMovementTable }
