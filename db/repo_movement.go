// db/repo_movement.go
package db

import (
	"context"

	"stockwise/models"
)

// 流水只在台账事务里写（见 repo_ledger.go），这里只有查询。

type MovementsQuery struct {
	ProductID string
	Type      string // "", loan, return, deduction, restock
	Page      int
	Size      int
}

type PagedMovements struct {
	Total     int64                  `json:"total"`
	Movements []models.StockMovement `json:"movements"`
}

func (r *Repo) ListMovements(ctx context.Context, q MovementsQuery) (*PagedMovements, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 50
	}

	tx := r.DB.WithContext(ctx).Model(&models.StockMovement{})
	if q.ProductID != "" {
		tx = tx.Where("product_id = ?", q.ProductID)
	}
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var ms []models.StockMovement
	if err := tx.
		Order("date DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return &PagedMovements{Total: total, Movements: ms}, nil
}
