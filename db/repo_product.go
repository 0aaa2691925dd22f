// db/repo_product.go
package db

import (
	"context"
	"errors"
	"strings"

	"stockwise/models"

	"gorm.io/gorm"
)

// Products — 数量列不在这里改，走 repo_ledger.go 的事务操作

func (r *Repo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repo) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

type ProductsQuery struct {
	Q        string // 模糊搜索：name/location
	Category string
	Page     int
	Size     int
}

type PagedProducts struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"products"`
}

func (r *Repo) ListProducts(ctx context.Context, q ProductsQuery) (*PagedProducts, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 50
	}

	tx := r.DB.WithContext(ctx).Model(&models.Product{})
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(location) LIKE ?", pat, pat)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var products []models.Product
	if err := tx.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return &PagedProducts{Total: total, Products: products}, nil
}

// AllProducts 报表用：全量、稳定排序
func (r *Repo) AllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&products).Error
	return products, err
}

// ProductUpdate 枚举可改的元数据列；nil 表示不动
type ProductUpdate struct {
	Name         *string `json:"name,omitempty"`
	Category     *string `json:"category,omitempty"`
	Location     *string `json:"location,omitempty"`
	ReorderPoint *int    `json:"reorderPoint,omitempty"`
}

func (u ProductUpdate) changes() map[string]any {
	m := map[string]any{}
	if u.Name != nil {
		m["name"] = *u.Name
	}
	if u.Category != nil {
		m["category"] = *u.Category
	}
	if u.Location != nil {
		m["location"] = *u.Location
	}
	if u.ReorderPoint != nil {
		m["reorder_point"] = *u.ReorderPoint
	}
	return m
}

func (r *Repo) UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*models.Product, error) {
	if upd.ReorderPoint != nil && *upd.ReorderPoint < 0 {
		return nil, ErrValidation
	}
	ch := upd.changes()
	if len(ch) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", id).
			Updates(ch)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.FindProductByID(ctx, id)
}
