// db/repo_ledger.go
package db

import (
	"context"
	"errors"
	"time"

	"stockwise/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 台账操作：每次多文档变更都在一个事务里完成（扣/加数量 + 借出/流水记录），
// 数量校验在事务内重新用守卫式 UPDATE 做，不依赖事务外的快照。
// 业务错误返回即整体回滚。

// LoanOut 借出：扣库存 → 建 Loan → 写流水
func (r *Repo) LoanOut(ctx context.Context, productID string, qty int, requester string, loanDate time.Time) (*models.Loan, error) {
	if qty <= 0 || requester == "" {
		return nil, ErrValidation
	}
	if loanDate.IsZero() {
		loanDate = time.Now().UTC()
	}

	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// 守卫式扣减：数量不够就一行不动
		res := tx.Model(&models.Product{}).
			Where("id = ? AND quantity >= ?", productID, qty).
			Update("quantity", gorm.Expr("quantity - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		l := &models.Loan{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Requester:   requester,
			Quantity:    qty,
			Status:      models.LoanStatusLoaned,
			LoanDate:    loanDate,
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}

		mv := &models.StockMovement{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    qty,
			Type:        models.MovementTypeLoan,
			Reason:      "loaned to " + requester,
			Date:        loanDate,
		}
		if err := tx.Create(mv).Error; err != nil {
			return err
		}

		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// ReturnLoan 归还：LOANED → RETURNED 只发生一次，靠守卫式状态翻转防并发重复归还。
// 产品此时可能已被删除：跳过加库存，但归还本身照常成功。
func (r *Repo) ReturnLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	var loan models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&loan, "id = ?", loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidState
			}
			return err
		}
		if loan.Status == models.LoanStatusReturned {
			return ErrInvalidState
		}

		now := time.Now().UTC()
		res := tx.Model(&models.Loan{}).
			Where("id = ? AND status = ?", loanID, models.LoanStatusLoaned).
			Updates(map[string]any{"status": models.LoanStatusReturned, "return_date": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidState
		}

		if err := tx.Model(&models.Product{}).
			Where("id = ?", loan.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", loan.Quantity)).Error; err != nil {
			return err
		}

		mv := &models.StockMovement{
			ID:          uuid.NewString(),
			ProductID:   loan.ProductID,
			ProductName: loan.ProductName,
			Quantity:    loan.Quantity,
			Type:        models.MovementTypeReturn,
			Reason:      "returned by " + loan.Requester,
			Date:        now,
		}
		if err := tx.Create(mv).Error; err != nil {
			return err
		}

		loan.Status = models.LoanStatusReturned
		loan.ReturnDate = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// AdjustStock 手工扣减（报损、领用等），附带原因写入流水
func (r *Repo) AdjustStock(ctx context.Context, productID string, qty int, reason string) error {
	if qty <= 0 {
		return ErrValidation
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		res := tx.Model(&models.Product{}).
			Where("id = ? AND quantity >= ?", productID, qty).
			Update("quantity", gorm.Expr("quantity - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		return tx.Create(&models.StockMovement{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    qty,
			Type:        models.MovementTypeDeduction,
			Reason:      reason,
			Date:        time.Now().UTC(),
		}).Error
	})
}

// RestockProduct 入库补货
func (r *Repo) RestockProduct(ctx context.Context, productID string, qty int, reason string) error {
	if qty <= 0 {
		return ErrValidation
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&models.Product{}).
			Where("id = ?", productID).
			Update("quantity", gorm.Expr("quantity + ?", qty)).Error; err != nil {
			return err
		}

		return tx.Create(&models.StockMovement{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    qty,
			Type:        models.MovementTypeRestock,
			Reason:      reason,
			Date:        time.Now().UTC(),
		}).Error
	})
}

// DeleteProduct 删除产品；有未归还借出时拒绝。
// 历史流水和已归还的 Loan 保留，作为孤儿但有效的历史。
func (r *Repo) DeleteProduct(ctx context.Context, productID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Loan{}).
			Where("product_id = ? AND status = ?", productID, models.LoanStatusLoaned).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}

		res := tx.Delete(&models.Product{}, "id = ?", productID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
