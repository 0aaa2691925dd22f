// db/repo_loan.go
package db

import (
	"context"
	"errors"

	"stockwise/models"

	"gorm.io/gorm"
)

func (r *Repo) FindLoanByID(ctx context.Context, id string) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *Repo) ListLoans(ctx context.Context, productID, requester, status string) ([]models.Loan, error) {
	q := r.DB.WithContext(ctx).Model(&models.Loan{}).Order("loan_date DESC")
	if productID != "" {
		q = q.Where("product_id = ?", productID)
	}
	if requester != "" {
		q = q.Where("requester = ?", requester)
	}
	switch status {
	case "loaned":
		q = q.Where("status = ?", models.LoanStatusLoaned)
	case "returned":
		q = q.Where("status = ?", models.LoanStatusReturned)
	}
	var ls []models.Loan
	if err := q.Find(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}

// ActiveLoans 报表用：全部未归还借出，按借出时间稳定排序
func (r *Repo) ActiveLoans(ctx context.Context) ([]models.Loan, error) {
	var ls []models.Loan
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.LoanStatusLoaned).
		Order("loan_date ASC").
		Find(&ls).Error
	return ls, err
}
