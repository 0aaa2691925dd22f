// models/loan.go
package models

import "time"

const LoanTable = "sw_loans"

// 借出状态只有两个：LOANED → RETURNED，终态不可逆
const (
	LoanStatusLoaned   = "LOANED"
	LoanStatusReturned = "RETURNED"
)

type Loan struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID   string     `gorm:"type:uuid;index;not null" json:"productId"`
	ProductName string     `gorm:"size:200;not null" json:"productName"` // 冗余列：产品删除后仍可读
	Requester   string     `gorm:"size:200;not null" json:"requester"`
	Quantity    int        `gorm:"not null" json:"quantity"`
	Status      string     `gorm:"size:20;index;not null;default:'LOANED'" json:"status"`
	LoanDate    time.Time  `gorm:"index;not null" json:"loanDate"`
	ReturnDate  *time.Time `json:"returnDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Loan) TableName() string { return LoanTable }
