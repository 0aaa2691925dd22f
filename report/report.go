// Package report classifies products into stock tiers and summarizes active
// loans. Pure and deterministic: no I/O, output order follows input order.
package report

import (
	"fmt"

	"stockwise/models"
)

type StockAlerts struct {
	Critical []models.Product `json:"critical"`
	Low      []models.Product `json:"low"`
}

type Report struct {
	GeneralSummary string           `json:"generalSummary"`
	StockAlerts    StockAlerts      `json:"stockAlerts"`
	InStock        []models.Product `json:"inStock"`
	ActiveLoans    []models.Loan    `json:"activeLoans"`
}

// Generate 分层规则按序判定，先命中先归类：
//  1. quantity == 0 → critical
//  2. 0 < quantity <= reorderPoint → low
//  3. 其余 → inStock
//
// loans 由调用方先过滤到 status=LOANED。
func Generate(products []models.Product, loans []models.Loan) Report {
	r := Report{
		StockAlerts: StockAlerts{
			Critical: []models.Product{},
			Low:      []models.Product{},
		},
		InStock:     []models.Product{},
		ActiveLoans: loans,
	}
	if r.ActiveLoans == nil {
		r.ActiveLoans = []models.Loan{}
	}

	for _, p := range products {
		switch {
		case p.Quantity == 0:
			r.StockAlerts.Critical = append(r.StockAlerts.Critical, p)
		case p.Quantity <= p.ReorderPoint:
			r.StockAlerts.Low = append(r.StockAlerts.Low, p)
		default:
			r.InStock = append(r.InStock, p)
		}
	}

	r.GeneralSummary = fmt.Sprintf(
		"Inventory of %d products: %d out of stock, %d below reorder point, %d in stock; %d active loans.",
		len(products),
		len(r.StockAlerts.Critical),
		len(r.StockAlerts.Low),
		len(r.InStock),
		len(r.ActiveLoans),
	)
	return r
}
