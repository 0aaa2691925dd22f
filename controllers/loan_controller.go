// controllers/loan_controller.go
package controllers

import (
	"net/http"
	"time"

	"stockwise/app"

	"github.com/gin-gonic/gin"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// POST /api/loans — 借出
func (lc *LoanController) LoanOut(c *gin.Context) {
	var in struct {
		ProductID string     `json:"productId" binding:"required"`
		Quantity  int        `json:"quantity" binding:"required,min=1"`
		Requester string     `json:"requester" binding:"required"`
		LoanDate  *time.Time `json:"loanDate"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	loanDate := time.Now().UTC()
	if in.LoanDate != nil {
		loanDate = *in.LoanDate
	}

	loan, err := lc.Repo.LoanOut(c.Request.Context(), in.ProductID, in.Quantity, in.Requester, loanDate)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, loan)
}

// POST /api/loans/:id/return — 归还；重复归还是错误不是空操作
func (lc *LoanController) Return(c *gin.Context) {
	loanID := c.Param("id")
	if loanID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing loan id"})
		return
	}
	loan, err := lc.Repo.ReturnLoan(c.Request.Context(), loanID)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

// GET /api/loans/:id
func (lc *LoanController) Get(c *gin.Context) {
	l, err := lc.Repo.FindLoanByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// GET /api/loans?status=loaned|returned&productId=&requester=
func (lc *LoanController) List(c *gin.Context) {
	ls, err := lc.Repo.ListLoans(
		c.Request.Context(),
		c.Query("productId"),
		c.Query("requester"),
		c.Query("status"),
	)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"loans": ls})
}
