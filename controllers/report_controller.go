package controllers

import (
	"net/http"

	"stockwise/report"

	"github.com/gin-gonic/gin"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

// GET /api/reports/summary — 取数在这里，分层归类在 report 包里纯算
func (rc *ReportController) Summary(c *gin.Context) {
	products, err := rc.Repo.AllProducts(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	loans, err := rc.Repo.ActiveLoans(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report.Generate(products, loans))
}
