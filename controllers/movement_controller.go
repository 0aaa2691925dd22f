package controllers

import (
	"net/http"
	"strconv"

	"stockwise/db"

	"github.com/gin-gonic/gin"
)

type MovementController struct{ *Srv }

func NewMovementController(s *Srv) *MovementController { return &MovementController{Srv: s} }

// GET /api/movements?productId=&type=&page=&size=
func (mc *MovementController) List(c *gin.Context) {
	q := db.MovementsQuery{
		ProductID: c.Query("productId"),
		Type:      c.Query("type"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "50"))

	res, err := mc.Repo.ListMovements(c.Request.Context(), q)
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
