// controllers/product_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"stockwise/app"
	"stockwise/db"
	"stockwise/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductController struct{ *Srv }

func NewProductController(s *Srv) *ProductController { return &ProductController{Srv: s} }

// POST /api/products
func (pc *ProductController) Create(c *gin.Context) {
	var in struct {
		Name         string `json:"name" binding:"required"`
		Category     string `json:"category"`
		Location     string `json:"location"`
		Quantity     int    `json:"quantity" binding:"min=0"`
		ReorderPoint int    `json:"reorderPoint" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	p := &models.Product{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Category:     in.Category,
		Location:     in.Location,
		Quantity:     in.Quantity,
		ReorderPoint: in.ReorderPoint,
	}
	if err := pc.Repo.CreateProduct(c.Request.Context(), p); err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GET /api/products?q=&category=&page=&size=
func (pc *ProductController) List(c *gin.Context) {
	q := db.ProductsQuery{
		Q:        c.Query("q"),
		Category: c.Query("category"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "50"))

	res, err := pc.Repo.ListProducts(c.Request.Context(), q)
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/products/:id
func (pc *ProductController) Get(c *gin.Context) {
	p, err := pc.Repo.FindProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PUT /api/products/:id — 只改元数据，数量走台账操作
func (pc *ProductController) Update(c *gin.Context) {
	var in db.ProductUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	p, err := pc.Repo.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DELETE /api/products/:id — 有未归还借出时 409
func (pc *ProductController) Delete(c *gin.Context) {
	if err := pc.Repo.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/products/:id/adjust — 手工扣减 + 审计流水
func (pc *ProductController) Adjust(c *gin.Context) {
	var in struct {
		Quantity int    `json:"quantity" binding:"required,min=1"`
		Reason   string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := pc.Repo.AdjustStock(c.Request.Context(), c.Param("id"), in.Quantity, in.Reason); err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/products/:id/restock
func (pc *ProductController) Restock(c *gin.Context) {
	var in struct {
		Quantity int    `json:"quantity" binding:"required,min=1"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := pc.Repo.RestockProduct(c.Request.Context(), c.Param("id"), in.Quantity, in.Reason); err != nil {
		pc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
