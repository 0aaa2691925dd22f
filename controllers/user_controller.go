package controllers

import (
	"net/http"
	"strconv"

	"stockwise/app"
	"stockwise/identity"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) List(c *gin.Context) {
	q := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Repo.ListUsers(c.Request.Context(), q, page, size)
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "users": res.Users})
}

// GET /api/users/:id
func (uc *UserController) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	u, err := uc.Repo.FindUserByUID(c.Request.Context(), id)
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// POST /api/users — 管理员建号：目录建身份 + claim + 档案
func (uc *UserController) Create(c *gin.Context) {
	var in struct {
		Email       string   `json:"email" binding:"required,email"`
		Password    string   `json:"password" binding:"required,min=8"`
		Username    string   `json:"username" binding:"required"`
		Name        string   `json:"name" binding:"required"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := uc.Ident.CreateUser(c.Request.Context(), identity.NewUser{
		Email:       in.Email,
		Password:    in.Password,
		Username:    in.Username,
		Name:        in.Name,
		Role:        in.Role,
		Permissions: in.Permissions,
	})
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"user": u})
}

// PATCH /api/users/:id — 选择性更新；role=admin 强制全量权限
func (uc *UserController) Update(c *gin.Context) {
	var in identity.UserUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	u, err := uc.Ident.UpdateUser(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// DELETE /api/users/:id
func (uc *UserController) Delete(c *gin.Context) {
	id := c.Param("id")

	// 不允许删除自己，避免锁死
	if v, ok := c.Get("userUID"); ok {
		if uid, _ := v.(string); uid == id {
			c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
			return
		}
	}

	if err := uc.Ident.DeleteUser(c.Request.Context(), id); err != nil {
		uc.fail(c, err)
		return
	}
	// 撤销该用户全部登录会话
	_ = uc.AppSess.RevokeAllForUser(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
