package routes

import (
	"time"

	"stockwise/app"
	"stockwise/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App, s *controllers.Srv) {
	// 控制器与依赖
	authCtl := controllers.NewAuthController(s)
	productCtl := controllers.NewProductController(s)
	loanCtl := controllers.NewLoanController(s)
	movementCtl := controllers.NewMovementController(s)
	reportCtl := controllers.NewReportController(s)
	userCtl := controllers.NewUserController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// 登录/登出（公开+受保护）
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authCtl.Login)
	}
	authed := auth.Group("", authMW, seenMW)
	{
		authed.POST("/logout", authCtl.Logout)
		authed.GET("/whoami", authCtl.WhoAmI)
	}

	// ------------------------------
	// 产品（inventory 权限；删除仅管理员）
	// ------------------------------
	products := r.Group("/api/products", authMW, seenMW, app.PermissionRequired("inventory"))
	{
		products.GET("", productCtl.List)
		products.GET("/:id", productCtl.Get)
		products.POST("", productCtl.Create)
		products.PUT("/:id", productCtl.Update)
		products.POST("/:id/adjust", productCtl.Adjust)
		products.POST("/:id/restock", productCtl.Restock)
	}
	r.DELETE("/api/products/:id", authMW, seenMW, adminMW, productCtl.Delete)

	// ------------------------------
	// 借还
	// ------------------------------
	loans := r.Group("/api/loans", authMW, seenMW, app.PermissionRequired("loans"))
	{
		loans.GET("", loanCtl.List)
		loans.GET("/:id", loanCtl.Get)
		loans.POST("", loanCtl.LoanOut)
		loans.POST("/:id/return", loanCtl.Return)
	}

	// ------------------------------
	// 审计流水 + 报表
	// ------------------------------
	movements := r.Group("/api/movements", authMW, seenMW, app.PermissionRequired("inventory"))
	{
		movements.GET("", movementCtl.List)
	}
	reports := r.Group("/api/reports", authMW, seenMW, app.PermissionRequired("reports"))
	{
		reports.GET("/summary", reportCtl.Summary)
	}

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", userCtl.List)
		users.GET("/:id", userCtl.Get)
		users.POST("", userCtl.Create)
		users.PATCH("/:id", userCtl.Update)
		users.DELETE("/:id", userCtl.Delete)
	}
}
