package main

import (
	"context"
	"log"
	"os"
	"time"

	"stockwise/app"
	"stockwise/controllers"
	"stockwise/routes"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	application := app.MustNew()
	defer application.Close()

	s := controllers.GetSrv(application)

	// 种子账号：幂等，重启多少次都收敛到同一终态
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := s.Ident.EnsureSeedUsers(ctx); err != nil {
		cancel()
		log.Fatalf("seed users: %v", err)
	}
	cancel()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application, s)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
