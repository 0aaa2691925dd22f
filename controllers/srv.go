// controllers/srv.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"stockwise/app"
	"stockwise/db"
	"stockwise/identity"
	"stockwise/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Srv struct {
	Repo      *db.Repo
	Ident     *identity.Service
	AppSess   *session.AppSessionStore
	Log       *zap.Logger
	WebOrigin string
	Cfg       app.Config
}

func GetSrv(a *app.App) *Srv {
	dir, err := identity.NewGormDirectory(a.DB)
	if err != nil {
		a.Log.Fatal("identity directory", zap.Error(err))
	}
	repo := db.NewRepo(a.DB)
	return &Srv{
		Repo:      repo,
		Ident:     identity.NewService(dir, repo, a.Log),
		AppSess:   session.NewAppSessionStore(a.RDB, a.Config.SessionTTL),
		Log:       a.Log,
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// --- helpers ---

// fail 统一把业务错误映射成短消息 + 状态码；非业务错误先记日志再 500
func (s *Srv) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrValidation):
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid input"})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	case errors.Is(err, db.ErrInsufficientStock):
		c.JSON(http.StatusConflict, app.H{"error": "insufficient stock"})
	case errors.Is(err, db.ErrInvalidState):
		c.JSON(http.StatusConflict, app.H{"error": "loan missing or already returned"})
	case errors.Is(err, db.ErrConflict):
		c.JSON(http.StatusConflict, app.H{"error": "product has active loans"})
	case errors.Is(err, identity.ErrProtected):
		c.JSON(http.StatusForbidden, app.H{"error": "admin account is protected"})
	case identity.IsBadCredentials(err):
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
	case identity.IsNotFound(err):
		c.JSON(http.StatusNotFound, app.H{"error": "account not found"})
	case identity.IsExists(err):
		c.JSON(http.StatusConflict, app.H{"error": "account already exists"})
	default:
		s.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// 登录成功：创建会话 + 种 Cookie
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userUID string) error {
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, userUID); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.Cfg.SessionTTL)
	return nil
}
