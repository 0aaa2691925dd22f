// identity/sync.go
package identity

import (
	"context"
	"errors"
	"strings"

	"stockwise/db"
	"stockwise/models"

	"go.uber.org/zap"
)

// ErrProtected 固定 admin 账号不走管理流程改或删
var ErrProtected = errors.New("admin account cannot be modified")

// Service 把目录（认证侧）和档案（业务侧）的同步逻辑拢在一起
type Service struct {
	Dir  Directory
	Repo *db.Repo
	Log  *zap.Logger
}

func NewService(dir Directory, repo *db.Repo, log *zap.Logger) *Service {
	return &Service{Dir: dir, Repo: repo, Log: log}
}

// SeedUser 种子账号定义
type SeedUser struct {
	Email       string
	Password    string
	Username    string
	Name        string
	Role        string
	Permissions []string
}

// SeedUsers 首次启动的固定账号；重复执行收敛到同一终态
func SeedUsers() []SeedUser {
	return []SeedUser{
		{
			Email:       "admin@decd.local",
			Password:    "admin123",
			Username:    models.AdminUsername,
			Name:        "Administrator",
			Role:        models.RoleAdmin,
			Permissions: models.AllPermissions(),
		},
		{
			Email:       "warehouse@decd.local",
			Password:    "warehouse123",
			Username:    "warehouse",
			Name:        "Warehouse Desk",
			Role:        models.RoleUser,
			Permissions: []string{"dashboard", "inventory", "loans"},
		},
		{
			Email:       "frontdesk@decd.local",
			Password:    "frontdesk123",
			Username:    "frontdesk",
			Name:        "Front Desk",
			Role:        models.RoleUser,
			Permissions: []string{"dashboard", "loans"},
		},
	}
}

// EnsureSeedUsers 每个种子账号：按邮箱查目录，缺了就建；claim 无条件重设；
// 档案只在不存在时创建，绝不覆盖用户自己改过的字段。
func (s *Service) EnsureSeedUsers(ctx context.Context) error {
	for _, seed := range SeedUsers() {
		rec, err := s.Dir.GetUserByEmail(ctx, seed.Email)
		if IsNotFound(err) {
			rec, err = s.Dir.CreateUser(ctx, seed.Email, seed.Password, seed.Name)
		}
		if err != nil {
			return err
		}

		if err := s.Dir.SetCustomClaim(ctx, rec.UID, seed.Role); err != nil {
			return err
		}

		_, err = s.Repo.FindUserByUID(ctx, rec.UID)
		if errors.Is(err, db.ErrNotFound) {
			// 目录账号重建过的话 UID 会变；档案按邮箱兜底，不撞 email 唯一索引
			_, byEmail := s.Repo.FindUserByEmail(ctx, seed.Email)
			switch {
			case byEmail == nil:
				s.Log.Warn("seed profile exists under a different uid", zap.String("email", seed.Email))
				err = nil
			case errors.Is(byEmail, db.ErrNotFound):
				err = s.Repo.CreateUser(ctx, &models.User{
					UID:         rec.UID,
					Username:    seed.Username,
					Name:        seed.Name,
					Email:       strings.ToLower(seed.Email),
					Role:        seed.Role,
					Permissions: seed.Permissions,
				})
			default:
				err = byEmail
			}
		}
		if err != nil {
			return err
		}
		s.Log.Info("seed user ensured", zap.String("email", seed.Email))
	}
	return nil
}

// NewUser 管理员手工建号
type NewUser struct {
	Email       string
	Password    string
	Username    string
	Name        string
	Role        string
	Permissions []string
}

func (s *Service) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if in.Role != models.RoleAdmin && in.Role != models.RoleUser {
		return nil, db.ErrValidation
	}
	if in.Role == models.RoleAdmin {
		in.Permissions = models.AllPermissions()
	}

	rec, err := s.Dir.CreateUser(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		return nil, err
	}
	if err := s.Dir.SetCustomClaim(ctx, rec.UID, in.Role); err != nil {
		return nil, err
	}

	u := &models.User{
		UID:         rec.UID,
		Username:    in.Username,
		Name:        in.Name,
		Email:       strings.ToLower(in.Email),
		Role:        in.Role,
		Permissions: in.Permissions,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UserUpdate 档案可改字段；nil 表示不动
type UserUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Role        *string  `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// UpdateUser 选择性更新档案，并把 name→displayName、role→claim 镜像到目录。
// role 设成 admin 时强制给全量权限，无视传入的 permissions。
func (s *Service) UpdateUser(ctx context.Context, uid string, upd UserUpdate) (*models.User, error) {
	target, err := s.Repo.FindUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if target.Username == models.AdminUsername {
		return nil, ErrProtected
	}

	if upd.Role != nil && *upd.Role != models.RoleAdmin && *upd.Role != models.RoleUser {
		return nil, db.ErrValidation
	}

	if upd.Name != nil {
		target.Name = *upd.Name
	}
	if upd.Role != nil {
		target.Role = *upd.Role
	}
	if upd.Permissions != nil {
		target.Permissions = upd.Permissions
	}
	if target.Role == models.RoleAdmin {
		target.Permissions = models.AllPermissions()
	}

	if err := s.Repo.SaveUser(ctx, target); err != nil {
		return nil, err
	}

	if upd.Name != nil {
		if err := s.Dir.UpdateUser(ctx, uid, AccountUpdate{DisplayName: upd.Name}); err != nil {
			return nil, err
		}
	}
	if upd.Role != nil {
		if err := s.Dir.SetCustomClaim(ctx, uid, *upd.Role); err != nil {
			return nil, err
		}
	}

	return s.Repo.FindUserByUID(ctx, uid)
}

// DeleteUser 先删档案；目录身份删除是 best-effort，失败只记日志
func (s *Service) DeleteUser(ctx context.Context, uid string) error {
	target, err := s.Repo.FindUserByUID(ctx, uid)
	if err != nil {
		return err
	}
	if target.Username == models.AdminUsername {
		return ErrProtected
	}

	if err := s.Repo.DeleteUserByUID(ctx, uid); err != nil {
		return err
	}
	if err := s.Dir.DeleteUser(ctx, uid); err != nil && !IsNotFound(err) {
		s.Log.Warn("directory identity delete failed", zap.String("uid", uid), zap.Error(err))
	}
	return nil
}

// Login 校验口令并取回档案
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	rec, err := s.Dir.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindUserByUID(ctx, rec.UID)
}
