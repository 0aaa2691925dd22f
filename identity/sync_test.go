package identity

import (
	"context"
	"path/filepath"
	"testing"

	"stockwise/db"
	"stockwise/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "stockwise.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	dir, err := NewGormDirectory(conn)
	require.NoError(t, err)
	repo := db.NewRepo(conn)
	return NewService(dir, repo, zap.NewNop()), conn
}

func TestEnsureSeedUsersIsIdempotent(t *testing.T) {
	s, conn := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureSeedUsers(ctx))
	require.NoError(t, s.EnsureSeedUsers(ctx))

	// 目录侧恰好一个 admin 账号
	var accounts int64
	require.NoError(t, conn.Model(&Account{}).Where("email = ?", "admin@decd.local").Count(&accounts).Error)
	assert.EqualValues(t, 1, accounts)

	// 档案侧恰好一个 admin
	n, err := s.Repo.CountAdmins(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	admin, err := s.Repo.FindUserByUsername(ctx, models.AdminUsername)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.ElementsMatch(t, models.AllPermissions(), admin.Permissions)
}

func TestEnsureSeedUsersResetsClaimButKeepsProfileEdits(t *testing.T) {
	s, conn := newTestService(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureSeedUsers(ctx))

	u, err := s.Repo.FindUserByUsername(ctx, "warehouse")
	require.NoError(t, err)

	// 用户自己改过的档案字段不能被种子覆盖
	u.Name = "Warehouse (Building B)"
	require.NoError(t, s.Repo.SaveUser(ctx, u))

	// claim 被人动过要被无条件重设
	require.NoError(t, conn.Model(&Account{}).Where("uid = ?", u.UID).Update("claim", "admin").Error)

	require.NoError(t, s.EnsureSeedUsers(ctx))

	again, err := s.Repo.FindUserByUID(ctx, u.UID)
	require.NoError(t, err)
	assert.Equal(t, "Warehouse (Building B)", again.Name)

	var acc Account
	require.NoError(t, conn.First(&acc, "uid = ?", u.UID).Error)
	assert.Equal(t, models.RoleUser, acc.Claim)
}

func TestEnsureSeedUsersSurvivesRecreatedDirectoryAccount(t *testing.T) {
	s, conn := newTestService(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureSeedUsers(ctx))

	// 目录账号被删掉重建：新 UID，老档案（同邮箱）还在
	require.NoError(t, conn.Delete(&Account{}, "email = ?", "warehouse@decd.local").Error)

	require.NoError(t, s.EnsureSeedUsers(ctx))

	// 不会因 email 唯一索引炸掉，也不会多出第二份档案
	var profiles int64
	require.NoError(t, conn.Model(&models.User{}).Where("email = ?", "warehouse@decd.local").Count(&profiles).Error)
	assert.EqualValues(t, 1, profiles)
}

func TestLogin(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureSeedUsers(ctx))

	u, err := s.Login(ctx, "admin@decd.local", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.AdminUsername, u.Username)

	_, err = s.Login(ctx, "admin@decd.local", "wrong")
	assert.True(t, IsBadCredentials(err))
	_, err = s.Login(ctx, "nobody@decd.local", "admin123")
	assert.True(t, IsBadCredentials(err))
}

func TestCreateUserAndDuplicate(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, NewUser{
		Email:       "maria@decd.local",
		Password:    "secret123",
		Username:    "maria",
		Name:        "Maria Souza",
		Permissions: []string{"dashboard", "loans"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)

	_, err = s.CreateUser(ctx, NewUser{
		Email:    "maria@decd.local",
		Password: "secret123",
		Username: "maria2",
		Name:     "Maria Souza",
	})
	assert.True(t, IsExists(err))
}

func TestUpdateUserPartial(t *testing.T) {
	s, conn := newTestService(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, NewUser{
		Email:       "maria@decd.local",
		Password:    "secret123",
		Username:    "maria",
		Name:        "Maria Souza",
		Permissions: []string{"dashboard"},
	})
	require.NoError(t, err)

	// 只改 name：role/permissions 不动，displayName 镜像到目录
	name := "Maria S. Lima"
	got, err := s.UpdateUser(ctx, u.UID, UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.Equal(t, []string{"dashboard"}, got.Permissions)

	var acc Account
	require.NoError(t, conn.First(&acc, "uid = ?", u.UID).Error)
	assert.Equal(t, name, acc.DisplayName)

	// role 设成 admin：强制全量权限，claim 镜像，无视传入的 permissions
	role := models.RoleAdmin
	got, err = s.UpdateUser(ctx, u.UID, UserUpdate{Role: &role, Permissions: []string{"loans"}})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.ElementsMatch(t, models.AllPermissions(), got.Permissions)

	require.NoError(t, conn.First(&acc, "uid = ?", u.UID).Error)
	assert.Equal(t, models.RoleAdmin, acc.Claim)
}

func TestUpdateUserRejectsBadRole(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, NewUser{
		Email: "maria@decd.local", Password: "secret123", Username: "maria", Name: "Maria",
	})
	require.NoError(t, err)

	bad := "superuser"
	_, err = s.UpdateUser(ctx, u.UID, UserUpdate{Role: &bad})
	require.ErrorIs(t, err, db.ErrValidation)
}

func TestAdminAccountIsProtected(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureSeedUsers(ctx))

	admin, err := s.Repo.FindUserByUsername(ctx, models.AdminUsername)
	require.NoError(t, err)

	name := "Haxor"
	_, err = s.UpdateUser(ctx, admin.UID, UserUpdate{Name: &name})
	require.ErrorIs(t, err, ErrProtected)
	require.ErrorIs(t, s.DeleteUser(ctx, admin.UID), ErrProtected)
}

func TestDeleteUserRemovesProfileAndIdentity(t *testing.T) {
	s, conn := newTestService(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, NewUser{
		Email: "maria@decd.local", Password: "secret123", Username: "maria", Name: "Maria",
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, u.UID))

	_, err = s.Repo.FindUserByUID(ctx, u.UID)
	require.ErrorIs(t, err, db.ErrNotFound)
	_, err = s.Dir.GetUserByEmail(ctx, "maria@decd.local")
	assert.True(t, IsNotFound(err))

	var accounts int64
	require.NoError(t, conn.Model(&Account{}).Count(&accounts).Error)
	assert.Zero(t, accounts)
}
