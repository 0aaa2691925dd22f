// identity/gorm_directory.go
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const accountTable = "sw_accounts"

// Account 目录侧的账号行；口令只存 bcrypt 散列
type Account struct {
	UID          string `gorm:"primaryKey;type:uuid"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash []byte `gorm:"not null"`
	DisplayName  string `gorm:"size:255"`
	Claim        string `gorm:"size:20"`
	Disabled     bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Account) TableName() string { return accountTable }

// GormDirectory 用本地 accounts 表充当托管认证服务
type GormDirectory struct{ DB *gorm.DB }

func NewGormDirectory(db *gorm.DB) (*GormDirectory, error) {
	if err := db.AutoMigrate(&Account{}); err != nil {
		return nil, err
	}
	return &GormDirectory{DB: db}, nil
}

func (a *Account) record() *UserRecord {
	return &UserRecord{
		UID:         a.UID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Claim:       a.Claim,
		Disabled:    a.Disabled,
	}
}

func (d *GormDirectory) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	var acc Account
	err := d.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &Error{Kind: KindNotFound, Op: "get user by email"}
	}
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Op: "get user by email", Err: err}
	}
	return acc.record(), nil
}

func (d *GormDirectory) CreateUser(ctx context.Context, email, password, displayName string) (*UserRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Op: "hash password", Err: err}
	}
	addr := strings.ToLower(email)
	var n int64
	if err := d.DB.WithContext(ctx).Model(&Account{}).Where("email = ?", addr).Count(&n).Error; err != nil {
		return nil, &Error{Kind: KindUnavailable, Op: "create user", Err: err}
	}
	if n > 0 {
		return nil, &Error{Kind: KindExists, Op: "create user"}
	}
	acc := Account{
		UID:          uuid.NewString(),
		Email:        addr,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err := d.DB.WithContext(ctx).Create(&acc).Error; err != nil {
		return nil, &Error{Kind: KindUnavailable, Op: "create user", Err: err}
	}
	return acc.record(), nil
}

func (d *GormDirectory) UpdateUser(ctx context.Context, uid string, upd AccountUpdate) error {
	fields := map[string]any{}
	if upd.DisplayName != nil {
		fields["display_name"] = *upd.DisplayName
	}
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return &Error{Kind: KindUnknown, Op: "hash password", Err: err}
		}
		fields["password_hash"] = hash
	}
	if upd.Disabled != nil {
		fields["disabled"] = *upd.Disabled
	}
	if len(fields) == 0 {
		return nil
	}
	res := d.DB.WithContext(ctx).Model(&Account{}).Where("uid = ?", uid).Updates(fields)
	if res.Error != nil {
		return &Error{Kind: KindUnavailable, Op: "update user", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &Error{Kind: KindNotFound, Op: "update user"}
	}
	return nil
}

func (d *GormDirectory) SetCustomClaim(ctx context.Context, uid, claim string) error {
	res := d.DB.WithContext(ctx).Model(&Account{}).Where("uid = ?", uid).Update("claim", claim)
	if res.Error != nil {
		return &Error{Kind: KindUnavailable, Op: "set custom claim", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &Error{Kind: KindNotFound, Op: "set custom claim"}
	}
	return nil
}

func (d *GormDirectory) DeleteUser(ctx context.Context, uid string) error {
	res := d.DB.WithContext(ctx).Delete(&Account{}, "uid = ?", uid)
	if res.Error != nil {
		return &Error{Kind: KindUnavailable, Op: "delete user", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &Error{Kind: KindNotFound, Op: "delete user"}
	}
	return nil
}

func (d *GormDirectory) VerifyPassword(ctx context.Context, email, password string) (*UserRecord, error) {
	var acc Account
	err := d.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &Error{Kind: KindBadCredentials, Op: "verify password"}
	}
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Op: "verify password", Err: err}
	}
	if acc.Disabled {
		return nil, &Error{Kind: KindBadCredentials, Op: "verify password"}
	}
	if bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)) != nil {
		return nil, &Error{Kind: KindBadCredentials, Op: "verify password"}
	}
	return acc.record(), nil
}
