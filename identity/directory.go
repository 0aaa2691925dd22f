// Package identity wraps the account directory (the auth collaborator) behind
// a typed interface, so the rest of the app never pattern-matches its raw
// error strings.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// UserRecord 目录侧的账号视图（不含口令散列）
type UserRecord struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Claim       string `json:"claim"` // 角色 claim，镜像自档案 role
	Disabled    bool   `json:"disabled"`
}

// AccountUpdate 枚举目录侧可改字段；nil 表示不动
type AccountUpdate struct {
	DisplayName *string
	Password    *string
	Disabled    *bool
}

type Directory interface {
	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)
	CreateUser(ctx context.Context, email, password, displayName string) (*UserRecord, error)
	UpdateUser(ctx context.Context, uid string, upd AccountUpdate) error
	SetCustomClaim(ctx context.Context, uid, claim string) error
	DeleteUser(ctx context.Context, uid string) error

	// VerifyPassword 登录用：校验口令并返回账号
	VerifyPassword(ctx context.Context, email, password string) (*UserRecord, error)
}

// Kind 目录错误分类，调用方用 Is* 判断而不是比对消息文本
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindExists
	KindBadCredentials
	KindUnavailable
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("identity: %s", e.Op)
}

func (e *Error) Unwrap() error { return e.Err }

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool       { return kindOf(err) == KindNotFound }
func IsExists(err error) bool         { return kindOf(err) == KindExists }
func IsBadCredentials(err error) bool { return kindOf(err) == KindBadCredentials }
