package models

import (
	"time"
)

const UserTable = "sw_users"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// AdminUsername 固定管理员账号，管理界面不可删不可改
const AdminUsername = "admin"

// AllPermissions 覆盖全部页面入口
func AllPermissions() []string {
	return []string{"dashboard", "inventory", "loans", "reports", "settings"}
}

// User 是业务侧档案（profile），身份与口令在 identity 目录里
type User struct {
	UID         string   `gorm:"primaryKey;type:uuid" json:"uid"`
	Username    string   `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Name        string   `gorm:"size:255;not null" json:"name"`
	Email       string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role        string   `gorm:"size:20;not null;default:'user'" json:"role"`
	Permissions []string `gorm:"serializer:json" json:"permissions"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// HasPermission 管理员天然全有
func (u *User) HasPermission(p string) bool {
	if u.IsAdmin() {
		return true
	}
	for _, x := range u.Permissions {
		if x == p {
			return true
		}
	}
	return false
}
