package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 平台账号
// 用户本身不属于任何组织，组织归属通过 UserOrganizationRole 建立。
type User struct {
	BaseModel
	Email    string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password string     `gorm:"type:varchar(255);not null" json:"-"`
	Name     string     `gorm:"type:varchar(50)" json:"name"`
	Phone    string     `gorm:"type:varchar(20)" json:"phone"`
	Avatar   string     `gorm:"type:varchar(500)" json:"avatar"`
	Status   UserStatus `gorm:"type:varchar(20);default:active" json:"status"`

	// 安全相关
	LastLoginAt *time.Time `json:"last_login_at"`
	LastLoginIP string     `gorm:"type:varchar(45)" json:"last_login_ip"`

	// 关联
	Memberships []UserOrganizationRole `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}

// UserStatus 账号状态
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"   // 正常
	UserStatusDisabled UserStatus = "disabled" // 已禁用
)

func (User) TableName() string {
	return "users"
}

// SetPassword 设置密码（加密）
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
