package model

import (
	"time"
)

// InvitationToken 邀请令牌 - 一次性凭证，兑换后授予组织内指定角色
type InvitationToken struct {
	BaseModel
	OrgID     string       `gorm:"type:char(36);index;not null" json:"org_id"`
	RoleID    string       `gorm:"type:char(36);not null" json:"role_id"`
	Email     string       `gorm:"type:varchar(100)" json:"email"` // 可选，限定被邀请邮箱
	Token     string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"-"`
	InvitedBy string       `gorm:"type:char(36);not null" json:"invited_by"`
	Status    InviteStatus `gorm:"type:varchar(20);default:pending" json:"status"`
	ExpiresAt time.Time    `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time   `json:"used_at"`
	RevokedAt *time.Time   `json:"revoked_at"`

	// 关联 - 不使用外键约束，避免迁移顺序问题
	Organization *Organization     `gorm:"foreignKey:OrgID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"organization,omitempty"`
	Role         *OrganizationRole `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Inviter      *User             `gorm:"-" json:"inviter,omitempty"` // 手动加载，不创建外键
}

// InviteStatus 邀请状态
type InviteStatus string

const (
	InviteStatusPending InviteStatus = "pending" // 待兑换
	InviteStatusUsed    InviteStatus = "used"    // 已兑换
	InviteStatusExpired InviteStatus = "expired" // 已过期
	InviteStatusRevoked InviteStatus = "revoked" // 已撤销
)

// inviteTransitions 邀请状态转移表
// pending 是唯一的非终态，终态之间不可互转。
var inviteTransitions = map[InviteStatus][]InviteStatus{
	InviteStatusPending: {InviteStatusUsed, InviteStatusExpired, InviteStatusRevoked},
}

func (InvitationToken) TableName() string {
	return "invitation_tokens"
}

// CanTransitionTo 检查状态转移是否合法
func (i *InvitationToken) CanTransitionTo(target InviteStatus) bool {
	for _, s := range inviteTransitions[i.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// IsExpired 是否已过期（惰性判断，不依赖后台扫描）
func (i *InvitationToken) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsValid 是否可兑换：状态为 pending 且未过期
func (i *InvitationToken) IsValid() bool {
	return i.Status == InviteStatusPending && !i.IsExpired()
}
