package model

import (
	"time"
)

// OrganizationRole 组织角色 - 组织内的角色定义
// 权限集合由 slug 通过 RolePermissions 映射隐式决定。
type OrganizationRole struct {
	BaseModel
	OrgID       string   `gorm:"type:char(36);index;not null" json:"org_id"`
	Name        string   `gorm:"type:varchar(50);not null" json:"name"`
	Slug        RoleSlug `gorm:"type:varchar(20);not null" json:"slug"`
	Description string   `gorm:"type:varchar(255)" json:"description"`

	// 关联
	Organization *Organization `gorm:"foreignKey:OrgID" json:"organization,omitempty"`
}

// RoleSlug 角色标识
type RoleSlug string

const (
	RoleOwner  RoleSlug = "owner"  // 所有者：全部权限，可删除组织
	RoleAdmin  RoleSlug = "admin"  // 管理员：管理成员与所有资源
	RoleMember RoleSlug = "member" // 成员：管理合同与用电记录
	RoleViewer RoleSlug = "viewer" // 查看者：只读权限
)

func (OrganizationRole) TableName() string {
	return "organization_roles"
}

// HasPermission 检查角色是否有指定权限
func (r *OrganizationRole) HasPermission(permission string) bool {
	return RolePermissions[r.Slug][permission]
}

// IsOwner 是否是所有者
func (r *OrganizationRole) IsOwner() bool {
	return r.Slug == RoleOwner
}

// IsAdmin 是否是管理员（包括所有者）
func (r *OrganizationRole) IsAdmin() bool {
	return r.Slug == RoleOwner || r.Slug == RoleAdmin
}

// DefaultRoles 组织创建时预置的角色
func DefaultRoles(orgID string) []OrganizationRole {
	return []OrganizationRole{
		{OrgID: orgID, Name: "所有者", Slug: RoleOwner, Description: "全部权限，可删除组织"},
		{OrgID: orgID, Name: "管理员", Slug: RoleAdmin, Description: "管理成员与所有资源"},
		{OrgID: orgID, Name: "成员", Slug: RoleMember, Description: "管理合同与用电记录"},
		{OrgID: orgID, Name: "查看者", Slug: RoleViewer, Description: "只读权限"},
	}
}

// RolePermissions 角色权限映射
var RolePermissions = map[RoleSlug]map[string]bool{
	RoleOwner: {
		// 组织管理
		"org:read":   true,
		"org:update": true,
		"org:delete": true,
		// 成员与邀请
		"member:read":   true,
		"member:invite": true,
		"member:update": true,
		"member:remove": true,
		// 合同管理
		"contract:read":      true,
		"contract:create":    true,
		"contract:update":    true,
		"contract:approve":   true,
		"contract:suspend":   true,
		"contract:terminate": true,
		// 用电记录
		"record:read":   true,
		"record:create": true,
		// Webhook
		"webhook:manage": true,
		// 统计与导出
		"stats:read":  true,
		"export:read": true,
		"audit:read":  true,
	},
	RoleAdmin: {
		// 组织管理
		"org:read":   true,
		"org:update": true,
		"org:delete": false,
		// 成员与邀请
		"member:read":   true,
		"member:invite": true,
		"member:update": true,
		"member:remove": true,
		// 合同管理
		"contract:read":      true,
		"contract:create":    true,
		"contract:update":    true,
		"contract:approve":   true,
		"contract:suspend":   true,
		"contract:terminate": true,
		// 用电记录
		"record:read":   true,
		"record:create": true,
		// Webhook
		"webhook:manage": true,
		// 统计与导出
		"stats:read":  true,
		"export:read": true,
		"audit:read":  true,
	},
	RoleMember: {
		// 组织管理
		"org:read":   true,
		"org:update": false,
		"org:delete": false,
		// 成员与邀请
		"member:read":   true,
		"member:invite": false,
		"member:update": false,
		"member:remove": false,
		// 合同管理
		"contract:read":      true,
		"contract:create":    true,
		"contract:update":    true,
		"contract:approve":   false,
		"contract:suspend":   false,
		"contract:terminate": false,
		// 用电记录
		"record:read":   true,
		"record:create": true,
		// Webhook
		"webhook:manage": false,
		// 统计与导出
		"stats:read":  true,
		"export:read": true,
		"audit:read":  false,
	},
	RoleViewer: {
		// 组织管理
		"org:read":   true,
		"org:update": false,
		"org:delete": false,
		// 成员与邀请
		"member:read":   true,
		"member:invite": false,
		"member:update": false,
		"member:remove": false,
		// 合同管理
		"contract:read":      true,
		"contract:create":    false,
		"contract:update":    false,
		"contract:approve":   false,
		"contract:suspend":   false,
		"contract:terminate": false,
		// 用电记录
		"record:read":   true,
		"record:create": false,
		// Webhook
		"webhook:manage": false,
		// 统计与导出
		"stats:read":  true,
		"export:read": false,
		"audit:read":  false,
	},
}

// UserOrganizationRole 用户-组织-角色关联
// 同一用户在同一组织内最多持有一个有效角色（应用层保证）。
type UserOrganizationRole struct {
	BaseModel
	UserID     string    `gorm:"type:char(36);index;not null" json:"user_id"`
	OrgID      string    `gorm:"type:char(36);index;not null" json:"org_id"`
	RoleID     string    `gorm:"type:char(36);not null" json:"role_id"`
	AssignedAt time.Time `json:"assigned_at"`

	// 关联
	User         *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Organization *Organization     `gorm:"foreignKey:OrgID" json:"organization,omitempty"`
	Role         *OrganizationRole `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (UserOrganizationRole) TableName() string {
	return "user_organization_roles"
}
