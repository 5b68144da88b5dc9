package model

// Organization 组织 - 资源隔离的顶层单位
// 角色、邀请、合同、用电记录均归属于组织。
type Organization struct {
	BaseModel
	Name    string             `gorm:"type:varchar(100);not null" json:"name"`
	Slug    string             `gorm:"type:varchar(50);uniqueIndex" json:"slug"` // URL友好标识
	Logo    string             `gorm:"type:varchar(500)" json:"logo"`
	Email   string             `gorm:"type:varchar(100)" json:"email"` // 组织联系邮箱
	Phone   string             `gorm:"type:varchar(20)" json:"phone"`
	Website string             `gorm:"type:varchar(255)" json:"website"`
	Address string             `gorm:"type:varchar(500)" json:"address"`
	Status  OrganizationStatus `gorm:"type:varchar(20);default:active" json:"status"`

	// 配额限制
	MaxMembers   int `gorm:"default:50" json:"max_members"`    // 最大成员数
	MaxContracts int `gorm:"default:500" json:"max_contracts"` // 最大合同数

	// 关联
	Roles       []OrganizationRole     `gorm:"foreignKey:OrgID" json:"roles,omitempty"`
	Memberships []UserOrganizationRole `gorm:"foreignKey:OrgID" json:"memberships,omitempty"`
	Contracts   []EnergyContract       `gorm:"foreignKey:OrgID" json:"contracts,omitempty"`
}

// OrganizationStatus 组织状态
type OrganizationStatus string

const (
	OrgStatusActive    OrganizationStatus = "active"    // 正常
	OrgStatusSuspended OrganizationStatus = "suspended" // 已暂停
	OrgStatusDeleted   OrganizationStatus = "deleted"   // 已删除
)

func (Organization) TableName() string {
	return "organizations"
}

// CanAddMember 当前成员数下是否还能接纳新成员
// MaxMembers <= 0 视为不限额。
func (o *Organization) CanAddMember(current int64) bool {
	return o.MaxMembers <= 0 || current < int64(o.MaxMembers)
}
