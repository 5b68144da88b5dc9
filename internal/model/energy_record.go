package model

import (
	"time"
)

// EnergyRecord 用电/发电记录 - 统计分析的数据来源
type EnergyRecord struct {
	BaseModel
	OrgID      string     `gorm:"type:char(36);index;not null" json:"org_id"`
	UserID     string     `gorm:"type:char(36);index;not null" json:"user_id"`
	Type       RecordType `gorm:"type:varchar(20);not null" json:"type"`
	EnergyKWh  float64    `gorm:"type:decimal(12,4);not null" json:"energy_kwh"`
	Source     string     `gorm:"type:varchar(50)" json:"source"` // 来源：solar / grid / battery 等
	RecordedAt time.Time  `gorm:"index;not null" json:"recorded_at"`
	Notes      string     `gorm:"type:varchar(255)" json:"notes"`

	// 关联
	Organization *Organization `gorm:"foreignKey:OrgID" json:"organization,omitempty"`
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// RecordType 记录类型
type RecordType string

const (
	RecordTypeConsumption RecordType = "consumption" // 用电
	RecordTypeProduction  RecordType = "production"  // 发电
)

func (EnergyRecord) TableName() string {
	return "energy_records"
}
