package model

import (
	"time"
)

// EnergyContract 能源供应合同 - 组织维度的购售电合同
type EnergyContract struct {
	BaseModel
	OrgID        string `gorm:"type:char(36);index;not null" json:"org_id"` // 所属组织
	ContractNo   string `gorm:"type:varchar(36);uniqueIndex;not null" json:"contract_no"`
	Title        string `gorm:"type:varchar(100);not null" json:"title"`
	Counterparty string `gorm:"type:varchar(100)" json:"counterparty"` // 对方主体名称

	Type   ContractType   `gorm:"type:varchar(20);default:supply" json:"type"`
	Status ContractStatus `gorm:"type:varchar(20);default:draft" json:"status"`

	// 电量与价格
	VolumeKWh   float64 `gorm:"type:decimal(14,4)" json:"volume_kwh"`
	PricePerKWh float64 `gorm:"type:decimal(10,4)" json:"price_per_kwh"`

	// 合同期限
	StartAt *time.Time `json:"start_at"`
	EndAt   *time.Time `json:"end_at"`

	SuspendedReason  string `gorm:"type:varchar(255)" json:"suspended_reason"`
	TerminatedReason string `gorm:"type:varchar(255)" json:"terminated_reason"`
	Notes            string `gorm:"type:text" json:"notes"`

	// 关联
	Organization *Organization   `gorm:"foreignKey:OrgID" json:"organization,omitempty"`
	Events       []ContractEvent `gorm:"foreignKey:ContractID" json:"events,omitempty"`
}

// ContractType 合同类型
type ContractType string

const (
	ContractTypeSupply   ContractType = "supply"   // 购电
	ContractTypeFeedIn   ContractType = "feed_in"  // 上网售电
	ContractTypeExchange ContractType = "exchange" // 互换
)

// ContractStatus 合同状态
type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "draft"      // 草稿
	ContractStatusActive     ContractStatus = "active"     // 生效
	ContractStatusSuspended  ContractStatus = "suspended"  // 已暂停
	ContractStatusTerminated ContractStatus = "terminated" // 已终止
)

// contractTransitions 合同状态转移表
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractStatusDraft:     {ContractStatusActive, ContractStatusTerminated},
	ContractStatusActive:    {ContractStatusSuspended, ContractStatusTerminated},
	ContractStatusSuspended: {ContractStatusActive, ContractStatusTerminated},
}

func (EnergyContract) TableName() string {
	return "energy_contracts"
}

// CanTransitionTo 检查状态转移是否合法
func (ct *EnergyContract) CanTransitionTo(target ContractStatus) bool {
	for _, s := range contractTransitions[ct.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// IsTerminal 是否处于终态
func (ct *EnergyContract) IsTerminal() bool {
	return ct.Status == ContractStatusTerminated
}

// ContractEvent 合同事件记录
type ContractEvent struct {
	BaseModel
	ContractID string            `gorm:"type:varchar(36);index;not null" json:"contract_id"`
	EventType  ContractEventType `gorm:"type:varchar(20);not null" json:"event_type"`
	FromStatus string            `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus   string            `gorm:"type:varchar(20)" json:"to_status"`
	OperatorID string            `gorm:"type:varchar(36)" json:"operator_id"`
	IPAddress  string            `gorm:"type:varchar(45)" json:"ip_address"`
	Notes      string            `gorm:"type:text" json:"notes"`
}

// ContractEventType 合同事件类型
type ContractEventType string

const (
	ContractEventCreated    ContractEventType = "created"
	ContractEventApproved   ContractEventType = "approved"
	ContractEventSuspended  ContractEventType = "suspended"
	ContractEventResumed    ContractEventType = "resumed"
	ContractEventTerminated ContractEventType = "terminated"
)

func (ContractEvent) TableName() string {
	return "contract_events"
}
