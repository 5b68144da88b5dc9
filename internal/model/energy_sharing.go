package model

import (
	"time"
)

// EnergySharing 点对点能源共享
// 提供方向消费方发起提案，按状态机推进：
// proposed -> accepted -> active -> completed，任一非终态可被参与方取消。
type EnergySharing struct {
	BaseModel
	SharingCode    string `gorm:"type:varchar(36);uniqueIndex;not null" json:"sharing_code"`
	ProviderUserID string `gorm:"type:char(36);index;not null" json:"provider_user_id"`
	ConsumerUserID string `gorm:"type:char(36);index;not null" json:"consumer_user_id"`

	Status SharingStatus `gorm:"type:varchar(20);default:proposed" json:"status"`

	// 电量与价格
	EnergyAmountKWh    float64 `gorm:"type:decimal(12,4);not null" json:"energy_amount_kwh"`
	EnergyDeliveredKWh float64 `gorm:"type:decimal(12,4);default:0" json:"energy_delivered_kwh"`
	EnergyRemainingKWh float64 `gorm:"type:decimal(12,4);default:0" json:"energy_remaining_kwh"`
	PricePerKWh        float64 `gorm:"type:decimal(10,4);not null" json:"price_per_kwh"`
	TotalAmount        float64 `gorm:"type:decimal(12,2);not null" json:"total_amount"` // 派生 = 电量 × 单价

	// 时间窗口
	SharingStartAt     time.Time `gorm:"not null" json:"sharing_start_datetime"`
	SharingEndAt       time.Time `gorm:"not null" json:"sharing_end_datetime"`
	ProposalExpiry     time.Time `gorm:"not null" json:"proposal_expiry_datetime"` // 超过后未应答的提案失效
	PaymentStatus      string    `gorm:"type:varchar(20)" json:"payment_status"`
	QualityScore       *float64  `gorm:"type:decimal(5,2)" json:"quality_score"`
	DeliveryEfficiency *float64  `gorm:"type:decimal(5,2)" json:"delivery_efficiency"`

	// 互评（1-5，完成后由对方写入）
	ProviderRating      *int   `json:"provider_rating"`
	ConsumerRating      *int   `json:"consumer_rating"`
	ProviderFeedback    string `gorm:"type:varchar(500)" json:"provider_feedback"`
	ConsumerFeedback    string `gorm:"type:varchar(500)" json:"consumer_feedback"`
	ProviderWouldRepeat *bool  `json:"provider_would_repeat"`
	ConsumerWouldRepeat *bool  `json:"consumer_would_repeat"`

	// 各状态时间戳
	ProposedAt  time.Time  `json:"proposed_at"`
	AcceptedAt  *time.Time `json:"accepted_at"`
	ActivatedAt *time.Time `json:"activated_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	// 关联
	Provider *User `gorm:"foreignKey:ProviderUserID" json:"provider,omitempty"`
	Consumer *User `gorm:"foreignKey:ConsumerUserID" json:"consumer,omitempty"`
}

// SharingStatus 共享状态
type SharingStatus string

const (
	SharingStatusProposed  SharingStatus = "proposed"  // 已提案
	SharingStatusAccepted  SharingStatus = "accepted"  // 已接受
	SharingStatusActive    SharingStatus = "active"    // 输送中
	SharingStatusCompleted SharingStatus = "completed" // 已完成
	SharingStatusCancelled SharingStatus = "cancelled" // 已取消
)

// sharingTransitions 状态转移表，不在表内的转移一律拒绝
var sharingTransitions = map[SharingStatus][]SharingStatus{
	SharingStatusProposed: {SharingStatusAccepted, SharingStatusCancelled},
	SharingStatusAccepted: {SharingStatusActive, SharingStatusCompleted, SharingStatusCancelled},
	SharingStatusActive:   {SharingStatusCompleted, SharingStatusCancelled},
}

// PaymentStatus 取值
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

func (EnergySharing) TableName() string {
	return "energy_sharings"
}

// CanTransitionTo 检查状态转移是否合法
func (s *EnergySharing) CanTransitionTo(target SharingStatus) bool {
	for _, st := range sharingTransitions[s.Status] {
		if st == target {
			return true
		}
	}
	return false
}

// IsTerminal 是否处于终态
func (s *EnergySharing) IsTerminal() bool {
	return s.Status == SharingStatusCompleted || s.Status == SharingStatusCancelled
}

// IsParticipant 是否为交易参与方
func (s *EnergySharing) IsParticipant(userID string) bool {
	return userID == s.ProviderUserID || userID == s.ConsumerUserID
}

// CanAccept 是否可由该用户接受提案
// 只有被指定的消费方可以接受，提供方不能接受自己的提案。
func (s *EnergySharing) CanAccept(userID string) bool {
	return userID == s.ConsumerUserID
}

// IsProposalExpired 提案是否已过应答期限（惰性判断）
func (s *EnergySharing) IsProposalExpired() bool {
	return s.Status == SharingStatusProposed && time.Now().After(s.ProposalExpiry)
}

// RatingColumns 返回该用户评分时写入的列名
// 消费方给提供方打分，提供方给消费方打分，双方互不覆盖。
func (s *EnergySharing) RatingColumns(userID string) (rating, feedback, wouldRepeat string) {
	if userID == s.ConsumerUserID {
		return "provider_rating", "provider_feedback", "provider_would_repeat"
	}
	return "consumer_rating", "consumer_feedback", "consumer_would_repeat"
}

// ValidRating 评分是否在 [1,5] 区间
func ValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
