package model

import (
	"time"
)

// Webhook 组织注册的事件回调端点
type Webhook struct {
	BaseModel
	OrgID           string     `gorm:"type:char(36);index;not null" json:"org_id"`
	URL             string     `gorm:"type:varchar(500);not null" json:"url"`
	Secret          string     `gorm:"type:varchar(100)" json:"-"` // HMAC 签名密钥
	Events          string     `gorm:"type:varchar(500)" json:"events"` // 订阅事件，逗号分隔，空为全部
	Status          string     `gorm:"type:varchar(20);default:active" json:"status"`
	LastTriggeredAt *time.Time `json:"last_triggered_at"`
}

func (Webhook) TableName() string {
	return "webhooks"
}

// WebhookLog Webhook 投递记录
type WebhookLog struct {
	BaseModel
	WebhookID    string `gorm:"type:char(36);index;not null" json:"webhook_id"`
	Event        string `gorm:"type:varchar(50)" json:"event"`
	Success      bool   `json:"success"`
	ResponseBody string `gorm:"type:varchar(500)" json:"response_body"`
}

func (WebhookLog) TableName() string {
	return "webhook_logs"
}
