package service

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"energy-server/internal/model"
)

// WebhookService Webhook 服务
type WebhookService struct{}

// NewWebhookService 创建 Webhook 服务
func NewWebhookService() *WebhookService {
	return &WebhookService{}
}

// WebhookEvent 事件类型
type WebhookEvent string

const (
	EventSharingProposed    WebhookEvent = "sharing.proposed"
	EventSharingAccepted    WebhookEvent = "sharing.accepted"
	EventSharingCompleted   WebhookEvent = "sharing.completed"
	EventSharingCancelled   WebhookEvent = "sharing.cancelled"
	EventContractApproved   WebhookEvent = "contract.approved"
	EventContractSuspended  WebhookEvent = "contract.suspended"
	EventContractTerminated WebhookEvent = "contract.terminated"
	EventInvitationAccepted WebhookEvent = "invitation.accepted"
)

// WebhookPayload Webhook 负载
type WebhookPayload struct {
	Event     WebhookEvent           `json:"event"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// SendWebhook 发送 Webhook
func (s *WebhookService) SendWebhook(orgID string, event WebhookEvent, data map[string]interface{}) error {
	// 查找该组织的所有活跃 Webhook
	var webhooks []model.Webhook
	model.DB.Where("org_id = ? AND status = ?", orgID, "active").Find(&webhooks)

	if len(webhooks) == 0 {
		return nil
	}

	payload := WebhookPayload{
		Event:     event,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// 异步发送所有订阅了该事件的 Webhook
	for _, webhook := range webhooks {
		if !s.subscribed(webhook, event) {
			continue
		}
		go s.sendSingleWebhook(webhook, event, payloadBytes)
	}

	return nil
}

// subscribed 判断 Webhook 是否订阅了事件
func (s *WebhookService) subscribed(webhook model.Webhook, event WebhookEvent) bool {
	if webhook.Events == "" || webhook.Events == "*" {
		return true
	}
	for _, e := range strings.Split(webhook.Events, ",") {
		if strings.TrimSpace(e) == string(event) {
			return true
		}
	}
	return false
}

// sendSingleWebhook 发送单个 Webhook
func (s *WebhookService) sendSingleWebhook(webhook model.Webhook, event WebhookEvent, payload []byte) {
	// 生成签名
	signature := s.generateSignature(webhook.Secret, payload)

	// 创建请求
	req, err := http.NewRequest("POST", webhook.URL, bytes.NewBuffer(payload))
	if err != nil {
		s.logWebhookResult(webhook.ID, event, false, err.Error())
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature)
	req.Header.Set("X-Webhook-Timestamp", time.Now().Format(time.RFC3339))

	// 发送请求
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		s.logWebhookResult(webhook.ID, event, false, err.Error())
		return
	}
	defer resp.Body.Close()

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	s.logWebhookResult(webhook.ID, event, success, resp.Status)
}

// generateSignature 生成 HMAC 签名
func (s *WebhookService) generateSignature(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// logWebhookResult 记录 Webhook 结果
func (s *WebhookService) logWebhookResult(webhookID string, event WebhookEvent, success bool, response string) {
	log := model.WebhookLog{
		WebhookID:    webhookID,
		Event:        string(event),
		Success:      success,
		ResponseBody: response,
	}
	model.DB.Create(&log)

	// 更新 Webhook 最后触发时间
	model.DB.Model(&model.Webhook{}).Where("id = ?", webhookID).Update("last_triggered_at", time.Now())
}

// sendUserWebhook 向用户所属的全部组织投递事件
// 共享交易是用户维度的，Webhook 登记在组织维度。
func (s *WebhookService) sendUserWebhook(userID string, event WebhookEvent, data map[string]interface{}) {
	var memberships []model.UserOrganizationRole
	model.DB.Where("user_id = ?", userID).Find(&memberships)
	for _, m := range memberships {
		s.SendWebhook(m.OrgID, event, data)
	}
}

// TriggerSharingProposed 触发共享提议事件
func (s *WebhookService) TriggerSharingProposed(sharing *model.EnergySharing) {
	s.sendUserWebhook(sharing.ProviderUserID, EventSharingProposed, map[string]interface{}{
		"sharing_id":        sharing.ID,
		"sharing_code":      sharing.SharingCode,
		"provider_user_id":  sharing.ProviderUserID,
		"consumer_user_id":  sharing.ConsumerUserID,
		"energy_amount_kwh": sharing.EnergyAmountKWh,
		"price_per_kwh":     sharing.PricePerKWh,
		"total_amount":      sharing.TotalAmount,
	})
}

// TriggerSharingAccepted 触发共享接受事件
func (s *WebhookService) TriggerSharingAccepted(sharing *model.EnergySharing) {
	s.sendUserWebhook(sharing.ProviderUserID, EventSharingAccepted, map[string]interface{}{
		"sharing_id":   sharing.ID,
		"sharing_code": sharing.SharingCode,
		"accepted_at":  sharing.AcceptedAt,
	})
}

// TriggerSharingCompleted 触发共享完成事件
func (s *WebhookService) TriggerSharingCompleted(sharing *model.EnergySharing) {
	s.sendUserWebhook(sharing.ProviderUserID, EventSharingCompleted, map[string]interface{}{
		"sharing_id":     sharing.ID,
		"sharing_code":   sharing.SharingCode,
		"delivered_kwh":  sharing.EnergyDeliveredKWh,
		"remaining_kwh":  sharing.EnergyRemainingKWh,
		"total_amount":   sharing.TotalAmount,
		"payment_status": sharing.PaymentStatus,
	})
}

// TriggerSharingCancelled 触发共享取消事件
func (s *WebhookService) TriggerSharingCancelled(sharing *model.EnergySharing) {
	s.sendUserWebhook(sharing.ProviderUserID, EventSharingCancelled, map[string]interface{}{
		"sharing_id":   sharing.ID,
		"sharing_code": sharing.SharingCode,
		"cancelled_at": sharing.CancelledAt,
	})
}

// TriggerContractEvent 触发合同状态事件
func (s *WebhookService) TriggerContractEvent(event WebhookEvent, contract *model.EnergyContract) {
	s.SendWebhook(contract.OrgID, event, map[string]interface{}{
		"contract_id":  contract.ID,
		"contract_no":  contract.ContractNo,
		"title":        contract.Title,
		"status":       contract.Status,
		"counterparty": contract.Counterparty,
	})
}

// TriggerInvitationAccepted 触发邀请接受事件
func (s *WebhookService) TriggerInvitationAccepted(invite *model.InvitationToken, userID string) {
	s.SendWebhook(invite.OrgID, EventInvitationAccepted, map[string]interface{}{
		"invitation_id": invite.ID,
		"org_id":        invite.OrgID,
		"user_id":       userID,
		"role_id":       invite.RoleID,
	})
}
