package handler

import (
	"energy-server/internal/middleware"
	"energy-server/internal/model"
	"energy-server/internal/pkg/response"
	"energy-server/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct{}

func NewWebhookHandler() *WebhookHandler {
	return &WebhookHandler{}
}

// CreateWebhookRequest 创建 Webhook 请求
type CreateWebhookRequest struct {
	URL    string `json:"url" binding:"required,url"`
	Events string `json:"events"` // 订阅事件，逗号分隔，空为全部
}

// Create 注册 Webhook
// 签名密钥只在创建响应中返回一次。
func (h *WebhookHandler) Create(c *gin.Context) {
	orgID := middleware.GetOrgID(c)

	var req CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	webhook := model.Webhook{
		OrgID:  orgID,
		URL:    req.URL,
		Secret: utils.GenerateWebhookSecret(),
		Events: req.Events,
		Status: "active",
	}

	if err := model.DB.Create(&webhook).Error; err != nil {
		response.ServerError(c, "创建 Webhook 失败")
		return
	}

	response.Success(c, gin.H{
		"id":     webhook.ID,
		"url":    webhook.URL,
		"secret": webhook.Secret,
		"events": webhook.Events,
	})
}

// List 列出组织的 Webhook
func (h *WebhookHandler) List(c *gin.Context) {
	orgID := middleware.GetOrgID(c)

	var webhooks []model.Webhook
	if err := model.DB.Where("org_id = ?", orgID).Find(&webhooks).Error; err != nil {
		response.ServerError(c, "查询 Webhook 失败")
		return
	}

	response.Success(c, webhooks)
}

// UpdateWebhookRequest 更新 Webhook 请求
type UpdateWebhookRequest struct {
	URL    string  `json:"url" binding:"omitempty,url"`
	Events *string `json:"events"`
	Status string  `json:"status"`
}

// Update 更新 Webhook
func (h *WebhookHandler) Update(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	id := c.Param("id")

	var req UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var webhook model.Webhook
	if err := model.DB.Where("id = ? AND org_id = ?", id, orgID).First(&webhook).Error; err != nil {
		response.NotFound(c, "Webhook 不存在")
		return
	}

	updates := map[string]interface{}{}
	if req.URL != "" {
		updates["url"] = req.URL
	}
	if req.Events != nil {
		updates["events"] = *req.Events
	}
	if req.Status == "active" || req.Status == "disabled" {
		updates["status"] = req.Status
	}

	if len(updates) > 0 {
		if err := model.DB.Model(&webhook).Updates(updates).Error; err != nil {
			response.ServerError(c, "更新 Webhook 失败")
			return
		}
	}

	response.SuccessWithMessage(c, "更新成功", webhook)
}

// Delete 删除 Webhook
func (h *WebhookHandler) Delete(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	id := c.Param("id")

	var webhook model.Webhook
	if err := model.DB.Where("id = ? AND org_id = ?", id, orgID).First(&webhook).Error; err != nil {
		response.NotFound(c, "Webhook 不存在")
		return
	}

	if err := model.DB.Delete(&webhook).Error; err != nil {
		response.ServerError(c, "删除 Webhook 失败")
		return
	}

	response.SuccessWithMessage(c, "Webhook 已删除", nil)
}

// ListLogs 查看 Webhook 投递记录
func (h *WebhookHandler) ListLogs(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	id := c.Param("id")

	var webhook model.Webhook
	if err := model.DB.Where("id = ? AND org_id = ?", id, orgID).First(&webhook).Error; err != nil {
		response.NotFound(c, "Webhook 不存在")
		return
	}

	page, pageSize := getPagination(c)

	query := model.DB.Model(&model.WebhookLog{}).Where("webhook_id = ?", webhook.ID)

	var total int64
	query.Count(&total)

	var logs []model.WebhookLog
	query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs)

	response.SuccessPage(c, logs, total, page, pageSize)
}
