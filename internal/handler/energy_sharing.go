package handler

import (
	"math"
	"time"

	"energy-server/internal/config"
	"energy-server/internal/middleware"
	"energy-server/internal/model"
	"energy-server/internal/pkg/response"
	"energy-server/internal/pkg/utils"
	"energy-server/internal/service"

	"github.com/gin-gonic/gin"
)

type EnergySharingHandler struct {
	emailService   *service.EmailService
	webhookService *service.WebhookService
}

func NewEnergySharingHandler() *EnergySharingHandler {
	return &EnergySharingHandler{
		emailService:   service.NewEmailService(),
		webhookService: service.NewWebhookService(),
	}
}

// ProposeSharingRequest 发起共享提案请求
type ProposeSharingRequest struct {
	ConsumerUserID  string    `json:"consumer_user_id" binding:"required"`
	EnergyAmountKWh float64   `json:"energy_amount_kwh" binding:"required"`
	PricePerKWh     float64   `json:"price_per_kwh"`
	SharingStartAt  time.Time `json:"sharing_start_datetime" binding:"required"`
	SharingEndAt    time.Time `json:"sharing_end_datetime" binding:"required"`
	ProposalExpiry  time.Time `json:"proposal_expiry_datetime" binding:"required"`
}

// Propose 发起共享提案
// 当前用户作为提供方，总金额 = 电量 × 单价。
func (h *EnergySharingHandler) Propose(c *gin.Context) {
	providerID := middleware.GetUserID(c)

	var req ProposeSharingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if req.ConsumerUserID == providerID {
		response.BadRequest(c, "不能向自己发起共享")
		return
	}
	if req.EnergyAmountKWh <= 0 {
		response.BadRequest(c, "共享电量必须大于 0")
		return
	}
	if req.PricePerKWh < 0 {
		response.BadRequest(c, "单价不能为负")
		return
	}

	now := time.Now()
	if !req.ProposalExpiry.After(now) {
		response.BadRequest(c, "应答期限必须晚于当前时间")
		return
	}
	if !req.SharingStartAt.After(req.ProposalExpiry) {
		response.BadRequest(c, "共享开始时间必须晚于应答期限")
		return
	}
	if !req.SharingEndAt.After(req.SharingStartAt) {
		response.BadRequest(c, "共享结束时间必须晚于开始时间")
		return
	}

	// 消费方必须是有效账号
	var consumer model.User
	if err := model.DB.Where("id = ? AND status = ?", req.ConsumerUserID, model.UserStatusActive).
		First(&consumer).Error; err != nil {
		response.BadRequest(c, "消费方不存在或已被禁用")
		return
	}

	total := math.Round(req.EnergyAmountKWh*req.PricePerKWh*100) / 100

	sharing := model.EnergySharing{
		SharingCode:        utils.GenerateSharingCode(),
		ProviderUserID:     providerID,
		ConsumerUserID:     req.ConsumerUserID,
		Status:             model.SharingStatusProposed,
		EnergyAmountKWh:    req.EnergyAmountKWh,
		EnergyRemainingKWh: req.EnergyAmountKWh,
		PricePerKWh:        req.PricePerKWh,
		TotalAmount:        total,
		SharingStartAt:     req.SharingStartAt,
		SharingEndAt:       req.SharingEndAt,
		ProposalExpiry:     req.ProposalExpiry,
		ProposedAt:         now,
	}

	if err := model.DB.Create(&sharing).Error; err != nil {
		response.ServerError(c, "创建共享提案失败")
		return
	}

	go h.webhookService.TriggerSharingProposed(&sharing)

	response.Success(c, sharing)
}

// findSharing 查找共享记录并校验参与方身份
func (h *EnergySharingHandler) findSharing(c *gin.Context) (*model.EnergySharing, bool) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	var sharing model.EnergySharing
	if err := model.DB.Where("id = ?", id).First(&sharing).Error; err != nil {
		response.NotFound(c, "共享记录不存在")
		return nil, false
	}

	if !sharing.IsParticipant(userID) {
		response.Forbidden(c, "无权操作该共享记录")
		return nil, false
	}

	return &sharing, true
}

// Accept 接受共享提案
// 仅消费方可接受，过期提案直接拒绝。
// 条件更新保证并发下 接受/取消 只有一个生效。
func (h *EnergySharingHandler) Accept(c *gin.Context) {
	userID := middleware.GetUserID(c)

	sharing, ok := h.findSharing(c)
	if !ok {
		return
	}

	if !sharing.CanAccept(userID) {
		response.Forbidden(c, "只有消费方可以接受提案")
		return
	}

	if sharing.Status != model.SharingStatusProposed {
		response.BadRequest(c, "提案已不在待接受状态")
		return
	}

	// 应答期限惰性判断
	if sharing.IsProposalExpired() {
		response.BadRequest(c, "提案应答期限已过")
		return
	}

	now := time.Now()
	result := model.DB.Model(&model.EnergySharing{}).
		Where("id = ? AND status = ?", sharing.ID, model.SharingStatusProposed).
		Updates(map[string]interface{}{"status": model.SharingStatusAccepted, "accepted_at": now})
	if result.Error != nil {
		response.ServerError(c, "接受提案失败")
		return
	}
	if result.RowsAffected == 0 {
		response.Conflict(c, "提案状态已变更，接受失败")
		return
	}

	sharing.Status = model.SharingStatusAccepted
	sharing.AcceptedAt = &now

	go h.webhookService.TriggerSharingAccepted(sharing)

	response.Success(c, sharing)
}

// Activate 开始输送
// 任一参与方可操作，从 accepted 进入 active。
func (h *EnergySharingHandler) Activate(c *gin.Context) {
	sharing, ok := h.findSharing(c)
	if !ok {
		return
	}

	if !sharing.CanTransitionTo(model.SharingStatusActive) {
		response.BadRequest(c, "当前状态不允许开始输送")
		return
	}

	now := time.Now()
	result := model.DB.Model(&model.EnergySharing{}).
		Where("id = ? AND status = ?", sharing.ID, model.SharingStatusAccepted).
		Updates(map[string]interface{}{"status": model.SharingStatusActive, "activated_at": now})
	if result.Error != nil {
		response.ServerError(c, "开始输送失败")
		return
	}
	if result.RowsAffected == 0 {
		response.Conflict(c, "状态已变更，开始输送失败")
		return
	}

	sharing.Status = model.SharingStatusActive
	sharing.ActivatedAt = &now

	response.Success(c, sharing)
}

// CompleteSharingRequest 完成交付请求
type CompleteSharingRequest struct {
	// 指针以区分缺省与显式的 0（完全未交付也是合法结果）
	EnergyDeliveredKWh *float64 `json:"energy_delivered_kwh" binding:"required"`
	QualityScore       *float64 `json:"quality_score"`
}

// Complete 完成交付
// 任一参与方可操作，实际交付不得超过约定电量，剩余电量与交付效率由此派生。
func (h *EnergySharingHandler) Complete(c *gin.Context) {
	sharing, ok := h.findSharing(c)
	if !ok {
		return
	}

	var req CompleteSharingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	delivered := *req.EnergyDeliveredKWh
	if delivered < 0 {
		response.BadRequest(c, "交付电量不能为负")
		return
	}
	if delivered > sharing.EnergyAmountKWh {
		response.BadRequest(c, "交付电量不能超过约定电量")
		return
	}

	if !sharing.CanTransitionTo(model.SharingStatusCompleted) {
		response.BadRequest(c, "当前状态不允许完成交付")
		return
	}

	remaining := sharing.EnergyAmountKWh - delivered
	efficiency := math.Round(delivered/sharing.EnergyAmountKWh*10000) / 100

	now := time.Now()
	updates := map[string]interface{}{
		"status":               model.SharingStatusCompleted,
		"completed_at":         now,
		"energy_delivered_kwh": delivered,
		"energy_remaining_kwh": remaining,
		"delivery_efficiency":  efficiency,
		"payment_status":       model.PaymentStatusPending,
	}
	if req.QualityScore != nil {
		updates["quality_score"] = *req.QualityScore
	}

	result := model.DB.Model(&model.EnergySharing{}).
		Where("id = ? AND status IN ?", sharing.ID,
			[]model.SharingStatus{model.SharingStatusAccepted, model.SharingStatusActive}).
		Updates(updates)
	if result.Error != nil {
		response.ServerError(c, "完成交付失败")
		return
	}
	if result.RowsAffected == 0 {
		response.Conflict(c, "状态已变更，完成交付失败")
		return
	}

	sharing.Status = model.SharingStatusCompleted
	sharing.CompletedAt = &now
	sharing.EnergyDeliveredKWh = delivered
	sharing.EnergyRemainingKWh = remaining
	sharing.DeliveryEfficiency = &efficiency
	sharing.PaymentStatus = model.PaymentStatusPending

	go h.webhookService.TriggerSharingCompleted(sharing)
	go h.notifySharingCompleted(sharing)

	response.Success(c, sharing)
}

// notifySharingCompleted 向消费方发送完成通知邮件
func (h *EnergySharingHandler) notifySharingCompleted(sharing *model.EnergySharing) {
	if !config.Get().Email.Enabled {
		return
	}
	var consumer model.User
	if err := model.DB.First(&consumer, "id = ?", sharing.ConsumerUserID).Error; err != nil {
		return
	}
	h.emailService.SendSharingCompleted(consumer.Email, service.SharingCompletedData{
		SharingCode:     sharing.SharingCode,
		EnergyAmount:    formatKWh(sharing.EnergyAmountKWh),
		DeliveredAmount: formatKWh(sharing.EnergyDeliveredKWh),
		TotalAmount:     formatAmount(sharing.TotalAmount),
		CompletedAt:     sharing.CompletedAt.Format("2006-01-02 15:04"),
	})
}

// Cancel 取消共享
// 任一参与方可取消处于非终态的共享。
func (h *EnergySharingHandler) Cancel(c *gin.Context) {
	sharing, ok := h.findSharing(c)
	if !ok {
		return
	}

	if sharing.IsTerminal() {
		response.BadRequest(c, "共享已结束，无法取消")
		return
	}

	now := time.Now()
	result := model.DB.Model(&model.EnergySharing{}).
		Where("id = ? AND status IN ?", sharing.ID,
			[]model.SharingStatus{model.SharingStatusProposed, model.SharingStatusAccepted, model.SharingStatusActive}).
		Updates(map[string]interface{}{"status": model.SharingStatusCancelled, "cancelled_at": now})
	if result.Error != nil {
		response.ServerError(c, "取消共享失败")
		return
	}
	if result.RowsAffected == 0 {
		response.Conflict(c, "状态已变更，取消失败")
		return
	}

	sharing.Status = model.SharingStatusCancelled
	sharing.CancelledAt = &now

	go h.webhookService.TriggerSharingCancelled(sharing)

	response.SuccessWithMessage(c, "共享已取消", sharing)
}

// RateSharingRequest 评分请求
type RateSharingRequest struct {
	Rating      int    `json:"rating" binding:"required"`
	Feedback    string `json:"feedback"`
	WouldRepeat *bool  `json:"would_repeat"`
}

// Rate 互评
// 仅 completed 状态可评分，写入的是对方的评分字段，已评过不可覆盖。
func (h *EnergySharingHandler) Rate(c *gin.Context) {
	userID := middleware.GetUserID(c)

	sharing, ok := h.findSharing(c)
	if !ok {
		return
	}

	var req RateSharingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if !model.ValidRating(req.Rating) {
		response.BadRequest(c, "评分必须在 1-5 之间")
		return
	}

	if sharing.Status != model.SharingStatusCompleted {
		response.BadRequest(c, "只有已完成的共享可以评分")
		return
	}

	// 消费方给提供方打分，提供方给消费方打分，各写各的一组列
	ratingCol, feedbackCol, repeatCol := sharing.RatingColumns(userID)
	if userID == sharing.ConsumerUserID {
		if sharing.ProviderRating != nil {
			response.Conflict(c, "已评过分")
			return
		}
	} else {
		if sharing.ConsumerRating != nil {
			response.Conflict(c, "已评过分")
			return
		}
	}

	updates := map[string]interface{}{ratingCol: req.Rating}
	if req.Feedback != "" {
		updates[feedbackCol] = req.Feedback
	}
	if req.WouldRepeat != nil {
		updates[repeatCol] = *req.WouldRepeat
	}

	result := model.DB.Model(&model.EnergySharing{}).
		Where("id = ? AND status = ? AND "+ratingCol+" IS NULL", sharing.ID, model.SharingStatusCompleted).
		Updates(updates)
	if result.Error != nil {
		response.ServerError(c, "评分失败")
		return
	}
	if result.RowsAffected == 0 {
		response.Conflict(c, "评分已存在或状态已变更")
		return
	}

	response.SuccessWithMessage(c, "评分成功", gin.H{
		"rating":   req.Rating,
		"feedback": req.Feedback,
	})
}

// List 列出当前用户参与的共享
func (h *EnergySharingHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	status := c.Query("status")
	role := c.Query("role") // provider / consumer，空为全部

	query := model.DB.Model(&model.EnergySharing{})
	switch role {
	case "provider":
		query = query.Where("provider_user_id = ?", userID)
	case "consumer":
		query = query.Where("consumer_user_id = ?", userID)
	default:
		query = query.Where("provider_user_id = ? OR consumer_user_id = ?", userID, userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	page, pageSize := getPagination(c)

	var total int64
	query.Count(&total)

	var sharings []model.EnergySharing
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&sharings).Error; err != nil {
		response.ServerError(c, "查询共享记录失败")
		return
	}

	response.SuccessPage(c, sharings, total, page, pageSize)
}

// Get 获取共享详情
func (h *EnergySharingHandler) Get(c *gin.Context) {
	sharing, ok := h.findSharing(c)
	if !ok {
		return
	}

	model.DB.Preload("Provider").Preload("Consumer").First(sharing, "id = ?", sharing.ID)

	response.Success(c, sharing)
}
