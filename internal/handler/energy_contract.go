package handler

import (
	"time"

	"energy-server/internal/middleware"
	"energy-server/internal/model"
	"energy-server/internal/pkg/response"
	"energy-server/internal/pkg/utils"
	"energy-server/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EnergyContractHandler struct {
	webhookService *service.WebhookService
}

func NewEnergyContractHandler() *EnergyContractHandler {
	return &EnergyContractHandler{
		webhookService: service.NewWebhookService(),
	}
}

// CreateContractRequest 创建合同请求
type CreateContractRequest struct {
	Title        string     `json:"title" binding:"required"`
	Counterparty string     `json:"counterparty"`
	Type         string     `json:"type"`
	VolumeKWh    float64    `json:"volume_kwh"`
	PricePerKWh  float64    `json:"price_per_kwh"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	Notes        string     `json:"notes"`
}

// Create 创建合同（草稿状态）
func (h *EnergyContractHandler) Create(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	userID := middleware.GetUserID(c)

	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	contractType := model.ContractType(req.Type)
	switch contractType {
	case model.ContractTypeSupply, model.ContractTypeFeedIn, model.ContractTypeExchange:
	case "":
		contractType = model.ContractTypeSupply
	default:
		response.BadRequest(c, "无效的合同类型")
		return
	}

	if req.VolumeKWh < 0 || req.PricePerKWh < 0 {
		response.BadRequest(c, "电量与单价不能为负")
		return
	}
	if req.StartAt != nil && req.EndAt != nil && !req.EndAt.After(*req.StartAt) {
		response.BadRequest(c, "合同结束时间必须晚于开始时间")
		return
	}

	// 组织配额检查
	var org model.Organization
	if err := model.DB.First(&org, "id = ?", orgID).Error; err != nil {
		response.NotFound(c, "组织不存在")
		return
	}
	var count int64
	model.DB.Model(&model.EnergyContract{}).Where("org_id = ?", orgID).Count(&count)
	if org.MaxContracts > 0 && count >= int64(org.MaxContracts) {
		response.Error(c, 403, "已达组织合同数量上限")
		return
	}

	contract := model.EnergyContract{
		OrgID:        orgID,
		ContractNo:   utils.GenerateContractNo(),
		Title:        req.Title,
		Counterparty: req.Counterparty,
		Type:         contractType,
		Status:       model.ContractStatusDraft,
		VolumeKWh:    req.VolumeKWh,
		PricePerKWh:  req.PricePerKWh,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		Notes:        req.Notes,
	}

	tx := model.DB.Begin()
	if err := tx.Create(&contract).Error; err != nil {
		tx.Rollback()
		response.ServerError(c, "创建合同失败")
		return
	}
	event := model.ContractEvent{
		ContractID: contract.ID,
		EventType:  model.ContractEventCreated,
		ToStatus:   string(model.ContractStatusDraft),
		OperatorID: userID,
		IPAddress:  c.ClientIP(),
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		response.ServerError(c, "记录合同事件失败")
		return
	}
	tx.Commit()

	response.Success(c, contract)
}

// List 列出组织合同
func (h *EnergyContractHandler) List(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	status := c.Query("status")
	contractType := c.Query("type")

	query := model.DB.Model(&model.EnergyContract{}).Where("org_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if contractType != "" {
		query = query.Where("type = ?", contractType)
	}

	page, pageSize := getPagination(c)

	var total int64
	query.Count(&total)

	var contracts []model.EnergyContract
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&contracts).Error; err != nil {
		response.ServerError(c, "查询合同失败")
		return
	}

	response.SuccessPage(c, contracts, total, page, pageSize)
}

// Get 获取合同详情（含事件记录）
func (h *EnergyContractHandler) Get(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	id := c.Param("id")

	var contract model.EnergyContract
	if err := model.DB.Preload("Events", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("id = ? AND org_id = ?", id, orgID).First(&contract).Error; err != nil {
		response.NotFound(c, "合同不存在")
		return
	}

	response.Success(c, contract)
}

// transition 执行合同状态转移
// 条件更新保证并发下转移只生效一次，事件与状态在同一事务内落库。
func (h *EnergyContractHandler) transition(c *gin.Context, from []model.ContractStatus, to model.ContractStatus,
	eventType model.ContractEventType, extraUpdates map[string]interface{}) {
	orgID := middleware.GetOrgID(c)
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	var contract model.EnergyContract
	if err := model.DB.Where("id = ? AND org_id = ?", id, orgID).First(&contract).Error; err != nil {
		response.NotFound(c, "合同不存在")
		return
	}

	if !contract.CanTransitionTo(to) {
		response.BadRequest(c, "当前状态不允许该操作")
		return
	}

	updates := map[string]interface{}{"status": to}
	for k, v := range extraUpdates {
		updates[k] = v
	}

	tx := model.DB.Begin()

	result := tx.Model(&model.EnergyContract{}).
		Where("id = ? AND status IN ?", contract.ID, from).
		Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		response.ServerError(c, "更新合同状态失败")
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		response.Conflict(c, "合同状态已变更，操作失败")
		return
	}

	notes := ""
	if v, ok := extraUpdates["suspended_reason"]; ok {
		notes, _ = v.(string)
	}
	if v, ok := extraUpdates["terminated_reason"]; ok {
		notes, _ = v.(string)
	}

	event := model.ContractEvent{
		ContractID: contract.ID,
		EventType:  eventType,
		FromStatus: string(contract.Status),
		ToStatus:   string(to),
		OperatorID: userID,
		IPAddress:  c.ClientIP(),
		Notes:      notes,
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		response.ServerError(c, "记录合同事件失败")
		return
	}

	tx.Commit()

	contract.Status = to

	switch eventType {
	case model.ContractEventApproved:
		go h.webhookService.TriggerContractEvent(service.EventContractApproved, &contract)
	case model.ContractEventSuspended:
		go h.webhookService.TriggerContractEvent(service.EventContractSuspended, &contract)
	case model.ContractEventTerminated:
		go h.webhookService.TriggerContractEvent(service.EventContractTerminated, &contract)
	}

	response.Success(c, contract)
}

// Approve 审批生效（draft -> active）
func (h *EnergyContractHandler) Approve(c *gin.Context) {
	h.transition(c,
		[]model.ContractStatus{model.ContractStatusDraft},
		model.ContractStatusActive,
		model.ContractEventApproved, nil)
}

// ReasonRequest 带原因的操作请求
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// Suspend 暂停合同（active -> suspended）
func (h *EnergyContractHandler) Suspend(c *gin.Context) {
	var req ReasonRequest
	c.ShouldBindJSON(&req)

	h.transition(c,
		[]model.ContractStatus{model.ContractStatusActive},
		model.ContractStatusSuspended,
		model.ContractEventSuspended,
		map[string]interface{}{"suspended_reason": req.Reason})
}

// Resume 恢复合同（suspended -> active）
func (h *EnergyContractHandler) Resume(c *gin.Context) {
	h.transition(c,
		[]model.ContractStatus{model.ContractStatusSuspended},
		model.ContractStatusActive,
		model.ContractEventResumed,
		map[string]interface{}{"suspended_reason": ""})
}

// Terminate 终止合同（终态，不可恢复）
func (h *EnergyContractHandler) Terminate(c *gin.Context) {
	var req ReasonRequest
	c.ShouldBindJSON(&req)

	h.transition(c,
		[]model.ContractStatus{model.ContractStatusDraft, model.ContractStatusActive, model.ContractStatusSuspended},
		model.ContractStatusTerminated,
		model.ContractEventTerminated,
		map[string]interface{}{"terminated_reason": req.Reason})
}
