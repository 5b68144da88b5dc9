package handler

import (
	"time"

	"energy-server/internal/middleware"
	"energy-server/internal/model"
	"energy-server/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StatisticsHandler struct{}

func NewStatisticsHandler() *StatisticsHandler {
	return &StatisticsHandler{}
}

// Dashboard 组织仪表盘数据
func (h *StatisticsHandler) Dashboard(c *gin.Context) {
	orgID := middleware.GetOrgID(c)

	// 成员统计
	var totalMembers int64
	model.DB.Model(&model.UserOrganizationRole{}).Where("org_id = ?", orgID).Count(&totalMembers)

	// 邀请统计
	var pendingInvites int64
	model.DB.Model(&model.InvitationToken{}).
		Where("org_id = ? AND status = ? AND expires_at > ?", orgID, model.InviteStatusPending, time.Now()).
		Count(&pendingInvites)

	// 合同统计
	var totalContracts int64
	model.DB.Model(&model.EnergyContract{}).Where("org_id = ?", orgID).Count(&totalContracts)

	var activeContracts int64
	model.DB.Model(&model.EnergyContract{}).Where("org_id = ? AND status = ?", orgID, model.ContractStatusActive).Count(&activeContracts)

	var draftContracts int64
	model.DB.Model(&model.EnergyContract{}).Where("org_id = ? AND status = ?", orgID, model.ContractStatusDraft).Count(&draftContracts)

	var suspendedContracts int64
	model.DB.Model(&model.EnergyContract{}).Where("org_id = ? AND status = ?", orgID, model.ContractStatusSuspended).Count(&suspendedContracts)

	// 用电记录统计
	var totalRecords int64
	model.DB.Model(&model.EnergyRecord{}).Where("org_id = ?", orgID).Count(&totalRecords)

	type sumResult struct {
		Total float64
	}
	var consumption, production sumResult
	model.DB.Model(&model.EnergyRecord{}).
		Select("COALESCE(SUM(energy_kwh), 0) as total").
		Where("org_id = ? AND type = ?", orgID, model.RecordTypeConsumption).
		Scan(&consumption)
	model.DB.Model(&model.EnergyRecord{}).
		Select("COALESCE(SUM(energy_kwh), 0) as total").
		Where("org_id = ? AND type = ?", orgID, model.RecordTypeProduction).
		Scan(&production)

	// 今日新增
	today := time.Now().Truncate(24 * time.Hour)

	var todayContracts int64
	model.DB.Model(&model.EnergyContract{}).Where("org_id = ? AND created_at >= ?", orgID, today).Count(&todayContracts)

	var todayRecords int64
	model.DB.Model(&model.EnergyRecord{}).Where("org_id = ? AND created_at >= ?", orgID, today).Count(&todayRecords)

	response.Success(c, gin.H{
		"members": gin.H{
			"total":           totalMembers,
			"pending_invites": pendingInvites,
		},
		"contracts": gin.H{
			"total":     totalContracts,
			"draft":     draftContracts,
			"active":    activeContracts,
			"suspended": suspendedContracts,
			"today_new": todayContracts,
		},
		"records": gin.H{
			"total":                 totalRecords,
			"today_new":             todayRecords,
			"total_consumption_kwh": consumption.Total,
			"total_production_kwh":  production.Total,
		},
	})
}

// MySharingStats 当前用户的共享统计
func (h *StatisticsHandler) MySharingStats(c *gin.Context) {
	userID := middleware.GetUserID(c)

	base := func() *gorm.DB {
		return model.DB.Model(&model.EnergySharing{}).
			Where("provider_user_id = ? OR consumer_user_id = ?", userID, userID)
	}

	var total, proposed, active, completed, cancelled int64
	base().Count(&total)
	base().Where("status = ?", model.SharingStatusProposed).Count(&proposed)
	base().Where("status IN ?", []model.SharingStatus{model.SharingStatusAccepted, model.SharingStatusActive}).Count(&active)
	base().Where("status = ?", model.SharingStatusCompleted).Count(&completed)
	base().Where("status = ?", model.SharingStatusCancelled).Count(&cancelled)

	type deliveredResult struct {
		TotalDelivered float64
		TotalAmount    float64
	}
	var asProvider, asConsumer deliveredResult
	model.DB.Model(&model.EnergySharing{}).
		Select("COALESCE(SUM(energy_delivered_kwh), 0) as total_delivered, COALESCE(SUM(total_amount), 0) as total_amount").
		Where("provider_user_id = ? AND status = ?", userID, model.SharingStatusCompleted).
		Scan(&asProvider)
	model.DB.Model(&model.EnergySharing{}).
		Select("COALESCE(SUM(energy_delivered_kwh), 0) as total_delivered, COALESCE(SUM(total_amount), 0) as total_amount").
		Where("consumer_user_id = ? AND status = ?", userID, model.SharingStatusCompleted).
		Scan(&asConsumer)

	// 作为提供方获得的平均评分
	type ratingResult struct {
		Avg   float64
		Count int64
	}
	var rating ratingResult
	model.DB.Model(&model.EnergySharing{}).
		Select("COALESCE(AVG(provider_rating), 0) as avg, COUNT(provider_rating) as count").
		Where("provider_user_id = ? AND provider_rating IS NOT NULL", userID).
		Scan(&rating)

	response.Success(c, gin.H{
		"sharings": gin.H{
			"total":     total,
			"proposed":  proposed,
			"active":    active,
			"completed": completed,
			"cancelled": cancelled,
		},
		"as_provider": gin.H{
			"delivered_kwh": asProvider.TotalDelivered,
			"earned_amount": asProvider.TotalAmount,
		},
		"as_consumer": gin.H{
			"received_kwh": asConsumer.TotalDelivered,
			"paid_amount":  asConsumer.TotalAmount,
		},
		"rating": gin.H{
			"average": rating.Avg,
			"count":   rating.Count,
		},
	})
}

// SharingTrend 共享趋势（最近30天）
func (h *StatisticsHandler) SharingTrend(c *gin.Context) {
	userID := middleware.GetUserID(c)

	type DayCount struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	var results []DayCount

	model.DB.Model(&model.EnergySharing{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("(provider_user_id = ? OR consumer_user_id = ?) AND created_at >= ?",
			userID, userID, time.Now().AddDate(0, 0, -30)).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results)

	response.Success(c, results)
}

// EnergySummary 组织用电汇总（按日期与类型）
func (h *StatisticsHandler) EnergySummary(c *gin.Context) {
	orgID := middleware.GetOrgID(c)

	days := 30
	if c.Query("days") == "7" {
		days = 7
	}

	type DaySum struct {
		Date  string  `json:"date"`
		Type  string  `json:"type"`
		Total float64 `json:"total_kwh"`
	}

	var results []DaySum

	model.DB.Model(&model.EnergyRecord{}).
		Select("DATE(recorded_at) as date, type, COALESCE(SUM(energy_kwh), 0) as total").
		Where("org_id = ? AND recorded_at >= ?", orgID, time.Now().AddDate(0, 0, -days)).
		Group("DATE(recorded_at), type").
		Order("date ASC").
		Scan(&results)

	response.Success(c, results)
}

// SourceDistribution 能源来源分布
func (h *StatisticsHandler) SourceDistribution(c *gin.Context) {
	orgID := middleware.GetOrgID(c)

	type SourceCount struct {
		Source string  `json:"source"`
		Total  float64 `json:"total_kwh"`
	}

	var results []SourceCount

	model.DB.Model(&model.EnergyRecord{}).
		Select("source, COALESCE(SUM(energy_kwh), 0) as total").
		Where("org_id = ? AND source != ''", orgID).
		Group("source").
		Scan(&results)

	response.Success(c, results)
}
