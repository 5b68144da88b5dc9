package handler

import (
	"time"

	"energy-server/internal/middleware"
	"energy-server/internal/model"
	"energy-server/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type EnergyRecordHandler struct{}

func NewEnergyRecordHandler() *EnergyRecordHandler {
	return &EnergyRecordHandler{}
}

// CreateRecordRequest 创建用电记录请求
type CreateRecordRequest struct {
	Type       string    `json:"type" binding:"required"`
	EnergyKWh  float64   `json:"energy_kwh" binding:"required"`
	Source     string    `json:"source"`
	RecordedAt time.Time `json:"recorded_at"`
	Notes      string    `json:"notes"`
}

// Create 创建用电/发电记录
func (h *EnergyRecordHandler) Create(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	userID := middleware.GetUserID(c)

	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	recordType := model.RecordType(req.Type)
	if recordType != model.RecordTypeConsumption && recordType != model.RecordTypeProduction {
		response.BadRequest(c, "无效的记录类型")
		return
	}
	if req.EnergyKWh <= 0 {
		response.BadRequest(c, "电量必须大于 0")
		return
	}

	recordedAt := req.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	record := model.EnergyRecord{
		OrgID:      orgID,
		UserID:     userID,
		Type:       recordType,
		EnergyKWh:  req.EnergyKWh,
		Source:     req.Source,
		RecordedAt: recordedAt,
		Notes:      req.Notes,
	}

	if err := model.DB.Create(&record).Error; err != nil {
		response.ServerError(c, "创建记录失败")
		return
	}

	response.Success(c, record)
}

// List 列出组织的用电记录
func (h *EnergyRecordHandler) List(c *gin.Context) {
	orgID := middleware.GetOrgID(c)

	query := model.DB.Model(&model.EnergyRecord{}).Where("org_id = ?", orgID)

	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}
	if source := c.Query("source"); source != "" {
		query = query.Where("source = ?", source)
	}
	if start := c.Query("start"); start != "" {
		if ts, err := time.Parse("2006-01-02", start); err == nil {
			query = query.Where("recorded_at >= ?", ts)
		}
	}
	if end := c.Query("end"); end != "" {
		if ts, err := time.Parse("2006-01-02", end); err == nil {
			query = query.Where("recorded_at < ?", ts.AddDate(0, 0, 1))
		}
	}

	page, pageSize := getPagination(c)

	var total int64
	query.Count(&total)

	var records []model.EnergyRecord
	if err := query.Order("recorded_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&records).Error; err != nil {
		response.ServerError(c, "查询记录失败")
		return
	}

	response.SuccessPage(c, records, total, page, pageSize)
}
