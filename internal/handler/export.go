package handler

import (
	"encoding/csv"
	"fmt"
	"time"

	"energy-server/internal/middleware"
	"energy-server/internal/model"
	"energy-server/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct{}

func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// writeCSVHeader 设置 CSV 下载响应头并写入 BOM
func writeCSVHeader(c *gin.Context, name string) *csv.Writer {
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	// 写入 BOM 以支持 Excel 中文显示
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	return csv.NewWriter(c.Writer)
}

// ExportContracts 导出合同数据
func (h *ExportHandler) ExportContracts(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	status := c.Query("status")

	query := model.DB.Model(&model.EnergyContract{}).Where("org_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var contracts []model.EnergyContract
	query.Order("created_at DESC").Find(&contracts)

	writer := writeCSVHeader(c, "contracts")
	defer writer.Flush()

	writer.Write([]string{
		"合同编号", "标题", "对方主体", "类型", "状态", "电量(kWh)", "单价",
		"开始时间", "结束时间", "创建时间",
	})

	for _, contract := range contracts {
		startAt := ""
		if contract.StartAt != nil {
			startAt = contract.StartAt.Format("2006-01-02 15:04:05")
		}
		endAt := ""
		if contract.EndAt != nil {
			endAt = contract.EndAt.Format("2006-01-02 15:04:05")
		}

		writer.Write([]string{
			contract.ContractNo,
			contract.Title,
			contract.Counterparty,
			string(contract.Type),
			string(contract.Status),
			fmt.Sprintf("%.4f", contract.VolumeKWh),
			fmt.Sprintf("%.4f", contract.PricePerKWh),
			startAt,
			endAt,
			contract.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// ExportSharings 导出当前用户参与的共享数据
func (h *ExportHandler) ExportSharings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	status := c.Query("status")

	query := model.DB.Model(&model.EnergySharing{}).
		Where("provider_user_id = ? OR consumer_user_id = ?", userID, userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var sharings []model.EnergySharing
	query.Order("created_at DESC").Find(&sharings)

	writer := writeCSVHeader(c, "energy_sharings")
	defer writer.Flush()

	writer.Write([]string{
		"共享单号", "状态", "约定电量(kWh)", "交付电量(kWh)", "剩余电量(kWh)",
		"单价", "总金额", "支付状态", "开始时间", "结束时间", "完成时间", "创建时间",
	})

	for _, sharing := range sharings {
		completedAt := ""
		if sharing.CompletedAt != nil {
			completedAt = sharing.CompletedAt.Format("2006-01-02 15:04:05")
		}

		writer.Write([]string{
			sharing.SharingCode,
			string(sharing.Status),
			fmt.Sprintf("%.4f", sharing.EnergyAmountKWh),
			fmt.Sprintf("%.4f", sharing.EnergyDeliveredKWh),
			fmt.Sprintf("%.4f", sharing.EnergyRemainingKWh),
			fmt.Sprintf("%.4f", sharing.PricePerKWh),
			fmt.Sprintf("%.2f", sharing.TotalAmount),
			sharing.PaymentStatus,
			sharing.SharingStartAt.Format("2006-01-02 15:04:05"),
			sharing.SharingEndAt.Format("2006-01-02 15:04:05"),
			completedAt,
			sharing.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// ExportRecords 导出用电记录
func (h *ExportHandler) ExportRecords(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	recordType := c.Query("type")

	query := model.DB.Model(&model.EnergyRecord{}).Where("org_id = ?", orgID)
	if recordType != "" {
		query = query.Where("type = ?", recordType)
	}

	var records []model.EnergyRecord
	query.Order("recorded_at DESC").Limit(10000).Find(&records)

	writer := writeCSVHeader(c, "energy_records")
	defer writer.Flush()

	writer.Write([]string{
		"记录时间", "类型", "电量(kWh)", "来源", "备注", "创建时间",
	})

	for _, record := range records {
		writer.Write([]string{
			record.RecordedAt.Format("2006-01-02 15:04:05"),
			string(record.Type),
			fmt.Sprintf("%.4f", record.EnergyKWh),
			record.Source,
			record.Notes,
			record.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// ExportAuditLogs 导出审计日志
func (h *ExportHandler) ExportAuditLogs(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	query := model.DB.Model(&model.AuditLog{}).Where("org_id = ?", orgID)
	if startDate != "" {
		query = query.Where("created_at >= ?", startDate+" 00:00:00")
	}
	if endDate != "" {
		query = query.Where("created_at <= ?", endDate+" 23:59:59")
	}

	var logs []model.AuditLog
	query.Order("created_at DESC").Limit(10000).Find(&logs)

	writer := writeCSVHeader(c, "audit_logs")
	defer writer.Flush()

	writer.Write([]string{
		"时间", "用户邮箱", "操作", "资源", "描述", "IP地址", "状态码", "耗时(ms)",
	})

	for _, log := range logs {
		writer.Write([]string{
			log.CreatedAt.Format("2006-01-02 15:04:05"),
			log.UserEmail,
			log.Action,
			log.Resource,
			log.Description,
			log.IPAddress,
			fmt.Sprintf("%d", log.ResponseCode),
			fmt.Sprintf("%d", log.Duration),
		})
	}
}

// GetExportFormats 获取支持的导出格式
func (h *ExportHandler) GetExportFormats(c *gin.Context) {
	response.Success(c, gin.H{
		"formats": []gin.H{
			{"key": "csv", "name": "CSV", "description": "逗号分隔值文件，可用Excel打开"},
		},
		"resources": []gin.H{
			{"key": "contracts", "name": "合同数据"},
			{"key": "sharings", "name": "能源共享数据"},
			{"key": "records", "name": "用电记录"},
			{"key": "audit_logs", "name": "审计日志"},
		},
	})
}
