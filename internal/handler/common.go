package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// getPagination 解析分页参数
func getPagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return
}

// formatKWh 电量显示格式
func formatKWh(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatAmount 金额显示格式
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
