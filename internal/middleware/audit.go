package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"energy-server/internal/model"

	"github.com/gin-gonic/gin"
)

// AuditMiddleware 审计日志中间件
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 跳过不需要记录的路径
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/health") ||
			strings.Contains(path, "/statistics/") {
			c.Next()
			return
		}

		// 只记录写操作
		method := c.Request.Method
		if method == "GET" {
			c.Next()
			return
		}

		startTime := time.Now()

		// 读取请求体
		var requestBody string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			requestBody = string(bodyBytes)
			// 重新设置请求体供后续使用
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

			// 脱敏处理密码字段
			if strings.Contains(requestBody, "password") {
				requestBody = maskSensitiveData(requestBody)
			}
		}

		// 处理请求
		c.Next()

		// 记录日志
		duration := time.Since(startTime).Milliseconds()

		orgID, _ := c.Get("org_id")
		userID, _ := c.Get("user_id")
		userEmail, _ := c.Get("email")

		action, resource, resourceID := parseActionFromPath(method, path)

		log := model.AuditLog{
			OrgID:        toString(orgID),
			UserID:       toString(userID),
			UserEmail:    toString(userEmail),
			Action:       action,
			Resource:     resource,
			ResourceID:   resourceID,
			Description:  generateDescription(action, resource),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			RequestBody:  truncateString(requestBody, 2000),
			ResponseCode: c.Writer.Status(),
			Duration:     duration,
		}

		// 异步写入日志
		go func() {
			model.DB.Create(&log)
		}()
	}
}

// parseActionFromPath 从路径解析操作类型
func parseActionFromPath(method, path string) (action, resource, resourceID string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	// 解析资源类型
	for _, part := range parts {
		switch part {
		case "orgs":
			resource = model.ResourceOrganization
		case "members":
			resource = model.ResourceMember
		case "invitations":
			resource = model.ResourceInvitation
		case "energy-sharings":
			resource = model.ResourceSharing
		case "contracts":
			resource = model.ResourceContract
		case "records":
			resource = model.ResourceRecord
		case "webhooks":
			resource = model.ResourceWebhook
		case "auth":
			resource = model.ResourceUser
		}
	}

	// 解析操作类型
	switch method {
	case "POST":
		switch {
		case strings.Contains(path, "/login"):
			action = model.ActionLogin
		case strings.Contains(path, "/revoke"):
			action = model.ActionRevoke
		case strings.Contains(path, "/accept"):
			action = model.ActionAccept
		default:
			action = model.ActionCreate
		}
	case "PUT":
		action = model.ActionUpdate
	case "DELETE":
		// 共享记录的 DELETE 是取消而非删除
		if resource == model.ResourceSharing {
			action = model.ActionCancel
		} else {
			action = model.ActionDelete
		}
	default:
		action = method
	}

	// 尝试提取资源ID
	for i, part := range parts {
		if len(part) == 36 && strings.Count(part, "-") == 4 {
			resourceID = part
			break
		}
		if i > 0 && isResourceType(parts[i-1]) && len(part) > 0 {
			resourceID = part
		}
	}

	return
}

func isResourceType(s string) bool {
	types := []string{"orgs", "members", "invitations", "energy-sharings", "contracts", "records", "webhooks"}
	for _, t := range types {
		if s == t {
			return true
		}
	}
	return false
}

func generateDescription(action, resource string) string {
	actionMap := map[string]string{
		model.ActionCreate: "创建",
		model.ActionUpdate: "更新",
		model.ActionDelete: "删除",
		model.ActionLogin:  "登录",
		model.ActionRevoke: "撤销",
		model.ActionAccept: "接受",
		model.ActionCancel: "取消",
	}
	resourceMap := map[string]string{
		model.ResourceUser:         "用户",
		model.ResourceOrganization: "组织",
		model.ResourceMember:       "成员",
		model.ResourceInvitation:   "邀请",
		model.ResourceSharing:      "能源共享",
		model.ResourceContract:     "能源合同",
		model.ResourceRecord:       "用电记录",
		model.ResourceWebhook:      "Webhook",
	}

	a := actionMap[action]
	if a == "" {
		a = action
	}
	r := resourceMap[resource]
	if r == "" {
		r = resource
	}

	return a + r
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func maskSensitiveData(data string) string {
	// 简单的密码脱敏
	data = strings.ReplaceAll(data, `"password"`, `"password":"***"`)
	data = strings.ReplaceAll(data, `"old_password"`, `"old_password":"***"`)
	data = strings.ReplaceAll(data, `"new_password"`, `"new_password":"***"`)
	return data
}
